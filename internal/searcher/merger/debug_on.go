//go:build querydebug

package merger

// Built with -tags querydebug: merges panic on unsorted inputs.
const debugChecks = true
