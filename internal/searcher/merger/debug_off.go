//go:build !querydebug

package merger

const debugChecks = false
