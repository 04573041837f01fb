package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestExitCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"query error", &QueryError{Reason: "empty query", Position: -1}, ExitInvalid},
		{"wrapped invalid", fmt.Errorf("evaluating: %w", ErrInvalidQuery), ExitInvalid},
		{"evaluation", ErrEvaluation, ExitFailure},
		{"metadata", fmt.Errorf("lookup: %w", ErrMetadataUnavailable), ExitFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExitCode(tc.err); got != tc.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestHTTPStatusCode(t *testing.T) {
	if got := HTTPStatusCode(&QueryError{Reason: "x", Position: 0, Token: "AND"}); got != http.StatusBadRequest {
		t.Errorf("query error status = %d, want 400", got)
	}
	if got := HTTPStatusCode(ErrMetadataUnavailable); got != http.StatusServiceUnavailable {
		t.Errorf("metadata status = %d, want 503", got)
	}
	if got := HTTPStatusCode(New(ErrInternal, http.StatusTeapot, "odd")); got != http.StatusTeapot {
		t.Errorf("app error status = %d, want 418", got)
	}
	if got := HTTPStatusCode(errors.New("boom")); got != http.StatusInternalServerError {
		t.Errorf("unknown status = %d, want 500", got)
	}
}

func TestQueryErrorMessage(t *testing.T) {
	err := &QueryError{Reason: "query starts with an operator", Position: 0, Token: "OR"}
	want := `invalid query: query starts with an operator (token 0 "OR")`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	empty := &QueryError{Reason: "empty query", Position: -1}
	if empty.Error() != "invalid query: empty query" {
		t.Errorf("Error() = %q", empty.Error())
	}
}
