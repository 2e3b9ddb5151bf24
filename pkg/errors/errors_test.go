package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", fmt.Errorf("%w: bad limit", ErrInvalidInput), http.StatusBadRequest},
		{"store unavailable", fmt.Errorf("%w: connection refused", ErrStoreUnavailable), http.StatusServiceUnavailable},
		{"grammar inconsistency", ErrGrammarInconsistency, http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"app error wins", New(ErrInvalidInput, http.StatusBadRequest, "bad query"), http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := HTTPStatusCode(tc.err); got != tc.want {
				t.Errorf("HTTPStatusCode(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestAppErrorUnwrapsToSentinel(t *testing.T) {
	appErr := Newf(ErrInvalidInput, http.StatusBadRequest, "limit %q must be a positive integer", "abc")
	if !errors.Is(appErr, ErrInvalidInput) {
		t.Fatal("AppError must unwrap to its sentinel")
	}
	if appErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want 400", appErr.StatusCode)
	}
	if want := `invalid input: limit "abc" must be a positive integer`; appErr.Error() != want {
		t.Errorf("Error() = %q, want %q", appErr.Error(), want)
	}
}
