package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/iho/assetvault/internal/infrastructure/logger"
)

// Recovery converts a handler panic into an INTERNAL_ERROR response.
// http.ErrAbortHandler is re-raised so the server can drop the connection.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			logger.FromContext(r.Context()).Error().
				Str("panic", fmt.Sprint(rec)).
				Bytes("stack", debug.Stack()).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("handler panicked")

			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}()

		next.ServeHTTP(w, r)
	})
}
