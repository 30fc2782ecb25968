package middleware

import (
	"fmt"
	"net/http"

	"github.com/paylinkhq/paylink-backend/api/responses"
	pkgerrors "github.com/paylinkhq/paylink-backend/pkg/errors"
	"github.com/paylinkhq/paylink-backend/pkg/logger"
)

// Recoverer converts handler panics into logged 500 responses so one bad
// request cannot take the process down.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					writeRecovered(w, r, logg, rec)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func writeRecovered(w http.ResponseWriter, r *http.Request, logg *logger.Logger, rec any) {
	err := fmt.Errorf("panic: %v", rec)
	ctx := r.Context()
	if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{"panic": rec})
		logg.Error(ctx, "panic recovered", err)
	}
	responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "panic"))
}
