package controllers

import (
	"net/http"

	"github.com/paylinkhq/paylink-backend/api/responses"
	"github.com/paylinkhq/paylink-backend/pkg/config"
	"github.com/paylinkhq/paylink-backend/pkg/db"
	pkgerrors "github.com/paylinkhq/paylink-backend/pkg/errors"
	"github.com/paylinkhq/paylink-backend/pkg/logger"
	"github.com/paylinkhq/paylink-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Paylink-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Paylink-Env", cfg.App.Env)
		ctx := r.Context()

		if dbP != nil {
			if err := dbP.Ping(ctx); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database not ready"))
				return
			}
		}
		if redisP != nil {
			if err := redisP.Ping(ctx); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis not ready"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
