package controllers

import (
	"net/http"

	"github.com/adelferjani/stockparc-backend/api/responses"
	"github.com/adelferjani/stockparc-backend/pkg/config"
	"github.com/adelferjani/stockparc-backend/pkg/db"
	pkgerrors "github.com/adelferjani/stockparc-backend/pkg/errors"
	"github.com/adelferjani/stockparc-backend/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-StockParc-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, pinger db.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-StockParc-Env", cfg.App.Env)
		if err := pinger.Ping(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
