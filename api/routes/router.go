package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adelferjani/stockparc-backend/api/controllers"
	"github.com/adelferjani/stockparc-backend/api/middleware"
	"github.com/adelferjani/stockparc-backend/internal/approvals"
	"github.com/adelferjani/stockparc-backend/internal/maintenance"
	"github.com/adelferjani/stockparc-backend/internal/movements"
	"github.com/adelferjani/stockparc-backend/internal/vehicles"
	"github.com/adelferjani/stockparc-backend/pkg/config"
	"github.com/adelferjani/stockparc-backend/pkg/db"
	"github.com/adelferjani/stockparc-backend/pkg/enums"
	"github.com/adelferjani/stockparc-backend/pkg/logger"
	"github.com/adelferjani/stockparc-backend/pkg/metrics"
	pkgredis "github.com/adelferjani/stockparc-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Idempotency pkgredis.IdempotencyStore
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics

	Movements   movements.Service
	Approvals   approvals.Service
	Vehicles    vehicles.Service
	Maintenance maintenance.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, logg))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.Idempotency, logg))

		r.Route("/movements", func(r chi.Router) {
			r.Get("/", controllers.MovementList(deps.Movements, logg))
			r.Get("/{movementID}", controllers.MovementGet(deps.Movements, logg))
			r.Post("/receipts", controllers.ReceiptCreate(deps.Movements, logg))
			r.Route("/stock-outs", func(r chi.Router) {
				r.Post("/", controllers.StockOutCreate(deps.Movements, logg))
				r.Post("/{movementID}/validate", controllers.StockOutValidate(deps.Movements, logg))
				r.Post("/{movementID}/return", controllers.StockOutReturn(deps.Movements, logg))
			})
		})

		r.Route("/approvals", func(r chi.Router) {
			r.Get("/", controllers.ApprovalList(deps.Approvals, logg))
			r.Get("/{operationID}", controllers.ApprovalGet(deps.Approvals, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.ActorRoleAdmin, enums.ActorRoleManager))
				r.Post("/{operationID}/approve", controllers.ApprovalApprove(deps.Approvals, logg))
				r.Post("/{operationID}/reject", controllers.ApprovalReject(deps.Approvals, logg))
			})
		})

		r.Route("/vehicles", func(r chi.Router) {
			r.Get("/", controllers.VehicleList(deps.Vehicles, logg))
			r.Post("/", controllers.VehicleCreate(deps.Vehicles, logg))
			r.Get("/{vehicleID}", controllers.VehicleGet(deps.Vehicles, logg))
			r.Post("/{vehicleID}/assign", controllers.VehicleAssign(deps.Vehicles, logg))
			r.Post("/{vehicleID}/unassign", controllers.VehicleUnassign(deps.Vehicles, logg))
			r.Get("/{vehicleID}/assignments", controllers.VehicleAssignments(deps.Vehicles, logg))
			r.Get("/{vehicleID}/maintenance", controllers.MaintenanceListByVehicle(deps.Maintenance, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.ActorRoleAdmin, enums.ActorRoleManager))
				r.Post("/{vehicleID}/reform", controllers.VehicleReform(deps.Vehicles, logg))
			})
		})

		r.Route("/maintenance", func(r chi.Router) {
			r.Post("/", controllers.MaintenanceCreate(deps.Maintenance, logg))
			r.Get("/due-soon", controllers.MaintenanceDueSoon(deps.Maintenance, logg))
		})
	})

	return r
}
