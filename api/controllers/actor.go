package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/adelferjani/stockparc-backend/api/middleware"
	"github.com/adelferjani/stockparc-backend/internal/approvals"
	"github.com/adelferjani/stockparc-backend/pkg/enums"
	pkgerrors "github.com/adelferjani/stockparc-backend/pkg/errors"
)

// actorFromRequest rebuilds the authenticated actor seeded by the auth
// middleware.
func actorFromRequest(r *http.Request) (approvals.Actor, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return approvals.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return approvals.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	role, err := enums.ParseActorRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return approvals.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown actor role")
	}
	return approvals.Actor{ID: id, Role: role}, nil
}

// pathUUID parses a chi URL parameter as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}
