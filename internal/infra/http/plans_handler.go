package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Spok95/plan-catalog/internal/catalog"
)

type PlanLister interface {
	ListActivePlans(ctx context.Context) ([]catalog.Entry, error)
}

type errorBody struct {
	Error string `json:"error"`
}

type PlansHandler struct {
	log   *slog.Logger
	plans PlanLister
}

func NewPlansHandler(log *slog.Logger, plans PlanLister) *PlansHandler {
	return &PlansHandler{log: log, plans: plans}
}

// List serves GET /api/plans.
func (h *PlansHandler) List(c echo.Context) error {
	entries, err := h.plans.ListActivePlans(c.Request().Context())
	if err != nil {
		h.log.Error("failed to list plans",
			"query", "list_active_plans",
			"outcome", catalog.Outcome(err),
			"err", err,
		)
		return c.JSON(http.StatusInternalServerError, errorBody{Error: catalog.PublicMessage(err)})
	}
	return c.JSON(http.StatusOK, entries)
}
