package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ledgerport/order-admission/internal/core/ports"
)

// ScenarioHandler exposes the load-scenario harness over HTTP.
type ScenarioHandler struct {
	service ports.ScenarioService
}

func NewScenarioHandler(service ports.ScenarioService) *ScenarioHandler {
	return &ScenarioHandler{service: service}
}

// Duplicates handles POST /v1/scenarios/duplicates?n= (default 10).
//
// @Summary      Run the duplicate-key race scenario
// @Tags         scenarios
// @Produce      json
// @Param        n  query     int  false  "Number of concurrent attempts"  default(10)
// @Success      200  {object}  ports.ScenarioSummary
// @Router       /v1/scenarios/duplicates [post]
func (h *ScenarioHandler) Duplicates(c echo.Context) error {
	n, err := intParam(c, "n", 10)
	if err != nil {
		return err
	}
	summary, err := h.service.RunDuplicates(c.Request().Context(), n)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

// Descending handles POST /v1/scenarios/descending?n= (default 10).
func (h *ScenarioHandler) Descending(c echo.Context) error {
	n, err := intParam(c, "n", 10)
	if err != nil {
		return err
	}
	summary, err := h.service.RunDescending(c.Request().Context(), n)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

// Deactivation handles POST /v1/scenarios/deactivation?n=&deactivateAfterMs=
// (defaults 10 and 1000).
func (h *ScenarioHandler) Deactivation(c echo.Context) error {
	n, err := intParam(c, "n", 10)
	if err != nil {
		return err
	}
	afterMs, err := intParam(c, "deactivateAfterMs", 1000)
	if err != nil {
		return err
	}
	summary, err := h.service.RunDeactivationRace(c.Request().Context(), n, time.Duration(afterMs)*time.Millisecond)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

func intParam(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be an integer")
	}
	return v, nil
}
