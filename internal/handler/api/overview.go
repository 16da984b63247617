package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	models "MacroPulse/internal/domain/models"
	"MacroPulse/internal/usecase"
	xhttp "MacroPulse/pkg/http"
	xlogger "MacroPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// OverviewHandler serves the cached per-currency overview.
type OverviewHandler struct {
	logger *xlogger.Logger
	svc    *usecase.OverviewService
	store  HealthChecker
}

func NewOverviewHandler(logger *xlogger.Logger, svc *usecase.OverviewService, store HealthChecker) *OverviewHandler {
	return &OverviewHandler{logger: logger, svc: svc, store: store}
}

func (h *OverviewHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/currency/:code/overview", h.Overview)
	e.GET("/api/currency/:code/overview", h.Overview)
	e.GET("/healthz", h.Health)
}

func (h *OverviewHandler) Overview(c echo.Context) error {
	req := &models.OverviewRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.svc.Overview(c.Request().Context(), req.Code, c.Request().Header.Get("If-None-Match"))
	if err != nil {
		if errors.Is(err, usecase.ErrUnsupportedCurrency) {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("unsupported currency code %q", req.Code).
				WithParam("supported", models.SupportedCurrencies).
				WithError(err))
		}
		h.logger.Error("overview usecase error", xlogger.String("currency", req.Code), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("failed to build overview").WithError(err))
	}

	if res.NotModified {
		return xhttp.NotModifiedResponse(c, res.ETag, h.svc.CacheControl())
	}
	return xhttp.CachedJSONResponse(c, res.Payload, res.ETag, h.svc.CacheControl())
}

func (h *OverviewHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Health(ctx); err != nil {
		h.logger.Warn("health check failed", xlogger.Error(err))
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, xhttp.HealthResponse{
			Status: "degraded",
			Checks: map[string]string{"store": err.Error()},
		})
	}
	return xhttp.SuccessResponse(c, xhttp.HealthResponse{Status: "ok", Checks: map[string]string{"store": "ok"}})
}
