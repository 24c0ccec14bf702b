package prescription

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rxcheck/rxcheck/internal/platform/auth"
	"github.com/rxcheck/rxcheck/internal/platform/blobstore"
	"github.com/rxcheck/rxcheck/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the prescription routes. limit wraps the routes that
// call the analysis backend.
func (h *Handler) RegisterRoutes(api *echo.Group, limit ...echo.MiddlewareFunc) {
	g := api.Group("", auth.RequireRole(auth.RoleClinician))
	g.POST("/prescriptions/evaluate", h.Evaluate, limit...)
	g.POST("/prescriptions", h.Finalize)
	g.GET("/prescriptions", h.ListPrescriptions)
	g.POST("/reports", h.ExportReport, limit...)
}

func (h *Handler) Evaluate(c echo.Context) error {
	strategy, err := ParseStrategy(c.QueryParam("strategy"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	var p Prescription
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := h.svc.Evaluate(c.Request().Context(), p, strategy)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) Finalize(c echo.Context) error {
	var out StructuredOutput
	if err := c.Bind(&out); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	saved, err := h.svc.Finalize(c.Request().Context(), out)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success":      true,
		"prescription": saved,
	})
}

func (h *Handler) ListPrescriptions(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.History(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset).WithLinks(c.Request().URL.Path))
}

func (h *Handler) ExportReport(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}
	meta, err := h.svc.ExportReport(c.Request().Context(), json.RawMessage(body), auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success":      true,
		"report":       meta,
		"download_url": "/api/v1/reports/" + meta.ID,
	})
}

// errorResponse maps service errors onto the API error shapes.
func errorResponse(err error) error {
	var verr *ValidationError
	var aerr *AnalysisError
	var herr *echo.HTTPError
	switch {
	case errors.As(err, &herr):
		return herr
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, map[string]interface{}{
			"title":   verr.Title,
			"message": verr.Message,
		})
	case errors.As(err, &aerr):
		return echo.NewHTTPError(http.StatusBadGateway, map[string]interface{}{
			"error":   true,
			"message": aerr.Message,
		})
	case errors.Is(err, ErrStrategyUnavailable), errors.Is(err, ErrReportsUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, ErrInvalidReport):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, blobstore.ErrFileTooLarge):
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "Could not complete the request. Please try again.",
		})
	}
}
