package clinician

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rxcheck/rxcheck/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/profile", auth.RequireRole(auth.RoleClinician))
	g.GET("", h.GetProfile)
	g.PUT("", h.SaveProfile)
	g.DELETE("", h.ResetProfile)
	g.GET("/onboarded", h.Onboarded)
}

func (h *Handler) GetProfile(c echo.Context) error {
	p, err := h.svc.Get(c.Request().Context())
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) SaveProfile(c echo.Context) error {
	var p Profile
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	saved, err := h.svc.Save(c.Request().Context(), p)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"profile": saved,
	})
}

func (h *Handler) ResetProfile(c echo.Context) error {
	if err := h.svc.Reset(c.Request().Context()); err != nil {
		return errorResponse(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Onboarded(c echo.Context) error {
	ok, err := h.svc.Onboarded(c.Request().Context())
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"onboarded": ok})
}

func errorResponse(err error) error {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, map[string]interface{}{
			"title":   verr.Title,
			"message": verr.Message,
		})
	case errors.Is(err, ErrNotOnboarded):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "Could not complete the request. Please try again.",
		})
	}
}
