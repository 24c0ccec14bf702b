package catalog

import (
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
	g := api.Group("/medicines", auth.RequireRole(auth.RoleClinician))
	g.GET("/search", h.Search)
	g.GET("/options", h.Options)
}

func (h *Handler) Search(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Search(c.Request().Context(), c.QueryParam("q")))
}

func (h *Handler) Options(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Options())
}
