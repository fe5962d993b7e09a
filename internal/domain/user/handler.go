package user

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ywu256/MAPD713-Project/internal/platform/apperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/login", h.Login)
}

type loginResponse struct {
	Message string   `json:"message"`
	User    *Profile `json:"user"`
}

func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperr.BindError(err, "request body must be JSON with email and password")
	}
	profile, err := h.svc.Login(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, loginResponse{Message: "login successful", User: profile})
}
