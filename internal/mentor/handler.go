package mentor

import (
	"net/http"

	"MentorDesk/internal/apperror"

	"github.com/labstack/echo/v4"
)

type MentorHandler struct {
	service *MentorService
}

func NewMentorHandler(service *MentorService) *MentorHandler {
	return &MentorHandler{service: service}
}

func (h *MentorHandler) List(c echo.Context) error {
	mentors, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "mentors": mentors})
}

func (h *MentorHandler) Get(c echo.Context) error {
	m, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "mentor": m})
}

func (h *MentorHandler) Verify(c echo.Context) error {
	var req VerifyRequest
	if err := c.Bind(&req); err != nil {
		return apperror.Validation("Invalid request")
	}
	if err := h.service.Verify(c.Request().Context(), c.Param("id"), req.Status); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": "Mentor " + req.Status})
}

func (h *MentorHandler) Students(c echo.Context) error {
	roster, err := h.service.Roster(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "mentor": roster})
}
