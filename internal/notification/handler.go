package notification

import (
	"net/http"

	"MentorDesk/internal/apperror"
	"MentorDesk/internal/principal"

	"github.com/labstack/echo/v4"
)

type NotificationHandler struct {
	service *NotificationService
}

func NewNotificationHandler(service *NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func (h *NotificationHandler) Schedule(c echo.Context) error {
	caller, err := principal.From(c)
	if err != nil {
		return err
	}
	var req ScheduleRequest
	if err := c.Bind(&req); err != nil {
		return apperror.Validation("Invalid request")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	n, err := h.service.Schedule(c.Request().Context(), caller, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"success":      true,
		"message":      "Notification scheduled successfully",
		"notification": n,
	})
}

func (h *NotificationHandler) List(c echo.Context) error {
	caller, err := principal.From(c)
	if err != nil {
		return err
	}
	list, err := h.service.List(c.Request().Context(), caller, c.QueryParam("institute"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "notifications": list})
}

func (h *NotificationHandler) Delete(c echo.Context) error {
	caller, err := principal.From(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), caller, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": "Notification deleted"})
}
