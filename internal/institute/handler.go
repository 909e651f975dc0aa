package institute

import (
	"net/http"

	"MentorDesk/internal/apperror"
	"MentorDesk/internal/principal"

	"github.com/labstack/echo/v4"
)

type InstituteHandler struct {
	service *InstituteService
}

func NewInstituteHandler(service *InstituteService) *InstituteHandler {
	return &InstituteHandler{service: service}
}

func (h *InstituteHandler) Create(c echo.Context) error {
	caller, err := principal.From(c)
	if err != nil {
		return err
	}
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return apperror.Validation("Invalid request")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	inst, err := h.service.Create(c.Request().Context(), caller, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]any{"success": true, "data": inst})
}

func (h *InstituteHandler) Update(c echo.Context) error {
	caller, err := principal.From(c)
	if err != nil {
		return err
	}
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return apperror.Validation("Invalid request")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	inst, err := h.service.Update(c.Request().Context(), caller, c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "data": inst})
}

func (h *InstituteHandler) Mine(c echo.Context) error {
	caller, err := principal.From(c)
	if err != nil {
		return err
	}
	list, err := h.service.Mine(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "data": list})
}

func (h *InstituteHandler) Get(c echo.Context) error {
	caller, err := principal.From(c)
	if err != nil {
		return err
	}
	inst, err := h.service.Get(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "data": inst})
}
