package batch

import (
	"net/http"

	"MentorDesk/internal/apperror"
	"MentorDesk/internal/principal"

	"github.com/labstack/echo/v4"
)

type BatchHandler struct {
	service *BatchService
}

func NewBatchHandler(service *BatchService) *BatchHandler {
	return &BatchHandler{service: service}
}

func bindValid(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return apperror.Validation("Invalid request")
	}
	return c.Validate(req)
}

func (h *BatchHandler) Create(c echo.Context) error {
	caller, err := principal.From(c)
	if err != nil {
		return err
	}
	var req CreateRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	b, err := h.service.Create(c.Request().Context(), caller, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"success": true,
		"message": "Batch created successfully",
		"data": map[string]any{
			"batch":     b,
			"shareCode": b.ShareCode,
			"shareLink": b.ShareLink,
		},
	})
}

func (h *BatchHandler) List(c echo.Context) error {
	caller, err := principal.From(c)
	if err != nil {
		return err
	}
	var f Filter
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &f); err != nil {
		return apperror.Validation("Invalid query")
	}
	batches, err := h.service.List(c.Request().Context(), caller, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "count": len(batches), "data": batches})
}

func (h *BatchHandler) Get(c echo.Context) error {
	caller, err := principal.From(c)
	if err != nil {
		return err
	}
	b, err := h.service.Get(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "data": b})
}

func (h *BatchHandler) Update(c echo.Context) error {
	caller, err := principal.From(c)
	if err != nil {
		return err
	}
	var req UpdateRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	b, err := h.service.Update(c.Request().Context(), caller, c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": "Batch updated successfully", "data": b})
}

func (h *BatchHandler) Delete(c echo.Context) error {
	caller, err := principal.From(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), caller, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": "Batch deleted successfully"})
}

func (h *BatchHandler) RegenerateCode(c echo.Context) error {
	caller, err := principal.From(c)
	if err != nil {
		return err
	}
	b, err := h.service.RegenerateCode(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Share code regenerated successfully",
		"data":    map[string]string{"shareCode": b.ShareCode, "shareLink": b.ShareLink},
	})
}

func (h *BatchHandler) Enroll(c echo.Context) error {
	caller, err := principal.From(c)
	if err != nil {
		return err
	}
	var req EnrollRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	b, err := h.service.Enroll(c.Request().Context(), caller, c.Param("id"), req.StudentIDs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": "Students enrolled successfully", "data": b})
}

func (h *BatchHandler) RecordClass(c echo.Context) error {
	caller, err := principal.From(c)
	if err != nil {
		return err
	}
	var req ClassRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	b, err := h.service.RecordClass(c.Request().Context(), caller, c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]any{"success": true, "message": "Class recorded successfully", "data": b})
}

func (h *BatchHandler) Report(c echo.Context) error {
	caller, err := principal.From(c)
	if err != nil {
		return err
	}
	report, err := h.service.RefreshReport(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "data": report})
}
