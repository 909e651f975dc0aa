package allocation

import (
	"fmt"

	"MentorDesk/internal/apperror"
	"MentorDesk/internal/principal"

	"github.com/labstack/echo/v4"
)

type BulkRequest struct {
	StudentIDs []string `json:"studentIds"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Allocate handles POST /api/student/allocate-student/:mentorId.
func (h *Handler) Allocate(c echo.Context) error {
	caller, err := principal.From(c)
	if err != nil {
		return err
	}
	var req BulkRequest
	if err := c.Bind(&req); err != nil {
		return apperror.Validation("Invalid student IDs")
	}
	res, err := h.service.AllocateMany(c.Request().Context(), caller, c.Param("mentorId"), req.StudentIDs)
	if err != nil {
		return err
	}
	return respond(c, res, "Students successfully allocated to mentor", "allocated")
}

// Deallocate handles POST /api/student/deallocate-student.
func (h *Handler) Deallocate(c echo.Context) error {
	caller, err := principal.From(c)
	if err != nil {
		return err
	}
	var req BulkRequest
	if err := c.Bind(&req); err != nil {
		return apperror.Validation("Invalid student IDs")
	}
	res, err := h.service.DeallocateMany(c.Request().Context(), caller, req.StudentIDs)
	if err != nil {
		return err
	}
	return respond(c, res, "Students successfully deallocated from mentor", "deallocated")
}

func respond(c echo.Context, res *BulkResult, okMessage, verb string) error {
	message := okMessage
	switch {
	case res.Failed > 0 && res.Succeeded > 0:
		message = fmt.Sprintf("%d of %d students %s", res.Succeeded, len(res.Items), verb)
	case res.Failed > 0:
		message = apperror.PublicMessage(res.FirstError())
	}
	return c.JSON(res.HTTPStatus(), map[string]any{
		"success":   res.Failed == 0,
		"message":   message,
		"succeeded": res.Succeeded,
		"failed":    res.Failed,
		"results":   res.Items,
	})
}
