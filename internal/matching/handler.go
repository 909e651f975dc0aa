package matching

import (
	"net/http"

	"MentorDesk/internal/student"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Candidates handles GET /api/student/getmentorstudent.
func (h *Handler) Candidates(c echo.Context) error {
	students, err := h.service.Candidates(c.Request().Context(), c.QueryParam("mentorId"), c.QueryParam("query"))
	if err != nil {
		return err
	}
	if len(students) == 0 {
		return c.JSON(http.StatusOK, map[string]any{
			"success":  true,
			"message":  "No students found",
			"students": []student.Student{},
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "students": students})
}
