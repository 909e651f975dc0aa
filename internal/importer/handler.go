package importer

import (
	"net/http"

	"MentorDesk/internal/config"
	"MentorDesk/internal/mentor"
	"MentorDesk/internal/principal"
	"MentorDesk/internal/student"

	"github.com/labstack/echo/v4"
)

type ImportRequest struct {
	Emails []string `json:"emails"`
}

type Handler struct {
	service  *Service
	students Target
	mentors  Target
}

func NewHandler(service *Service, cfg *config.AppConfig, students StudentInserter, mentors MentorInserter) *Handler {
	return &Handler{
		service: service,
		students: Target{
			Role:     student.Role,
			Noun:     "students",
			WebURL:   cfg.StudentWebURL,
			Accounts: StudentAccounts{Repo: students},
		},
		mentors: Target{
			Role:     mentor.Role,
			Noun:     "teachers",
			WebURL:   cfg.MentorWebURL,
			Accounts: MentorAccounts{Repo: mentors},
		},
	}
}

// ImportStudents handles POST /api/student/import/:instituteId.
func (h *Handler) ImportStudents(c echo.Context) error {
	return h.run(c, h.students)
}

// ImportTeachers handles POST /api/mentor/import/:instituteId.
func (h *Handler) ImportTeachers(c echo.Context) error {
	return h.run(c, h.mentors)
}

func (h *Handler) run(c echo.Context, target Target) error {
	caller, err := principal.From(c)
	if err != nil {
		return err
	}
	var req ImportRequest
	if err := c.Bind(&req); err != nil {
		return ErrEmailsNotArray
	}
	res, err := h.service.Import(c.Request().Context(), caller, target, c.Param("instituteId"), req.Emails, c.Scheme())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": res.Summary(target.Noun),
		"data":    res,
	})
}
