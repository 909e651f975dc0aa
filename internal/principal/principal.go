// Package principal carries the authenticated admin through a request.
package principal

import (
	"time"

	"MentorDesk/internal/apperror"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"

	contextKey = "principal"
)

var ErrNotAuthenticated = apperror.Unauthorized("Login First")

type Principal struct {
	ID         primitive.ObjectID
	Email      string
	Role       string
	TokenID    string
	ExpiresAt  time.Time
	Institutes []primitive.ObjectID
}

func (p *Principal) IsSuperAdmin() bool {
	return p.Role == RoleSuperAdmin
}

// Administers reports whether p may manage the institute. Superadmins manage
// every institute.
func (p *Principal) Administers(institute primitive.ObjectID) bool {
	if p.IsSuperAdmin() {
		return true
	}
	for _, id := range p.Institutes {
		if id == institute {
			return true
		}
	}
	return false
}

func Set(c echo.Context, p *Principal) {
	c.Set(contextKey, p)
}

// From returns the principal stored by the auth middleware.
func From(c echo.Context) (*Principal, error) {
	p, ok := c.Get(contextKey).(*Principal)
	if !ok || p == nil {
		return nil, ErrNotAuthenticated
	}
	return p, nil
}
