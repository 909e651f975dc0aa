package middleware

import (
	"fmt"

	"MentorDesk/internal/apperror"
	"MentorDesk/internal/principal"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var ErrPermissionDenied = apperror.Forbidden("You don't have permission to perform this action")

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && (p.act == "*" || r.act == p.act)
`

// Policies allowed for admins. Superadmins inherit them.
var adminPolicies = [][]string{
	{principal.RoleAdmin, "/api/auth/admin/user", "GET"},
	{principal.RoleAdmin, "/api/auth/admin/logout", "GET"},
	{principal.RoleAdmin, "/api/mentor/*", "*"},
	{principal.RoleAdmin, "/api/student/*", "*"},
	{principal.RoleAdmin, "/api/institute/*", "*"},
	{principal.RoleAdmin, "/api/batch/*", "*"},
	{principal.RoleAdmin, "/api/notification/*", "*"},
}

type RBAC struct {
	enforcer *casbin.Enforcer
	log      *zap.Logger
}

func NewRBAC(log *zap.Logger) (*RBAC, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("casbin model: %w", err)
	}
	enf, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("casbin enforcer: %w", err)
	}
	if _, err := enf.AddPolicies(adminPolicies); err != nil {
		return nil, fmt.Errorf("casbin policies: %w", err)
	}
	if _, err := enf.AddGroupingPolicy(principal.RoleSuperAdmin, principal.RoleAdmin); err != nil {
		return nil, fmt.Errorf("casbin roles: %w", err)
	}
	return &RBAC{enforcer: enf, log: log.Named("rbac")}, nil
}

// Allowed reports whether role may call method on the route template path.
func (r *RBAC) Allowed(role, path, method string) (bool, error) {
	return r.enforcer.Enforce(role, path, method)
}

// Authorize checks the principal's role against the matched route. It must
// run after JWT.
func (r *RBAC) Authorize() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, err := principal.From(c)
			if err != nil {
				return err
			}
			ok, err := r.Allowed(p.Role, c.Path(), c.Request().Method)
			if err != nil {
				return apperror.Internal(err)
			}
			if !ok {
				r.log.Info("denied", zap.String("role", p.Role), zap.String("path", c.Path()), zap.String("method", c.Request().Method))
				return ErrPermissionDenied
			}
			return next(c)
		}
	}
}

// RequireRole allows principals holding role directly or through
// inheritance.
func (r *RBAC) RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, err := principal.From(c)
			if err != nil {
				return err
			}
			if p.Role != role {
				has, err := r.enforcer.HasRoleForUser(p.Role, role)
				if err != nil {
					return apperror.Internal(err)
				}
				if !has {
					return ErrPermissionDenied
				}
			}
			return next(c)
		}
	}
}
