package auth

import (
	"time"

	"MentorDesk/internal/principal"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusActive    = "Active"
	StatusInactive  = "Inactive"
	StatusSuspended = "Suspended"
)

type Permissions struct {
	ManageUsers    bool `bson:"manageUsers" json:"manageUsers"`
	ManageContent  bool `bson:"manageContent" json:"manageContent"`
	ManagePayments bool `bson:"managePayments" json:"managePayments"`
	ManageSettings bool `bson:"manageSettings" json:"manageSettings"`
	ViewAnalytics  bool `bson:"viewAnalytics" json:"viewAnalytics"`
	ManageAdmins   bool `bson:"manageAdmins" json:"manageAdmins"`
}

// DefaultPermissions grants payments, settings and admin management to
// superadmins only.
func DefaultPermissions(role string) Permissions {
	super := role == principal.RoleSuperAdmin
	return Permissions{
		ManageUsers:    true,
		ManageContent:  true,
		ManagePayments: super,
		ManageSettings: super,
		ViewAnalytics:  true,
		ManageAdmins:   super,
	}
}

type Activity struct {
	Action    string    `bson:"action" json:"action"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Details   string    `bson:"details,omitempty" json:"details,omitempty"`
	IPAddress string    `bson:"ipAddress,omitempty" json:"ipAddress,omitempty"`
}

type Admin struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Firstname          string               `bson:"firstname" json:"firstname"`
	Lastname           string               `bson:"lastname,omitempty" json:"lastname,omitempty"`
	Email              string               `bson:"email" json:"email"`
	Phone              string               `bson:"phone,omitempty" json:"phone,omitempty"`
	Password           string               `bson:"password" json:"-"`
	Salt               string               `bson:"salt" json:"-"`
	Role               string               `bson:"role" json:"role"`
	Institutes         []primitive.ObjectID `bson:"institutes" json:"institutes"`
	Permissions        Permissions          `bson:"permissions" json:"permissions"`
	Status             string               `bson:"status" json:"status"`
	LastLogin          *time.Time           `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	ActivityLog        []Activity           `bson:"activityLog" json:"activityLog,omitempty"`
	ResetPasswordToken string               `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetTokenExpiry   *time.Time           `bson:"resetTokenExpiry,omitempty" json:"-"`
	CreatedAt          time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time            `bson:"updatedAt" json:"updatedAt"`
}

type RegisterRequest struct {
	Firstname string `json:"firstname" validate:"required,min=3"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Phone     string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}
