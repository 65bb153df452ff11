package user

import (
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/padhaihq/padhai/core"
)

// Roles
const (
	RoleStudent = "student"
	RoleMentor  = "mentor"
	RoleAdmin   = "admin"
)

// DefaultPageSize is the fixed page size of the admin user list.
const DefaultPageSize = 20

var AllRoles = []string{RoleStudent, RoleMentor, RoleAdmin}

func ValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Role         string    `json:"role" db:"role"`
	IsAdmin      bool      `json:"isAdmin" db:"is_admin"`
	IsPaidUser   bool      `json:"isPaidUser" db:"is_paid_user"`
	IsOwner      bool      `json:"isOwner" db:"is_owner"`
	IsDisabled   bool      `json:"isDisabled" db:"is_disabled"`
	CurrentLevel int       `json:"currentLevel" db:"current_level"`
	TotalPoints  int       `json:"totalPoints" db:"total_points"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// SetRole changes the role and keeps the derived IsAdmin flag in sync.
func (u *User) SetRole(role string) {
	u.Role = role
	u.IsAdmin = role == RoleAdmin
}

// NewUser contains information needed to create a new User.
// Users are only ever created by the bootstrap CLI; the admin panel never creates them.
type NewUser struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	Role       string `json:"role" validate:"omitempty,userrole"`
	IsOwner    bool   `json:"isOwner"`
	IsPaidUser bool   `json:"isPaidUser"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = core.CleanString(nu.Role, true /* lower */)
	if nu.Role == "" {
		nu.Role = RoleStudent
	}
	return validate.Struct(nu)
}

// Filter values accepted by the tri-state list filters.
const (
	FilterAll = "all"

	StatusEnabled  = "enabled"
	StatusDisabled = "disabled"

	PremiumPaid = "true"
	PremiumFree = "false"
)

// QueryFilter applies AND operation on available fields.
// Search does a case-insensitive match on one of User.Name or User.Email.
type QueryFilter struct {
	Search   string `query:"search"`
	Role     string `query:"role"`
	Status   string `query:"status"`
	Premium  string `query:"premium"`
	Page     int    `query:"page"`
	PageSize int    `query:"pageSize"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Role = core.CleanString(qf.Role, true /* lower */)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	qf.Premium = core.CleanString(qf.Premium, true /* lower */)
	if qf.Page < 1 {
		qf.Page = 1
	}
	if qf.PageSize < 1 {
		qf.PageSize = DefaultPageSize
	}
}

// RoleFilter returns the role to filter on, or "" when no role filter applies.
func (qf *QueryFilter) RoleFilter() string {
	if qf.Role == FilterAll || !ValidRole(qf.Role) {
		return ""
	}
	return qf.Role
}

// IsDisabled maps the status filter to a tri-state flag: nil means no filter.
func (qf *QueryFilter) IsDisabled() *bool {
	switch qf.Status {
	case StatusEnabled:
		b := false
		return &b
	case StatusDisabled:
		b := true
		return &b
	}
	return nil
}

// IsPaidUser maps the premium filter to a tri-state flag: nil means no filter.
func (qf *QueryFilter) IsPaidUser() *bool {
	switch qf.Premium {
	case PremiumPaid:
		b := true
		return &b
	case PremiumFree:
		b := false
		return &b
	}
	return nil
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func NewPagination(page, pageSize, total int) Pagination {
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}
}
