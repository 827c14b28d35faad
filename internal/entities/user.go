package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRole controls what a signed-in user may do.
type UserRole string

const (
	UserRoleAdmin     UserRole = "admin"     // full access, including the admin surface
	UserRoleLibrarian UserRole = "librarian" // catalog staff, may renew loans
	UserRoleMember    UserRole = "member"    // regular borrower
)

// Permission names a capability beyond plain authentication.
type Permission string

// PermCanMarkReturned gates the loan renewal workflow.
const PermCanMarkReturned Permission = "catalog.can_mark_returned"

// rolePermissions maps each role to the permissions it grants.
var rolePermissions = map[UserRole][]Permission{
	UserRoleAdmin:     {PermCanMarkReturned},
	UserRoleLibrarian: {PermCanMarkReturned},
	UserRoleMember:    {},
}

// HasPermission reports whether the role grants the named permission.
func (r UserRole) HasPermission(perm Permission) bool {
	for _, p := range rolePermissions[r] {
		if p == perm {
			return true
		}
	}
	return false
}

type User struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	Username     string   `gorm:"uniqueIndex;size:100" json:"username"`
	Email        string   `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string   `gorm:"size:255" json:"-"`
	Role         UserRole `gorm:"size:20;default:'member'" json:"role"`

	// Login bookkeeping and lockout state.
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
	FailedLoginCount int        `gorm:"default:0" json:"-"`
	LockedUntil      *time.Time `json:"-"`

	Borrowed  []BookInstance `gorm:"foreignKey:BorrowerID" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// NewInstanceID generates the unique identifier for a BookInstance.
func NewInstanceID() string {
	return uuid.NewString()
}
