package auth

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/locallibrary/internal/config"
	"github.com/openshelf/locallibrary/internal/entities"
)

// Validation patterns
var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user already exists")
	ErrAuthRequired     = errors.New("authentication required")
	ErrInvalidRole      = errors.New("invalid role")
	ErrUsernameRequired = errors.New("username is required")
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrAccountLocked    = errors.New("account is locked due to too many failed login attempts")
	ErrUsernameInvalid  = errors.New("username must be 3-64 characters, alphanumeric and underscore/hyphen only")
	ErrEmailInvalid     = errors.New("invalid email format")
)

// Service handles authentication and user management.
type Service struct {
	db     *gorm.DB
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(db *gorm.DB, cfg config.Auth) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// IsAuthEnabled reports whether local authentication is active.
func (s *Service) IsAuthEnabled() bool {
	return s.config.Mode == config.AuthModeLocal
}

// CreateUser creates a new user with password authentication.
func (s *Service) CreateUser(username, email, password string, role entities.UserRole) (*entities.User, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if email == "" {
		return nil, ErrEmailRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	// Validate username format: 3-64 chars, alphanumeric + underscore/hyphen
	if !usernamePattern.MatchString(username) {
		return nil, ErrUsernameInvalid
	}

	// Validate email format and length (RFC 5321 limit is 254)
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return nil, ErrEmailInvalid
	}

	switch role {
	case entities.UserRoleAdmin, entities.UserRoleLibrarian, entities.UserRoleMember:
		// Valid
	default:
		return nil, ErrInvalidRole
	}

	// Check if user already exists
	var existing entities.User
	err := s.db.Where("username = ? OR email = ?", username, email).First(&existing).Error
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate validates credentials and returns the user.
// Implements account lockout after too many failed attempts.
func (s *Service) Authenticate(username, password string) (*entities.User, error) {
	var user entities.User
	err := s.db.Where("username = ? OR email = ?", username, username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	// Check if account is locked
	if user.LockedUntil != nil && time.Now().Before(*user.LockedUntil) {
		return nil, ErrAccountLocked
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		s.recordFailedLogin(&user)
		return nil, err
	}

	// Successful login - reset failed attempts and update last login
	now := time.Now()
	s.db.Model(&user).Updates(map[string]any{
		"last_login_at":      now,
		"failed_login_count": 0,
		"locked_until":       nil,
	})

	return &user, nil
}

// recordFailedLogin increments the failure counter and locks the account once
// the configured threshold is reached.
func (s *Service) recordFailedLogin(user *entities.User) {
	updates := map[string]any{
		"failed_login_count": user.FailedLoginCount + 1,
	}
	if user.FailedLoginCount+1 >= s.config.MaxLoginAttempts {
		lockedUntil := time.Now().Add(s.config.LockoutDuration)
		updates["locked_until"] = lockedUntil
	}
	s.db.Model(user).Updates(updates)
}

// GetUserByID retrieves a user by primary key.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	err := s.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// HasUsers reports whether any user accounts exist yet.
// Used to decide whether first-run setup is needed.
func (s *Service) HasUsers() (bool, error) {
	var count int64
	err := s.db.Model(&entities.User{}).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasPermission reports whether the user holds the named permission.
func (s *Service) HasPermission(user *entities.User, perm entities.Permission) bool {
	if user == nil {
		return false
	}
	return user.Role.HasPermission(perm)
}
