package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"dayplanner-backend/internal/security"
	userdomain "dayplanner-backend/internal/user/domain"
	workspacedomain "dayplanner-backend/internal/workspace/domain"
)

// Sentinel errors for the auth service; handlers map them to HTTP statuses.
var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidEmail           = errors.New("invalid email address")
	ErrWeakPassword           = errors.New("password must be at least 8 characters")
)

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
	UpdateProfile(ctx context.Context, id, email, name string) error
}

// WorkspaceRepo is the minimal workspace repository needed by the auth service.
type WorkspaceRepo interface {
	Create(ctx context.Context, w *workspacedomain.Workspace) error
}

// MembershipRepo is the minimal membership repository needed by the auth service.
type MembershipRepo interface {
	Create(ctx context.Context, m *workspacedomain.Membership) error
}

// AuthService implements registration, credential verification, and profile
// updates. Registration always provisions a personal workspace with an admin
// membership, so every user has at least one membership afterwards.
type AuthService struct {
	users       UserRepo
	workspaces  WorkspaceRepo
	memberships MembershipRepo
	hasher      *security.Hasher
}

// NewAuthService returns an AuthService with the given dependencies.
func NewAuthService(users UserRepo, workspaces WorkspaceRepo, memberships MembershipRepo, hasher *security.Hasher) *AuthService {
	return &AuthService{
		users:       users,
		workspaces:  workspaces,
		memberships: memberships,
		hasher:      hasher,
	}
}

// Register creates a user with the given email and password, plus their
// personal workspace and admin membership in it. The stored email keeps the
// caller's casing; uniqueness is case-insensitive.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*userdomain.User, error) {
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyRegistered
	}
	hashed, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &userdomain.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hashed,
		PlanKey:      "free",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	ws := &workspacedomain.Workspace{
		ID:        uuid.New().String(),
		Name:      personalWorkspaceName(user),
		Type:      workspacedomain.WorkspaceTypePersonal,
		CreatedAt: now,
	}
	if err := s.workspaces.Create(ctx, ws); err != nil {
		return nil, err
	}
	membership := &workspacedomain.Membership{
		ID:          uuid.New().String(),
		UserID:      user.ID,
		WorkspaceID: ws.ID,
		Role:        workspacedomain.RoleAdmin,
		CreatedAt:   now,
	}
	if err := s.memberships.Create(ctx, membership); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies email/password and returns the user, or
// ErrInvalidCredentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*userdomain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// UpdateProfile changes the user's email and display name. A new email that
// collides case-insensitively with another account yields
// ErrEmailAlreadyRegistered.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, email, name string) (*userdomain.User, error) {
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.ID != userID {
		return nil, ErrEmailAlreadyRegistered
	}
	if err := s.users.UpdateProfile(ctx, userID, email, strings.TrimSpace(name)); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func validateEmail(email string) error {
	if email == "" || !emailRe.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}
	return nil
}

func personalWorkspaceName(u *userdomain.User) string {
	if u.Name != "" {
		return u.Name + "'s Workspace"
	}
	return "Personal Workspace"
}
