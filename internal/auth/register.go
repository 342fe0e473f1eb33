package auth

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/groupcollect/groupcollect-backend/internal/users"
	"github.com/groupcollect/groupcollect-backend/pkg/config"
	"github.com/groupcollect/groupcollect-backend/pkg/db"
	"github.com/groupcollect/groupcollect-backend/pkg/enums"
	pkgerrors "github.com/groupcollect/groupcollect-backend/pkg/errors"
	"github.com/groupcollect/groupcollect-backend/pkg/security"
)

const minPasswordLength = 8

var usernameRe = regexp.MustCompile(`^[\p{L}\p{N}@.+_-]+$`)

// RegisterRequest contains the payload required to open an account.
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=150"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

// RegisterService creates accounts together with their profile.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*users.AccountDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB             txRunner
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	db          txRunner
	passwordCfg config.PasswordConfig
	role        enums.UserRole
}

// NewRegisterService builds a registration service for regular users.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	svc, err := newRegisterService(params, enums.UserRoleUser)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func newRegisterService(params RegisterServiceParams, role enums.UserRole) (*registerService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &registerService{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
		role:        role,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*users.AccountDTO, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	fields := pkgerrors.FieldErrors{}
	switch {
	case username == "":
		fields.Add("username", "username is required")
	case !usernameRe.MatchString(username):
		fields.Add("username", "username may contain only letters, digits and @.+-_")
	}
	if email == "" {
		fields.Add("email", "email is required")
	}
	if len([]rune(req.Password)) < minPasswordLength {
		fields.Add("password", "password must be at least 8 characters")
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *users.AccountDTO
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		if _, err := userRepo.FindByUsername(ctx, username); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check username")
		}

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Username:     username,
			Email:        email,
			PasswordHash: passwordHash,
			FirstName:    strings.TrimSpace(req.FirstName),
			LastName:     strings.TrimSpace(req.LastName),
			Role:         s.role,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "users_username_key") {
				return pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		if _, err := userRepo.CreateProfile(ctx, user.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create profile")
		}

		created = users.AccountFromModel(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
