package users

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/groupcollect/groupcollect-backend/pkg/db/models"
	"github.com/groupcollect/groupcollect-backend/pkg/enums"
)

// UserDTO is the public user shape; credentials never leave the service.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

// AccountDTO is returned to the account owner after login or registration.
type AccountDTO struct {
	UserDTO
	Role        enums.UserRole `json:"role"`
	IsActive    bool           `json:"is_active"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	DateJoined  time.Time      `json:"date_joined"`
}

// ProfileDTO merges the user and its profile row.
type ProfileDTO struct {
	AccountDTO
	FullName string  `json:"full_name"`
	Avatar   *string `json:"avatar,omitempty"`
}

// UserStatsDTO is the admin listing row.
type UserStatsDTO struct {
	AccountDTO
	CollectionsCreated int64           `json:"collections_created"`
	TotalDonated       decimal.Decimal `json:"total_donated"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         enums.UserRole
}

// UpdateProfileInput holds the editable profile fields. Nil leaves a field
// unchanged; an empty avatar clears it.
type UpdateProfileInput struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,max=150"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Avatar    *string `json:"avatar,omitempty" validate:"omitempty,max=512"`
}

// FromModel converts a user into its public shape.
func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// AccountFromModel converts a user into the owner-facing shape.
func AccountFromModel(u *models.User) *AccountDTO {
	if u == nil {
		return nil
	}
	return &AccountDTO{
		UserDTO:     *FromModel(u),
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		DateJoined:  u.CreatedAt,
	}
}

func profileFromModels(u *models.User, p *models.Profile) *ProfileDTO {
	dto := &ProfileDTO{
		AccountDTO: *AccountFromModel(u),
		FullName:   u.FullName(),
	}
	if p != nil {
		dto.Avatar = p.Avatar
	}
	return dto
}

func (c CreateUserDTO) ToModel() *models.User {
	role := c.Role
	if role == "" {
		role = enums.UserRoleUser
	}
	return &models.User{
		ID:           uuid.New(),
		Username:     c.Username,
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Role:         role,
		IsActive:     true,
	}
}
