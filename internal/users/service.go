package users

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/groupcollect/groupcollect-backend/pkg/db"
	pkgerrors "github.com/groupcollect/groupcollect-backend/pkg/errors"
	"github.com/groupcollect/groupcollect-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes user directory and profile operations.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	List(ctx context.Context, params pagination.Params) (*ListResult, error)
	ListWithStats(ctx context.Context, params pagination.Params) (*StatsListResult, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*ProfileDTO, error)
}

// ListResult is one page of public users.
type ListResult struct {
	Items      []UserDTO `json:"items"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// StatsListResult is one page of the admin user listing.
type StatsListResult struct {
	Items      []UserStatsDTO `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

type service struct {
	repo *Repository
	tx   txRunner
}

// NewService wires the users service.
func NewService(repo *Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "user not found", "load user")
	}
	return FromModel(user), nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*ListResult, error) {
	cursor, err := parseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	rows, next, err := s.repo.List(ctx, params.Limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	result := &ListResult{Items: make([]UserDTO, 0, len(rows))}
	for i := range rows {
		result.Items = append(result.Items, *FromModel(&rows[i]))
	}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *service) ListWithStats(ctx context.Context, params pagination.Params) (*StatsListResult, error) {
	cursor, err := parseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	rows, next, err := s.repo.ListWithStats(ctx, params.Limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users with stats")
	}
	result := &StatsListResult{Items: make([]UserStatsDTO, 0, len(rows))}
	for i := range rows {
		result.Items = append(result.Items, UserStatsDTO{
			AccountDTO:         *AccountFromModel(&rows[i].User),
			CollectionsCreated: rows[i].CollectionsCreated,
			TotalDonated:       rows[i].TotalDonated,
		})
	}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err, "user not found", "load user")
	}
	profile, err := s.repo.FindProfile(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	return profileFromModels(user, profile), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*ProfileDTO, error) {
	values := map[string]any{}
	fields := pkgerrors.FieldErrors{}
	if input.FirstName != nil {
		values["first_name"] = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		values["last_name"] = strings.TrimSpace(*input.LastName)
	}
	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if email == "" {
			fields.Add("email", "email cannot be blank")
		}
		values["email"] = email
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, userID); err != nil {
			return mapNotFound(err, "user not found", "load user")
		}
		if err := repo.UpdateUserFields(ctx, userID, values); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
		}
		if input.Avatar != nil {
			var avatar *string
			if v := strings.TrimSpace(*input.Avatar); v != "" {
				avatar = &v
			}
			if err := repo.UpdateAvatar(ctx, userID, avatar); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update avatar")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}

func parseCursor(raw string) (*pagination.Cursor, error) {
	if raw == "" {
		return nil, nil
	}
	cursor, err := pagination.ParseCursor(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	return cursor, nil
}

func mapNotFound(err error, notFound, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}

var _ txRunner = (*db.Client)(nil)
