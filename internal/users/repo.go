package users

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/groupcollect/groupcollect-backend/pkg/db/models"
	"github.com/groupcollect/groupcollect-backend/pkg/enums"
	"github.com/groupcollect/groupcollect-backend/pkg/pagination"
)

// Repository exposes user and profile persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateProfile inserts the profile row for a freshly created user.
func (r *Repository) CreateProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	profile := &models.Profile{ID: uuid.New(), UserID: userID}
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// FindByEmail retrieves the user matching the provided email, case-insensitively.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("lower(email) = ?", strings.ToLower(email)).Order("created_at").First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername retrieves the user with the exact username.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByLogin resolves a login identity: email when it contains "@",
// username otherwise.
func (r *Repository) FindByLogin(ctx context.Context, identity string) (*models.User, error) {
	if strings.Contains(identity, "@") {
		return r.FindByEmail(ctx, identity)
	}
	return r.FindByUsername(ctx, identity)
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindProfile loads the profile of userID.
func (r *Repository) FindProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// UpdatePasswordHash replaces the stored hash, used when parameters change.
func (r *Repository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("password_hash", hash).Error
}

// UpdateUserFields applies a partial update to the user row.
func (r *Repository) UpdateUserFields(ctx context.Context, id uuid.UUID, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}
	values["updated_at"] = time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(values).Error
}

// UpdateAvatar sets or clears the profile avatar key.
func (r *Repository) UpdateAvatar(ctx context.Context, userID uuid.UUID, avatar *string) error {
	return r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{"avatar": avatar, "updated_at": time.Now().UTC()}).Error
}

// AdminEmails lists the addresses of active administrators.
func (r *Repository) AdminEmails(ctx context.Context) ([]string, error) {
	var emails []string
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ? AND is_active = ? AND email <> ''", enums.UserRoleAdmin, true).
		Order("created_at").
		Pluck("email", &emails).Error
	return emails, err
}

// List returns users newest first with cursor pagination.
func (r *Repository) List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.User, *pagination.Cursor, error) {
	normalized := pagination.NormalizeLimit(limit)
	query := r.db.WithContext(ctx).Model(&models.User{})
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.User
	if err := query.Order("created_at DESC, id DESC").Limit(pagination.LimitWithBuffer(limit)).Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	if len(rows) > normalized {
		last := rows[normalized-1]
		return rows[:normalized], &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return rows, nil, nil
}

// StatsRow is a user joined with its authored collect count and donated total.
type StatsRow struct {
	models.User        `gorm:"embedded"`
	CollectionsCreated int64           `gorm:"column:collections_created"`
	TotalDonated       decimal.Decimal `gorm:"column:total_donated"`
}

// ListWithStats returns users newest first with the number of collects they
// authored and the sum of their payments. Each aggregate is its own subquery
// so the two never multiply each other.
func (r *Repository) ListWithStats(ctx context.Context, limit int, cursor *pagination.Cursor) ([]StatsRow, *pagination.Cursor, error) {
	normalized := pagination.NormalizeLimit(limit)
	query := r.db.WithContext(ctx).
		Table("users AS u").
		Select(`u.*,
  (SELECT COUNT(*) FROM collects c WHERE c.author_id = u.id) AS collections_created,
  COALESCE((SELECT SUM(p.amount) FROM payments p WHERE p.user_id = u.id), 0) AS total_donated`)
	if cursor != nil {
		query = query.Where("(u.created_at, u.id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []StatsRow
	if err := query.Order("u.created_at DESC, u.id DESC").Limit(pagination.LimitWithBuffer(limit)).Scan(&rows).Error; err != nil {
		return nil, nil, err
	}
	if len(rows) > normalized {
		last := rows[normalized-1]
		return rows[:normalized], &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return rows, nil, nil
}
