package collects

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/groupcollect/groupcollect-backend/pkg/db/models"
	"github.com/groupcollect/groupcollect-backend/pkg/enums"
	"github.com/groupcollect/groupcollect-backend/pkg/pagination"
)

// Repository exposes collect persistence helpers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, collect *models.Collect) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Collect, error)
	UpdateFields(ctx context.Context, id uuid.UUID, values map[string]any, expectActive *bool) (int64, error)
	SaveLifecycle(ctx context.Context, collect *models.Collect, expectActive bool) (int64, error)
	IncrementRaised(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	ListPublic(ctx context.Context, listing enums.PublicListing, offset, size int) ([]models.Collect, int64, error)
	ListAdmin(ctx context.Context, filters AdminFilters, limit int, cursor *pagination.Cursor) ([]models.Collect, *pagination.Cursor, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Collect, *pagination.Cursor, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds a collects repository to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, collect *models.Collect) error {
	if collect.ID == uuid.Nil {
		collect.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Omit("Author").Create(collect).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Collect, error) {
	var collect models.Collect
	if err := r.db.WithContext(ctx).Preload("Author").First(&collect, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &collect, nil
}

// UpdateFields writes values to the collect. When expectActive is set the
// write only applies if is_active still holds that value, which makes state
// transitions happen once under concurrency. The affected row count is
// returned so callers can tell.
func (r *repository) UpdateFields(ctx context.Context, id uuid.UUID, values map[string]any, expectActive *bool) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Collect{}).Where("id = ?", id)
	if expectActive != nil {
		query = query.Where("is_active = ?", *expectActive)
	}
	result := query.Updates(values)
	return result.RowsAffected, result.Error
}

// SaveLifecycle persists the lifecycle fields of collect provided is_active
// still equals expectActive.
func (r *repository) SaveLifecycle(ctx context.Context, collect *models.Collect, expectActive bool) (int64, error) {
	return r.UpdateFields(ctx, collect.ID, lifecycleValues(collect), &expectActive)
}

// IncrementRaised adds amount to raised_amount in a single statement. Only
// active collects accept money.
func (r *repository) IncrementRaised(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Collect{}).
		Where("id = ? AND is_active = ?", id, true).
		UpdateColumn("raised_amount", gorm.Expr("raised_amount + ?", amount))
	return result.RowsAffected, result.Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.Collect{}, "id = ?", id)
	return result.RowsAffected, result.Error
}

// ListPublic returns one numbered page of active or archived collects.
func (r *repository) ListPublic(ctx context.Context, listing enums.PublicListing, offset, size int) ([]models.Collect, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Collect{})
	order := "created_at DESC, id DESC"
	switch listing {
	case enums.PublicListingArchive:
		query = query.Where("is_active = ? AND activated_at IS NOT NULL", false)
		order = "end_at DESC, created_at DESC, id DESC"
	default:
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Collect
	if err := query.Preload("Author").Order(order).Offset(offset).Limit(size).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) ListAdmin(ctx context.Context, filters AdminFilters, limit int, cursor *pagination.Cursor) ([]models.Collect, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Collect{}).
		Select("collects.*").
		Joins("JOIN users au ON au.id = collects.author_id")

	if filters.IsActive != nil {
		query = query.Where("collects.is_active = ?", *filters.IsActive)
	}
	switch enums.CollectStatus(filters.Status) {
	case enums.CollectStatusPending:
		query = query.Where("collects.is_active = ? AND collects.activated_at IS NULL", false)
	case enums.CollectStatusActive:
		query = query.Where("collects.is_active = ?", true)
	case enums.CollectStatusClosed:
		query = query.Where("collects.is_active = ? AND collects.activated_at IS NOT NULL", false)
	}
	if filters.AuthorID != nil {
		query = query.Where("collects.author_id = ?", *filters.AuthorID)
	}
	if filters.ClosureRequested != nil {
		query = query.Where("collects.closure_requested = ?", *filters.ClosureRequested)
	}
	if q := strings.TrimSpace(filters.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where(
			"LOWER(collects.title) LIKE ? OR LOWER(collects.description) LIKE ? OR LOWER(au.username) LIKE ?",
			like, like, like,
		)
	}

	return r.page(query, "collects.", limit, cursor)
}

func (r *repository) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Collect, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).Model(&models.Collect{}).Where("author_id = ?", authorID)
	return r.page(query, "", limit, cursor)
}

func (r *repository) page(query *gorm.DB, prefix string, limit int, cursor *pagination.Cursor) ([]models.Collect, *pagination.Cursor, error) {
	normalized := pagination.NormalizeLimit(limit)
	if cursor != nil {
		query = query.Where("("+prefix+"created_at, "+prefix+"id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Collect
	if err := query.
		Preload("Author").
		Order(prefix + "created_at DESC, " + prefix + "id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	if len(rows) > normalized {
		last := rows[normalized-1]
		return rows[:normalized], &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return rows, nil, nil
}

func lifecycleValues(c *models.Collect) map[string]any {
	return map[string]any{
		"is_active":         c.IsActive,
		"activated_at":      c.ActivatedAt,
		"closure_requested": c.ClosureRequested,
		"close_reason":      c.CloseReason,
		"end_at":            c.EndAt,
	}
}
