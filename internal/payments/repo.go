package payments

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/groupcollect/groupcollect-backend/pkg/db/models"
	"github.com/groupcollect/groupcollect-backend/pkg/pagination"
)

// Repository persists payments. Payments are append-only.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, payment *models.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	List(ctx context.Context, opts listPaymentsParams) ([]models.Payment, *pagination.Cursor, error)
	SumByCollect(ctx context.Context, collectID uuid.UUID) (decimal.Decimal, error)
}

type listPaymentsParams struct {
	CollectID *uuid.UUID
	UserID    *uuid.UUID
	Limit     int
	Cursor    *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds a payments repository to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) List(ctx context.Context, opts listPaymentsParams) ([]models.Payment, *pagination.Cursor, error) {
	normalized := pagination.NormalizeLimit(opts.Limit)
	query := r.db.WithContext(ctx).Model(&models.Payment{})
	if opts.CollectID != nil {
		query = query.Where("collect_id = ?", *opts.CollectID)
	}
	if opts.UserID != nil {
		query = query.Where("user_id = ?", *opts.UserID)
	}
	if opts.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", opts.Cursor.CreatedAt, opts.Cursor.ID)
	}

	var rows []models.Payment
	if err := query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(opts.Limit)).
		Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	if len(rows) > normalized {
		last := rows[normalized-1]
		return rows[:normalized], &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return rows, nil, nil
}

// SumByCollect totals the recorded payments of a collect.
func (r *repository) SumByCollect(ctx context.Context, collectID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("collect_id = ?", collectID).
		Row().
		Scan(&total)
	return total, err
}
