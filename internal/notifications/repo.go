package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/groupcollect/groupcollect-backend/pkg/db/models"
	"github.com/groupcollect/groupcollect-backend/pkg/enums"
	"github.com/groupcollect/groupcollect-backend/pkg/pagination"
)

// Repository exposes persistence helpers for the notification dispatch log.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, notification *models.Notification) error
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Notification, error)
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, at time.Time, reason string) error
	MarkSkipped(ctx context.Context, id uuid.UUID, at time.Time) error
	List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a notifications repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listNotificationsParams struct {
	Status *enums.NotificationStatus
	Kind   *enums.NotificationKind
	Limit  int
	Cursor *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	if notification.Status == "" {
		notification.Status = enums.NotificationStatusPending
	}
	return r.db.WithContext(ctx).Create(notification).Error
}

// FindByIDs returns the rows in the order of ids; unknown ids are dropped.
func (r *repositoryImpl) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Notification, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Notification
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Notification, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	ordered := make([]models.Notification, 0, len(rows))
	for _, id := range ids {
		if row, ok := byID[id]; ok {
			ordered = append(ordered, row)
		}
	}
	return ordered, nil
}

func (r *repositoryImpl) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.mark(ctx, id, map[string]any{
		"status":       enums.NotificationStatusSent,
		"attempted_at": at,
		"error":        nil,
	})
}

func (r *repositoryImpl) MarkFailed(ctx context.Context, id uuid.UUID, at time.Time, reason string) error {
	return r.mark(ctx, id, map[string]any{
		"status":       enums.NotificationStatusFailed,
		"attempted_at": at,
		"error":        reason,
	})
}

func (r *repositoryImpl) MarkSkipped(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.mark(ctx, id, map[string]any{
		"status":       enums.NotificationStatusSkipped,
		"attempted_at": at,
	})
}

func (r *repositoryImpl) mark(ctx context.Context, id uuid.UUID, values map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(values).Error
}

func (r *repositoryImpl) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Notification{})
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Kind != nil {
		query = query.Where("kind = ?", *params.Kind)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&notifications).Error; err != nil {
		return nil, nil, err
	}

	if len(notifications) > normalized {
		next := notifications[normalized-1]
		notifications = notifications[:normalized]
		return notifications, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return notifications, nil, nil
}
