package comments

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/groupcollect/groupcollect-backend/internal/collects"
	"github.com/groupcollect/groupcollect-backend/internal/notifications"
	"github.com/groupcollect/groupcollect-backend/internal/users"
	"github.com/groupcollect/groupcollect-backend/pkg/auth"
	"github.com/groupcollect/groupcollect-backend/pkg/censor"
	"github.com/groupcollect/groupcollect-backend/pkg/db/models"
	"github.com/groupcollect/groupcollect-backend/pkg/enums"
	pkgerrors "github.com/groupcollect/groupcollect-backend/pkg/errors"
	"github.com/groupcollect/groupcollect-backend/pkg/logger"
	"github.com/groupcollect/groupcollect-backend/pkg/pagination"
)

const maxCommentLength = 2000

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CreateCommentInput is the body of a new comment.
type CreateCommentInput struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// CommentDTO is the transport shape of a comment.
type CommentDTO struct {
	ID        uuid.UUID          `json:"id"`
	CollectID uuid.UUID          `json:"collect_id"`
	Author    collects.AuthorDTO `json:"author"`
	Text      string             `json:"text"`
	CreatedAt time.Time          `json:"created_at"`
}

// ListResult is one cursor page of comments.
type ListResult struct {
	Items      []CommentDTO `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// FromModel converts a comment into its transport shape.
func FromModel(c *models.Comment) *CommentDTO {
	if c == nil {
		return nil
	}
	dto := &CommentDTO{
		ID:        c.ID,
		CollectID: c.CollectID,
		Author:    collects.AuthorDTO{ID: c.AuthorID},
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
	if c.Author != nil {
		dto.Author.Username = c.Author.Username
	}
	return dto
}

// Service manages comments on collect pages.
type Service interface {
	Create(ctx context.Context, authorID, collectID uuid.UUID, input CreateCommentInput) (*CommentDTO, error)
	ListByCollect(ctx context.Context, collectID uuid.UUID, params pagination.Params) (*ListResult, error)
	Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error
}

// ServiceParams groups the comments service dependencies.
type ServiceParams struct {
	DB            txRunner
	Repo          Repository
	Collects      collects.Repository
	Users         *users.Repository
	Notifications notifications.Service
	Censor        *censor.Censor
	Logger        *logger.Logger
}

type service struct {
	db            txRunner
	repo          Repository
	collects      collects.Repository
	users         *users.Repository
	notifications notifications.Service
	censor        *censor.Censor
	logg          *logger.Logger
}

// NewService wires the comments service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "comments repository required")
	}
	if params.Collects == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "collects repository required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if params.Notifications == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications service required")
	}
	c := params.Censor
	if c == nil {
		c = censor.Default()
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		db:            params.DB,
		repo:          params.Repo,
		collects:      params.Collects,
		users:         params.Users,
		notifications: params.Notifications,
		censor:        c,
		logg:          logg,
	}, nil
}

// Create stores a sanitized comment and tells the collect author about it
// unless the author wrote it.
func (s *service) Create(ctx context.Context, authorID, collectID uuid.UUID, input CreateCommentInput) (*CommentDTO, error) {
	text := strings.TrimSpace(input.Text)
	fields := pkgerrors.FieldErrors{}
	switch {
	case text == "":
		fields.Add("text", "text is required")
	case len([]rune(text)) > maxCommentLength:
		fields.Add("text", "text must be at most 2000 characters")
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ID:        uuid.New(),
		CollectID: collectID,
		AuthorID:  authorID,
		Text:      s.censor.Clean(text),
	}

	var ids []uuid.UUID
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		collect, err := s.collects.WithTx(tx).FindByID(ctx, collectID)
		if err != nil {
			return mapNotFound(err, "collect not found", "load collect")
		}
		if collect.Status() == enums.CollectStatusPending && collect.AuthorID != authorID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "collect not found")
		}
		commenter, err := s.users.WithTx(tx).FindByID(ctx, authorID)
		if err != nil {
			return mapNotFound(err, "user not found", "load commenter")
		}
		if err := s.repo.WithTx(tx).Create(ctx, comment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create comment")
		}
		comment.Author = commenter

		if collect.AuthorID == authorID {
			return nil
		}
		draft := notifications.CommentReceived(collects.Ref(collect), commenter.Username, comment.Text)
		ids, err = s.notifications.Enqueue(ctx, tx, draft)
		return err
	})
	if err != nil {
		return nil, err
	}

	stored, err := s.repo.FindByID(ctx, comment.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload comment")
	}
	return FromModel(stored), s.notifications.Dispatch(ctx, ids)
}

func (s *service) ListByCollect(ctx context.Context, collectID uuid.UUID, params pagination.Params) (*ListResult, error) {
	var cursor *pagination.Cursor
	if params.Cursor != "" {
		parsed, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		cursor = parsed
	}

	rows, next, err := s.repo.ListByCollect(ctx, collectID, params.Limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list comments")
	}
	result := &ListResult{Items: make([]CommentDTO, 0, len(rows))}
	for i := range rows {
		result.Items = append(result.Items, *FromModel(&rows[i]))
	}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

// Delete removes a comment. Only administrators moderate comments.
func (s *service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "administrator role required")
	}
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete comment")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "comment not found")
	}
	s.logg.Info(s.logg.WithField(ctx, "comment_id", id.String()), "comment deleted")
	return nil
}

func mapNotFound(err error, notFound, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
