package collects

import (
	"context"

	"github.com/groupcollect/groupcollect-backend/internal/lifecycle"
	"github.com/groupcollect/groupcollect-backend/internal/notifications"
	"github.com/groupcollect/groupcollect-backend/pkg/db/models"
	"github.com/groupcollect/groupcollect-backend/pkg/enums"
)

// AdminDirectory resolves the administrator mailing list.
type AdminDirectory interface {
	AdminEmails(ctx context.Context) ([]string, error)
}

// Ref builds the template reference for a collect. The author must be
// preloaded for author addressed notices to have a recipient.
func Ref(c *models.Collect) notifications.CollectRef {
	ref := notifications.CollectRef{ID: c.ID, Title: c.Title}
	if c.Author != nil {
		ref.AuthorUsername = c.Author.Username
		ref.AuthorEmail = c.Author.Email
	}
	return ref
}

// NoticeDrafts renders lifecycle notices for c in order. Administrator
// emails are only looked up when a notice needs them.
func NoticeDrafts(ctx context.Context, admins AdminDirectory, c *models.Collect, notices []lifecycle.Notice) ([]notifications.Draft, error) {
	if len(notices) == 0 {
		return nil, nil
	}

	var (
		adminEmails []string
		loaded      bool
	)
	ref := Ref(c)
	drafts := make([]notifications.Draft, 0, len(notices))
	for _, n := range notices {
		if n.Audience == lifecycle.AudienceAdmins && !loaded {
			emails, err := admins.AdminEmails(ctx)
			if err != nil {
				return nil, err
			}
			adminEmails, loaded = emails, true
		}

		switch n.Kind {
		case enums.NotificationKindCollectApproved:
			drafts = append(drafts, notifications.CollectApproved(ref))
		case enums.NotificationKindCollectClosed:
			reason := lifecycle.DefaultCloseReason
			if c.CloseReason != nil && *c.CloseReason != "" {
				reason = *c.CloseReason
			}
			drafts = append(drafts, notifications.CollectClosed(ref, reason))
		case enums.NotificationKindGoalReached:
			if c.GoalAmount != nil {
				drafts = append(drafts, notifications.GoalReached(ref, *c.GoalAmount, adminEmails))
			}
		}
	}
	return drafts, nil
}
