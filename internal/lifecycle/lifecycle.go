// Package lifecycle decides collect state transitions. It is pure: callers
// load the previous state, propose the next one and persist what it returns.
package lifecycle

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/groupcollect/groupcollect-backend/pkg/db/models"
	"github.com/groupcollect/groupcollect-backend/pkg/enums"
)

const (
	// DefaultCloseReason is recorded when a collect is closed without a reason.
	DefaultCloseReason = "Closed by an administrator."
	// GoalReachedReason is recorded when the last payment reaches the goal.
	GoalReachedReason = "Collect closed automatically: the goal has been reached."
)

// Audience names who receives a notice.
type Audience string

const (
	// AudienceAuthor is the collect author.
	AudienceAuthor Audience = "author"
	// AudienceAdmins is every administrator, notified as one batch.
	AudienceAdmins Audience = "admins"
)

// Snapshot is the subset of collect state the engine reasons about.
type Snapshot struct {
	IsActive         bool
	ActivatedAt      *time.Time
	ClosureRequested bool
	CloseReason      *string
	EndAt            *time.Time
	GoalAmount       *decimal.Decimal
	RaisedAmount     decimal.Decimal
}

// Notice is a notification the caller must enqueue after persisting Next.
type Notice struct {
	Kind     enums.NotificationKind
	Audience Audience
}

// Decision is the outcome of a transition.
type Decision struct {
	Next    Snapshot
	Notices []Notice
}

// Transitioned reports whether is_active flipped.
func (d Decision) Transitioned(prev Snapshot) bool {
	return prev.IsActive != d.Next.IsActive
}

// SnapshotOf extracts the lifecycle fields of a collect.
func SnapshotOf(c models.Collect) Snapshot {
	return Snapshot{
		IsActive:         c.IsActive,
		ActivatedAt:      c.ActivatedAt,
		ClosureRequested: c.ClosureRequested,
		CloseReason:      c.CloseReason,
		EndAt:            c.EndAt,
		GoalAmount:       c.GoalAmount,
		RaisedAmount:     c.RaisedAmount,
	}
}

// Apply copies the lifecycle fields back onto c. Goal and raised amounts are
// owned by other code paths and are left untouched.
func (s Snapshot) Apply(c *models.Collect) {
	c.IsActive = s.IsActive
	c.ActivatedAt = s.ActivatedAt
	c.ClosureRequested = s.ClosureRequested
	c.CloseReason = s.CloseReason
	c.EndAt = s.EndAt
}

// Status derives the moderation state.
func (s Snapshot) Status() enums.CollectStatus {
	switch {
	case s.IsActive:
		return enums.CollectStatusActive
	case s.ActivatedAt != nil:
		return enums.CollectStatusClosed
	default:
		return enums.CollectStatusPending
	}
}

// Evaluate compares the stored state with the proposed one and returns the
// patched state plus the notices the change implies. Creation never notifies.
func Evaluate(prev, next Snapshot, isNew bool, now time.Time) Decision {
	now = now.UTC()
	d := Decision{Next: next}

	switch {
	case !prev.IsActive && next.IsActive:
		if d.Next.ActivatedAt == nil {
			t := now
			d.Next.ActivatedAt = &t
		}
		d.Next.ClosureRequested = false
		if isNew {
			return d
		}
		d.Notices = append(d.Notices, Notice{Kind: enums.NotificationKindCollectApproved, Audience: AudienceAuthor})

	case prev.IsActive && !next.IsActive:
		if isNew {
			return d
		}
		d.Next.CloseReason = reasonOrDefault(next.CloseReason, DefaultCloseReason)
		if d.Next.EndAt == nil {
			t := now
			d.Next.EndAt = &t
		}
		d.Notices = append(d.Notices, Notice{Kind: enums.NotificationKindCollectClosed, Audience: AudienceAuthor})
	}

	return d
}

// Close is the manual close transition of an active collect.
func Close(prev Snapshot, reason string, now time.Time) Decision {
	next := prev
	next.IsActive = false
	next.CloseReason = nil
	if r := strings.TrimSpace(reason); r != "" {
		next.CloseReason = &r
	}
	t := now.UTC()
	next.EndAt = &t
	return Evaluate(prev, next, false, now)
}

// GoalReached reports whether an active collect has met its goal.
func GoalReached(s Snapshot) bool {
	return s.IsActive && s.GoalAmount != nil && s.RaisedAmount.GreaterThanOrEqual(*s.GoalAmount)
}

// AutoClose closes a collect whose goal was reached. The caller persists the
// result conditionally on is_active so concurrent payments close it once.
func AutoClose(s Snapshot, now time.Time) Decision {
	next := s
	next.IsActive = false
	t := now.UTC()
	next.EndAt = &t
	reason := GoalReachedReason
	next.CloseReason = &reason
	return Decision{
		Next: next,
		Notices: []Notice{
			{Kind: enums.NotificationKindCollectClosed, Audience: AudienceAuthor},
			{Kind: enums.NotificationKindGoalReached, Audience: AudienceAdmins},
		},
	}
}

func reasonOrDefault(reason *string, fallback string) *string {
	if reason != nil {
		if r := strings.TrimSpace(*reason); r != "" {
			return &r
		}
	}
	return &fallback
}
