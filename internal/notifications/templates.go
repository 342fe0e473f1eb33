package notifications

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/groupcollect/groupcollect-backend/pkg/enums"
)

// Draft is a notification that has not been persisted yet.
type Draft struct {
	Kind       enums.NotificationKind
	Subject    string
	Body       string
	Recipients []string
	CollectID  *uuid.UUID
}

// CollectRef carries the collect fields the templates mention.
type CollectRef struct {
	ID             uuid.UUID
	Title          string
	AuthorUsername string
	AuthorEmail    string
}

func (c CollectRef) id() *uuid.UUID {
	if c.ID == uuid.Nil {
		return nil
	}
	id := c.ID
	return &id
}

func authorRecipients(c CollectRef) []string {
	if c.AuthorEmail == "" {
		return nil
	}
	return []string{c.AuthorEmail}
}

// FormatAmount renders a money amount with two decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// CollectSubmitted asks administrators to moderate a new collect.
func CollectSubmitted(c CollectRef, adminEmails []string, adminURL string) Draft {
	return Draft{
		Kind:    enums.NotificationKindCollectSubmitted,
		Subject: fmt.Sprintf("New collect awaiting moderation: %q", c.Title),
		Body: fmt.Sprintf(
			"User %s created a new collect.\nTitle: %s\n\nPlease review and activate it in the admin panel:\n%s",
			c.AuthorUsername, c.Title, adminURL,
		),
		Recipients: adminEmails,
		CollectID:  c.id(),
	}
}

// CollectApproved tells the author the collect passed moderation.
func CollectApproved(c CollectRef) Draft {
	return Draft{
		Kind:    enums.NotificationKindCollectApproved,
		Subject: fmt.Sprintf("Your collect %q has been approved!", c.Title),
		Body: fmt.Sprintf(
			"Hello, %s!\n\nYour collect %q passed moderation and is now active.\nYou can find it on the site.",
			c.AuthorUsername, c.Title,
		),
		Recipients: authorRecipients(c),
		CollectID:  c.id(),
	}
}

// CollectClosed tells the author the collect was moved to the archive.
func CollectClosed(c CollectRef, reason string) Draft {
	return Draft{
		Kind:    enums.NotificationKindCollectClosed,
		Subject: fmt.Sprintf("Your collect %q has been closed", c.Title),
		Body: fmt.Sprintf(
			"Hello, %s!\n\nYour collect %q was closed and moved to the archive.\nReason: %s\n\nThank you for your initiative!",
			c.AuthorUsername, c.Title, reason,
		),
		Recipients: authorRecipients(c),
		CollectID:  c.id(),
	}
}

// ClosureRequested asks administrators to review an early close request.
func ClosureRequested(c CollectRef, reason string, adminEmails []string, adminURL string) Draft {
	return Draft{
		Kind:    enums.NotificationKindClosureRequested,
		Subject: fmt.Sprintf("Closure requested for collect %q", c.Title),
		Body: fmt.Sprintf(
			"User %s asked to close the collect %q early.\n\nReason: %s\n\nPlease review the request and close the collect in the admin panel if needed:\n%s",
			c.AuthorUsername, c.Title, reason, adminURL,
		),
		Recipients: adminEmails,
		CollectID:  c.id(),
	}
}

// GoalReached informs administrators that a collect closed itself.
func GoalReached(c CollectRef, goal decimal.Decimal, adminEmails []string) Draft {
	return Draft{
		Kind:    enums.NotificationKindGoalReached,
		Subject: fmt.Sprintf("Collect %q closed automatically", c.Title),
		Body: fmt.Sprintf(
			"The collect %q was closed automatically.\n\nReason: 100%% of the goal (%s) has been raised.",
			c.Title, FormatAmount(goal),
		),
		Recipients: adminEmails,
		CollectID:  c.id(),
	}
}

// PaymentThanks thanks the payer.
func PaymentThanks(c CollectRef, payerUsername, payerEmail string, amount decimal.Decimal) Draft {
	var to []string
	if payerEmail != "" {
		to = []string{payerEmail}
	}
	return Draft{
		Kind:    enums.NotificationKindPaymentThanks,
		Subject: "Thank you for your donation!",
		Body: fmt.Sprintf(
			"Hello, %s!\n\nYou donated %s to the collect %q.\n\nThank you for your support!",
			payerUsername, FormatAmount(amount), c.Title,
		),
		Recipients: to,
		CollectID:  c.id(),
	}
}

// DonationReceived alerts the author of a new payment. remaining is the
// formatted amount still to raise or "unlimited" when there is no goal.
func DonationReceived(c CollectRef, payerUsername string, amount, raised decimal.Decimal, remaining string) Draft {
	return Draft{
		Kind:    enums.NotificationKindDonationReceived,
		Subject: fmt.Sprintf("New donation to your collect %q!", c.Title),
		Body: fmt.Sprintf(
			"Hello, %s!\n\nUser %s supported your collect %q with %s.\nRaised so far: %s.\nLeft to raise: %s.\n\nKeep it up!",
			c.AuthorUsername, payerUsername, c.Title, FormatAmount(amount), FormatAmount(raised), remaining,
		),
		Recipients: authorRecipients(c),
		CollectID:  c.id(),
	}
}

// CommentReceived tells the author someone commented on the collect.
func CommentReceived(c CollectRef, commenterUsername, text string) Draft {
	return Draft{
		Kind:    enums.NotificationKindCommentReceived,
		Subject: fmt.Sprintf("New comment on your collect %q", c.Title),
		Body: fmt.Sprintf(
			"Hello, %s!\n\nUser %s left a comment on your collect:\n%q\n",
			c.AuthorUsername, commenterUsername, text,
		),
		Recipients: authorRecipients(c),
		CollectID:  c.id(),
	}
}
