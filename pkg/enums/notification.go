package enums

import "fmt"

// NotificationKind identifies which lifecycle event produced a mail.
type NotificationKind string

const (
	NotificationKindCollectSubmitted NotificationKind = "collect_submitted"
	NotificationKindCollectApproved  NotificationKind = "collect_approved"
	NotificationKindCollectClosed    NotificationKind = "collect_closed"
	NotificationKindClosureRequested NotificationKind = "closure_requested"
	NotificationKindGoalReached      NotificationKind = "goal_reached"
	NotificationKindPaymentThanks    NotificationKind = "payment_thanks"
	NotificationKindDonationReceived NotificationKind = "donation_received"
	NotificationKindCommentReceived  NotificationKind = "comment_received"
)

var validNotificationKinds = []NotificationKind{
	NotificationKindCollectSubmitted,
	NotificationKindCollectApproved,
	NotificationKindCollectClosed,
	NotificationKindClosureRequested,
	NotificationKindGoalReached,
	NotificationKindPaymentThanks,
	NotificationKindDonationReceived,
	NotificationKindCommentReceived,
}

func (k NotificationKind) String() string {
	return string(k)
}

// IsValid checks whether the given kind matches the canonical enum.
func (k NotificationKind) IsValid() bool {
	for _, candidate := range validNotificationKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseNotificationKind converts raw strings into NotificationKind.
func ParseNotificationKind(value string) (NotificationKind, error) {
	for _, candidate := range validNotificationKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification kind %q", value)
}

// NotificationStatus tracks the single delivery attempt of a notification.
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
	NotificationStatusSkipped NotificationStatus = "skipped"
)

var validNotificationStatuses = []NotificationStatus{
	NotificationStatusPending,
	NotificationStatusSent,
	NotificationStatusFailed,
	NotificationStatusSkipped,
}

func (s NotificationStatus) String() string {
	return string(s)
}

func (s NotificationStatus) IsValid() bool {
	for _, candidate := range validNotificationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseNotificationStatus(value string) (NotificationStatus, error) {
	for _, candidate := range validNotificationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification status %q", value)
}
