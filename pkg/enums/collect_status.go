package enums

import "fmt"

// CollectStatus is the derived moderation state of a collect.
type CollectStatus string

const (
	CollectStatusPending CollectStatus = "pending"
	CollectStatusActive  CollectStatus = "active"
	CollectStatusClosed  CollectStatus = "closed"
)

func (s CollectStatus) String() string {
	return string(s)
}

func (s CollectStatus) IsValid() bool {
	switch s {
	case CollectStatusPending, CollectStatusActive, CollectStatusClosed:
		return true
	}
	return false
}

// PublicListing selects the home or archive feed.
type PublicListing string

const (
	PublicListingActive  PublicListing = "active"
	PublicListingArchive PublicListing = "archive"
)

func ParsePublicListing(value string) (PublicListing, error) {
	switch PublicListing(value) {
	case "", PublicListingActive:
		return PublicListingActive, nil
	case PublicListingArchive:
		return PublicListingArchive, nil
	}
	return "", fmt.Errorf("invalid listing %q", value)
}
