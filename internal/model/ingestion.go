package model

import "time"

// IngestionItem is a pending domain in the shared work queue.
// It is created by an external discovery process and mutated only by a
// claim, which sets LockedAt.
type IngestionItem struct {
	// DomainName is the unique business key of the item.
	DomainName string `json:"domain_name" db:"domain_name_text"`

	// PublicSuffix is the effective TLD of the domain (e.g. "co.uk").
	PublicSuffix string `json:"public_suffix" db:"public_suffix_text"`

	// DiscoveredAt orders the queue; the oldest unlocked item is claimed first.
	DiscoveredAt time.Time `json:"discovered_at" db:"discovered_at_ts"`

	// LockedAt is set when a worker claims the item. Nil means claimable.
	LockedAt *time.Time `json:"locked_at,omitempty" db:"locked_at_ts"`
}

// Locked reports whether the item has been claimed.
func (i *IngestionItem) Locked() bool {
	return i.LockedAt != nil
}

// QueueStats summarizes the state of the queue and result tables.
type QueueStats struct {
	Pending    int `json:"pending"`
	Locked     int `json:"locked"`
	Classified int `json:"classified"`
	Failed     int `json:"failed"`
}
