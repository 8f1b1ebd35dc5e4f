package model

import (
	"time"

	"github.com/google/uuid"
)

// CrawlStatus values stored on DomainRecord.
const (
	CrawlStatusSuccess = "success"
)

// DomainRecord is the persisted classification of a domain.
// Exactly one row exists per domain; re-processing overwrites it.
type DomainRecord struct {
	ID             uuid.UUID      `json:"id"`
	DomainName     string         `json:"domain_name"`
	Classification Classification `json:"classification"`
	HasAboutPage   bool           `json:"has_about_page"`
	CrawlStatus    string         `json:"crawl_status"`
	FirstSeenAt    time.Time      `json:"first_seen_at"`
	LastAttemptAt  time.Time      `json:"last_attempt_at"`
	ProcessedAt    time.Time      `json:"processed_at"`

	// Exported is reset to false on every update so downstream exporters
	// pick the row up again.
	Exported bool `json:"exported"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// QueueKey is the ingestion row name as it was claimed, which may differ
	// from the normalized DomainName. Empty means DomainName.
	QueueKey string `json:"-"`
}

// NewDomainRecord builds the record written for a successful classification.
func NewDomainRecord(domainName string, c Classification, hasAboutPage bool) *DomainRecord {
	name := NormalizeDomain(domainName)
	return &DomainRecord{
		ID:             DomainID(name),
		DomainName:     name,
		Classification: c,
		HasAboutPage:   hasAboutPage,
		CrawlStatus:    CrawlStatusSuccess,
	}
}

// FailureRecord marks a domain as attempted and failed.
// It shares its ID with the domain's DomainRecord.
type FailureRecord struct {
	ID         uuid.UUID `json:"id"`
	DomainName string    `json:"domain_name"`
	ErrorText  string    `json:"error_text"`
	FailedAt   time.Time `json:"failed_at"`

	// QueueKey has the same meaning as DomainRecord.QueueKey.
	QueueKey string `json:"-"`
}

// NewFailureRecord builds the record written when processing a domain fails.
func NewFailureRecord(domainName, errorText string) *FailureRecord {
	name := NormalizeDomain(domainName)
	return &FailureRecord{
		ID:         DomainID(name),
		DomainName: name,
		ErrorText:  errorText,
	}
}
