// Package model defines the data structures shared by the ingestion pipeline.
//
// This package contains the following main types:
//   - IngestionItem: a queued domain awaiting analysis
//   - ExtractedContent: normalized page content produced by a single page load
//   - Classification: the structured semantic labels returned by the classifier
//   - DomainRecord: the persisted classification row for a domain
//   - FailureRecord: the persisted record of a failed attempt
//
// The domain name is the only business key. DomainID derives the stable row
// identifier used by both DomainRecord and FailureRecord.
package model
