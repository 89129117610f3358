// Package entity defines the content-aggregation records that the registry ingests
// (sources, feeds, news items, companies), their natural keys, and the domain errors
// shared by every layer.
package entity

// Kind names an entity kind registered through the get-or-create protocol.
type Kind string

const (
	KindSourceType Kind = "source_type"
	KindSource     Kind = "source"
	KindFeed       Kind = "feed"
	KindNewsItem   Kind = "news_item"
	KindCompany    Kind = "company"
)

// String returns the kind name used in logs and metric labels.
func (k Kind) String() string {
	return string(k)
}
