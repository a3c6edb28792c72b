package models

// Article is a single news item as returned by the feed.
// URL is the identity of an article: two items with the same URL are the same article.
type Article struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content,omitempty"`     // Body excerpt, only a bounded prefix is analysed
	PublishedAt string `json:"published_at,omitempty"` // ISO-8601 as supplied by the provider
	SourceName  string `json:"source_name,omitempty"`
	Author      string `json:"author,omitempty"`
}

// FeedQuery describes a single batch request against the news feed
type FeedQuery struct {
	Query    string
	Language string
	SortBy   string
	PageSize int
}
