package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"HomeDash/internal/model"
)

// RSSFetcher implements NewsFetcher over a single RSS feed.
type RSSFetcher struct {
	FeedURL string
	Source  string
	parser  *gofeed.Parser
}

// NewRSSFetcher creates a news fetcher for the given feed.
func NewRSSFetcher(feedURL, source string) *RSSFetcher {
	return &RSSFetcher{FeedURL: feedURL, Source: source, parser: gofeed.NewParser()}
}

func (f *RSSFetcher) Name() string { return "rss" }

// FetchNews returns up to limit cleaned headlines.
func (f *RSSFetcher) FetchNews(ctx context.Context, limit int) ([]model.NewsItem, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	feed, err := f.parser.ParseURLWithContext(f.FeedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := make([]model.NewsItem, 0, limit)
	for _, it := range feed.Items {
		if len(items) >= limit {
			break
		}
		title := strings.TrimSpace(strings.ReplaceAll(it.Title, "VIDEO:", ""))
		if title == "" {
			continue
		}
		items = append(items, model.NewsItem{Title: title, Source: f.Source})
	}
	return items, nil
}
