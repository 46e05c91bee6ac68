package yfinance

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/finflux/internal/infra"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/models"
)

// --- News fetcher ---

type newsFetcher struct {
	provider.BaseFetcher
	api    *api
	parser *gofeed.Parser
}

func newNewsFetcher(a *api, lim *infra.RateLimiter) *newsFetcher {
	return &newsFetcher{
		BaseFetcher: provider.NewBaseFetcherWithLimiter(
			provider.ModelNews,
			"Headline news for a symbol from the Yahoo Finance RSS feed",
			[]string{provider.ParamSymbol},
			nil,
			lim,
		),
		api:    a,
		parser: gofeed.NewParser(),
	}
}

func (f *newsFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("s", symbol)
	q.Set("region", "US")
	q.Set("lang", "en-US")
	body, err := f.api.client.DoGet(ctx, providerName, f.api.feeds+"rss/2.0/headline?"+q.Encode(),
		map[string]string{"Accept": "application/rss+xml"})
	if err != nil {
		return nil, fmt.Errorf("yfinance news %s: %w", symbol, err)
	}

	feed, err := f.parser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse RSS for %s: %w", symbol, err)
	}

	items := make([]models.NewsItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		n := models.NewsItem{
			Title:    it.Title,
			Provider: "Yahoo Finance",
			Snippet:  plainText(it.Description),
			URL:      it.Link,
		}
		if len(it.Authors) > 0 && it.Authors[0].Name != "" {
			n.Provider = it.Authors[0].Name
		}
		if it.PublishedParsed != nil {
			n.Published = it.PublishedParsed.UTC()
		}
		items = append(items, n)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Published.After(items[j].Published) })
	return newResult(items), nil
}
