package repository

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang-stock-insight/internal/insight/config"
	"golang-stock-insight/internal/insight/dto"
	"golang-stock-insight/pkg/logger"
	"golang-stock-insight/pkg/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/mauidude/go-readability"
	"github.com/mmcdole/gofeed"
	"github.com/patrickmn/go-cache"
)

type articleRepository struct {
	cfg          *config.Config
	log          *logger.Logger
	client       *http.Client
	articleCache *cache.Cache
}

// NewArticleRepository creates an ArticleRepository that resolves the newest
// full article for a ticker through Google News RSS.
func NewArticleRepository(cfg *config.Config, log *logger.Logger) ArticleRepository {
	timeout := cfg.News.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ttl := cfg.News.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	return &articleRepository{
		cfg:          cfg,
		log:          log,
		client:       &http.Client{Timeout: timeout},
		articleCache: cache.New(ttl, 2*ttl),
	}
}

// GetLatestArticle returns the newest readable article for the ticker, or
// nil when none of the candidates can be extracted.
func (r *articleRepository) GetLatestArticle(ctx context.Context, ticker string) (*dto.Article, error) {
	if cached, found := r.articleCache.Get(ticker); found {
		return cached.(*dto.Article), nil
	}

	feedURL := fmt.Sprintf("%s/search?q=%s+stock&hl=en-US&gl=US&ceid=US:en", r.cfg.News.RSSBaseURL, url.QueryEscape(ticker))
	fp := gofeed.NewParser()
	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSS feed: %w", err)
	}

	sort.Slice(feed.Items, func(i, j int) bool {
		if feed.Items[i].PublishedParsed == nil || feed.Items[j].PublishedParsed == nil {
			return false
		}
		return feed.Items[i].PublishedParsed.After(*feed.Items[j].PublishedParsed)
	})

	maxItems := r.cfg.News.MaxItems
	if maxItems <= 0 {
		maxItems = 5
	}

	maxAge := time.Duration(r.cfg.News.MaxNewsAgeInDays) * 24 * time.Hour
	now := time.Now()

	for i, item := range feed.Items {
		if i >= maxItems {
			break
		}
		if !utils.ShouldContinue(ctx, r.log) {
			return nil, ctx.Err()
		}
		if item.PublishedParsed == nil {
			continue
		}
		if maxAge > 0 && item.PublishedParsed.Before(now.Add(-maxAge)) {
			continue
		}

		content, err := r.extractContent(ctx, item.Link)
		if err != nil {
			r.log.Debug("Failed to extract article content",
				logger.ErrorField(err),
				logger.StringField("link", item.Link),
			)
			continue
		}

		parsedURL, err := url.Parse(item.Link)
		if err != nil {
			continue
		}

		article := &dto.Article{
			Title:       utils.CleanToValidUTF8(item.Title),
			Link:        item.Link,
			Source:      parsedURL.Hostname(),
			PublishedAt: item.PublishedParsed,
			Content:     content,
		}
		r.articleCache.Set(ticker, article, cache.DefaultExpiration)
		return article, nil
	}

	return nil, nil
}

func (r *articleRepository) extractContent(ctx context.Context, link string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch article, status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	doc, err := readability.NewDocument(string(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse article content: %w", err)
	}

	docHTML, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(doc.Content())))
	if err != nil {
		return "", fmt.Errorf("failed to parse extracted content: %w", err)
	}

	content := strings.TrimSpace(docHTML.Text())
	content = strings.NewReplacer("\n", " ", "\t", " ", "\r", " ", "\f", " ").Replace(content)
	if content == "" {
		return "", fmt.Errorf("no readable content found")
	}

	return utils.SafeText(content), nil
}
