// Package scrape reduces a hospital website to plain text for summarization
// prompts. It is deliberately shallow: one page, scripts and styles dropped,
// whitespace collapsed, hard character cap.
package scrape

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const userAgent = "aivisbot/1.0 (+https://github.com/yukiharu/aivis)"

var wsRe = regexp.MustCompile(`\s+`)

// Fetcher downloads and reduces website text.
type Fetcher struct {
	http     *http.Client
	maxChars int
}

// NewFetcher builds a Fetcher with the given request timeout and text cap.
func NewFetcher(timeout time.Duration, maxChars int) *Fetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if maxChars <= 0 {
		maxChars = 6000
	}
	return &Fetcher{
		http:     &http.Client{Timeout: timeout},
		maxChars: maxChars,
	}
}

// FetchText fetches target and returns its visible text, clamped to the
// configured cap. A URL without a scheme gets https:// prefixed. Fetch and
// parse failures degrade to an empty string: the summarize prompt tolerates
// missing page text, so a dead site must not fail the request.
func (f *Fetcher) FetchText(ctx context.Context, target string) string {
	url := target
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.http.Do(req)
	if err != nil {
		zap.L().Warn("site fetch failed", zap.String("url", url), zap.Error(err))
		return ""
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		zap.L().Warn("site parse failed", zap.String("url", url), zap.Error(err))
		return ""
	}

	doc.Find("script, style, noscript").Remove()
	text := wsRe.ReplaceAllString(doc.Text(), " ")
	text = strings.TrimSpace(text)
	if runes := []rune(text); len(runes) > f.maxChars {
		text = string(runes[:f.maxChars])
	}
	return text
}
