package haodoo

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Result is one catalog entry extracted from a search page.
type Result struct {
	ID          string
	Title       string
	Author      string
	DownloadURL string
}

// Book links on result pages look like
//
//	<a href="?M=book&P=B1234">《書名》作者</a>
//
// The identifier is the P= token; display text carries title (in
// 《》 brackets) and author.
var bookLinkPattern = regexp.MustCompile(`[?&]P=([A-Za-z]?\d+[A-Za-z]*)[^>]*>([^<]+)<`)

// titleAuthorPattern splits the anchor text into title and author.
var titleAuthorPattern = regexp.MustCompile(`《([^》]+)》\s*(.*)`)

// audioVariantPrefix marks audiobook editions of a title. These share
// the text edition's number with an A-prefixed identifier and are not
// downloadable EPUBs, so they are dropped.
const audioVariantPrefix = "A"

// Search queries the catalog and returns up to ResultCap text-edition
// results. Zero matches is an ordinary outcome (empty slice, nil
// error), never padded with fabricated entries.
func (c *Client) Search(ctx context.Context, keyword string) ([]Result, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, wrapError("search", "", ErrBadRequest)
	}

	query, err := encodeBig5Query(keyword)
	if err != nil {
		return nil, wrapError("search", "", err)
	}

	searchURL := fmt.Sprintf("%s/?M=hd&P=search&k=%s", c.cfg.BaseURL, query)
	body, err := c.doRequest(ctx, searchURL)
	if err != nil {
		return nil, wrapError("search", searchURL, err)
	}

	page, err := decodeBig5(body)
	if err != nil {
		return nil, wrapError("search", searchURL, err)
	}

	results := c.extractResults(page)
	c.logger.Debug("haodoo search complete", "keyword", keyword, "results", len(results))
	return results, nil
}

// extractResults pattern-matches book identifiers out of a decoded
// result page, excluding audio variants, deduplicating, and capping.
func (c *Client) extractResults(page string) []Result {
	matches := bookLinkPattern.FindAllStringSubmatch(page, -1)

	seen := make(map[string]bool)
	results := make([]Result, 0, c.cfg.ResultCap)

	for _, m := range matches {
		id := m[1]
		if strings.HasPrefix(id, audioVariantPrefix) {
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true

		title, author := parseDisplayText(m[2])
		results = append(results, Result{
			ID:          id,
			Title:       title,
			Author:      author,
			DownloadURL: c.DownloadURL(id),
		})

		if len(results) >= c.cfg.ResultCap {
			break
		}
	}

	return results
}

// DownloadURL maps a book identifier to its EPUB download location.
// The mapping is deterministic; the same ID always yields the same URL.
func (c *Client) DownloadURL(id string) string {
	return fmt.Sprintf("%s/?M=d&P=%s.epub", c.cfg.BaseURL, id)
}

// parseDisplayText splits "《Title》Author" anchor text. Text without
// brackets is treated as a bare title.
func parseDisplayText(text string) (title, author string) {
	text = strings.TrimSpace(stripTags(text))
	if m := titleAuthorPattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	return text, ""
}
