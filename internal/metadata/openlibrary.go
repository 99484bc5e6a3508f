// Package metadata looks up book details on Open Library, used to prefill
// catalog entries from an ISBN instead of typing everything by hand.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const userAgent = "BookTracker/1.0"

// BookDetails is what an external lookup can contribute to a catalog entry.
type BookDetails struct {
	Title          string `json:"title,omitempty"`
	Author         string `json:"author,omitempty"`
	ISBN           string `json:"isbn,omitempty"`
	PageCount      int    `json:"page_count,omitempty"`
	PublishYear    int    `json:"publish_year,omitempty"`
	CoverURL       string `json:"cover_url,omitempty"`
	OpenLibraryKey string `json:"open_library_key,omitempty"`
}

// OpenLibraryClient fetches book details from the Open Library API.
type OpenLibraryClient struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rateLimiter
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

func (r *rateLimiter) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	since := time.Since(r.lastCall)
	if since < r.interval {
		time.Sleep(r.interval - since)
	}
	r.lastCall = time.Now()
}

// NewOpenLibraryClient creates a rate-limited Open Library client.
func NewOpenLibraryClient() *OpenLibraryClient {
	return &OpenLibraryClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:     "https://openlibrary.org",
		rateLimiter: newRateLimiter(time.Second), // 1 request per second
	}
}

func (c *OpenLibraryClient) get(ctx context.Context, url string, into any) error {
	c.rateLimiter.wait()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

var errNotFound = fmt.Errorf("not found")

// LookupISBN fetches details for a single edition by its ISBN.
func (c *OpenLibraryClient) LookupISBN(ctx context.Context, isbn string) (*BookDetails, error) {
	isbn = normalizeISBN(isbn)
	if isbn == "" {
		return nil, fmt.Errorf("invalid ISBN")
	}

	var edition openLibraryEdition
	err := c.get(ctx, fmt.Sprintf("%s/isbn/%s.json", c.baseURL, isbn), &edition)
	if err == errNotFound {
		return nil, fmt.Errorf("ISBN not found: %s", isbn)
	}
	if err != nil {
		return nil, err
	}

	details := &BookDetails{
		Title:          edition.Title,
		ISBN:           isbn,
		PageCount:      edition.NumberOfPages,
		OpenLibraryKey: edition.Key,
		CoverURL:       coverURL(isbn),
	}
	if edition.PublishDate != "" {
		details.PublishYear = extractYear(edition.PublishDate)
	}

	// Author comes as a reference that needs a second fetch
	if len(edition.Authors) > 0 {
		if name, err := c.fetchAuthorName(ctx, edition.Authors[0].Key); err == nil {
			details.Author = name
		}
	}

	return details, nil
}

// Search finds the best edition match for a title, optionally narrowed by
// author.
func (c *OpenLibraryClient) Search(ctx context.Context, title, author string) (*BookDetails, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	q := title
	if author != "" {
		q = fmt.Sprintf("%s %s", title, author)
	}

	var result openLibrarySearchResult
	searchURL := fmt.Sprintf("%s/search.json?q=%s&limit=5", c.baseURL, url.QueryEscape(q))
	if err := c.get(ctx, searchURL, &result); err != nil {
		return nil, err
	}
	if len(result.Docs) == 0 {
		return nil, fmt.Errorf("no results found for: %s", title)
	}

	doc := bestMatch(result.Docs, title, author)

	details := &BookDetails{
		Title:          doc.Title,
		PublishYear:    doc.FirstPublishYear,
		OpenLibraryKey: doc.Key,
	}
	if len(doc.AuthorName) > 0 {
		details.Author = doc.AuthorName[0]
	}
	if len(doc.ISBN) > 0 {
		details.ISBN = doc.ISBN[0]
		details.CoverURL = coverURL(doc.ISBN[0])
	}
	if doc.NumberOfPages > 0 {
		details.PageCount = doc.NumberOfPages
	}

	return details, nil
}

// bestMatch scores search results, preferring exact title and author matches
// and entries that carry an ISBN.
func bestMatch(docs []openLibrarySearchDoc, title, author string) *openLibrarySearchDoc {
	titleLower := strings.ToLower(title)
	authorLower := strings.ToLower(author)

	var best *openLibrarySearchDoc
	bestScore := -1

	for i := range docs {
		doc := &docs[i]
		score := 0

		if strings.ToLower(doc.Title) == titleLower {
			score += 10
		} else if strings.Contains(strings.ToLower(doc.Title), titleLower) {
			score += 5
		}

		if author != "" {
			for _, name := range doc.AuthorName {
				if strings.ToLower(name) == authorLower {
					score += 10
					break
				} else if strings.Contains(strings.ToLower(name), authorLower) {
					score += 5
					break
				}
			}
		}

		if len(doc.ISBN) > 0 {
			score += 2
		}

		if score > bestScore {
			bestScore = score
			best = doc
		}
	}

	if best == nil {
		best = &docs[0]
	}
	return best
}

func (c *OpenLibraryClient) fetchAuthorName(ctx context.Context, authorKey string) (string, error) {
	if authorKey == "" {
		return "", fmt.Errorf("empty author key")
	}

	var authorData struct {
		Name string `json:"name"`
	}
	if err := c.get(ctx, fmt.Sprintf("%s%s.json", c.baseURL, authorKey), &authorData); err != nil {
		return "", err
	}
	return authorData.Name, nil
}

func coverURL(isbn string) string {
	return fmt.Sprintf("https://covers.openlibrary.org/b/isbn/%s-L.jpg", isbn)
}

// normalizeISBN removes hyphens and spaces from ISBN.
func normalizeISBN(isbn string) string {
	isbn = strings.ReplaceAll(isbn, "-", "")
	isbn = strings.ReplaceAll(isbn, " ", "")
	isbn = strings.TrimSpace(isbn)

	if len(isbn) != 10 && len(isbn) != 13 {
		return ""
	}
	return isbn
}

// extractYear tries to extract a 4-digit year from a date string.
func extractYear(dateStr string) int {
	dateStr = strings.TrimSpace(dateStr)
	if len(dateStr) < 4 {
		return 0
	}

	formats := []string{
		"2006",
		"January 2, 2006",
		"Jan 2, 2006",
		"2006-01-02",
		"January 2006",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t.Year()
		}
	}

	// Last resort: find 4 consecutive digits
	for i := 0; i <= len(dateStr)-4; i++ {
		if dateStr[i] >= '0' && dateStr[i] <= '9' {
			var year int
			if _, err := fmt.Sscanf(dateStr[i:i+4], "%d", &year); err == nil && year > 1000 && year < 3000 {
				return year
			}
		}
	}
	return 0
}

// Open Library API response types (internal)

type openLibraryEdition struct {
	Key           string      `json:"key"`
	Title         string      `json:"title"`
	Authors       []authorRef `json:"authors"`
	PublishDate   string      `json:"publish_date"`
	NumberOfPages int         `json:"number_of_pages"`
}

type authorRef struct {
	Key string `json:"key"`
}

type openLibrarySearchResult struct {
	NumFound int                    `json:"numFound"`
	Docs     []openLibrarySearchDoc `json:"docs"`
}

type openLibrarySearchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	ISBN             []string `json:"isbn"`
	NumberOfPages    int      `json:"number_of_pages"`
}
