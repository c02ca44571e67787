// Package fetch downloads job postings from ATS pages and extracts the
// fields needed to build a job document.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/talent-match/internal/types"
)

const (
	requestTimeout = 30 * time.Second
	userAgent      = "Mozilla/5.0 (compatible; TalentMatch/1.0)"
)

// Error wraps a failure while fetching or parsing a posting page.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Platform identifies a known applicant tracking system, used to pick
// content selectors tuned for its page structure.
type Platform string

const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkday    Platform = "workday"
	PlatformUnknown    Platform = "unknown"
)

// DetectPlatform identifies the ATS platform from a posting URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}
	host := strings.ToLower(parsed.Host)

	switch {
	case strings.Contains(host, "greenhouse.io"):
		return PlatformGreenhouse
	case strings.Contains(host, "lever.co"):
		return PlatformLever
	case strings.Contains(host, "workday.com"), strings.Contains(host, "myworkdayjobs.com"):
		return PlatformWorkday
	default:
		return PlatformUnknown
	}
}

// descriptionSelectors returns content selectors for a platform, most
// specific first, ending in generic job board selectors.
func descriptionSelectors(platform Platform) []string {
	generic := []string{
		".job-description", ".job-content", "#job-description", "#job-content",
		".posting-content", ".job-details", "[data-testid='job-description']",
		"main", "article", "#content",
	}
	switch platform {
	case PlatformGreenhouse:
		return append([]string{".job__description.body", ".job__description"}, generic...)
	case PlatformLever:
		return append([]string{".posting-page", ".section-wrapper.page-full-width", ".posting"}, generic...)
	case PlatformWorkday:
		return append([]string{"[data-automation-id='jobPostingDescription']", ".jobdescription"}, generic...)
	default:
		return generic
	}
}

// JobPosting downloads a posting page and extracts its title, company,
// location, and description. Title, company, and location come from meta
// tags and known ATS elements; the description is the first matching content
// block after noise elements are stripped.
func JobPosting(ctx context.Context, urlStr string) (*types.JobPosting, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &Error{URL: urlStr, Message: "invalid URL", Cause: err}
	}

	html, err := fetchHTML(ctx, urlStr)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to parse HTML", Cause: err}
	}

	posting := &types.JobPosting{
		URL:         urlStr,
		Title:       extractTitle(doc),
		CompanyName: extractCompany(doc),
		Location:    extractLocation(doc),
	}

	doc.Find("nav, footer, header, script, style, noscript, .ad, .advertisement, .ads, .sidebar, .cookie-banner, .popup").Remove()
	posting.Description = extractDescription(doc, descriptionSelectors(DetectPlatform(urlStr)))

	return posting, nil
}

func fetchHTML(ctx context.Context, urlStr string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", &Error{URL: urlStr, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", userAgent)

	client := &http.Client{Timeout: requestTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", &Error{URL: urlStr, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &Error{URL: urlStr, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{URL: urlStr, Message: "failed to read response body", Cause: err}
	}
	return string(body), nil
}

// extractDescription returns the text of the first matching content block,
// falling back to the whole body.
func extractDescription(doc *goquery.Document, selectors []string) string {
	content := doc.Find("body")
	for _, sel := range selectors {
		if s := doc.Find(sel); s.Length() > 0 {
			content = s.First()
			break
		}
	}
	return cleanWhitespace(content.Text())
}

func extractTitle(doc *goquery.Document) string {
	if v, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	for _, sel := range []string{".app-title", ".posting-headline h2", "h1"} {
		if t := strings.TrimSpace(doc.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func extractCompany(doc *goquery.Document) string {
	if v, ok := doc.Find(`meta[property="og:site_name"]`).Attr("content"); ok {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(doc.Find(".company-name").First().Text())
}

func extractLocation(doc *goquery.Document) string {
	for _, sel := range []string{".location", ".posting-categories .location", "[data-testid='location']"} {
		if t := strings.TrimSpace(doc.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

// cleanWhitespace trims every line and drops blank ones.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
