package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/hashicorp/go-retryablehttp"
)

// VersionPath is the path of the static version marker.
const VersionPath = "/VERSION"

// maxVersionLength caps the accepted size of the version marker.
const maxVersionLength = 256

// VersionService reads the deployed version marker from the backend.
type VersionService struct {
	Client *retryablehttp.Client
	URL    string

	now func() time.Time
}

// NewVersionService returns a VersionService that issues exactly one request per lookup.
// Failed lookups are not retried, the next scheduled check serves as the retry.
func NewVersionService(url string, timeout time.Duration) VersionService {
	c := NewRetryableClient(timeout)
	c.RetryMax = 0

	return VersionService{
		Client: c,
		URL:    url,
		now:    time.Now,
	}
}

// LatestVersion returns the trimmed content of the version marker.
// The request carries a varying query parameter so that no intermediary serves a cached copy.
func (s *VersionService) LatestVersion(ctx context.Context) (string, error) {
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	url := fmt.Sprintf("%s%s?_=%d", strings.TrimRight(s.URL, "/"), VersionPath, now().UnixMilli())

	req, err := NewRetryableRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Accept", "text/plain")

	resp, err := s.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxVersionLength+1))
	if err != nil {
		return "", fmt.Errorf("failed to read version marker: %w", err)
	}

	return parseVersion(body)
}

// parseVersion validates that body holds nothing but a version string, surrounded by optional whitespace.
func parseVersion(body []byte) (string, error) {
	if len(body) > maxVersionLength || !utf8.Valid(body) {
		return "", ErrMalformedVersion
	}

	v := strings.TrimSpace(string(body))
	if v == "" {
		return "", ErrMalformedVersion
	}
	for _, r := range v {
		if unicode.IsControl(r) {
			return "", ErrMalformedVersion
		}
	}

	return v, nil
}
