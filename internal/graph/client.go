package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"tenant-reports/internal/config"
	appErrors "tenant-reports/pkg/errors"
)

// Client is a thin adapter over the Microsoft Graph REST API. It only
// reads; every call is a synchronous paginated fetch with no retry policy.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client authenticating with the OAuth2
// client-credentials flow against the tenant's token endpoint.
func NewClient(cfg config.GraphConfig) *Client {
	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", cfg.TenantID),
		Scopes:       []string{"https://graph.microsoft.com/.default"},
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    cc.Client(context.Background()),
	}
}

// NewClientWithHTTPClient bypasses the token flow; tests point it at an
// httptest server.
func NewClientWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// FetchOptions controls one paginated fetch.
type FetchOptions struct {
	// PageSize is passed to the server as the $top page-size hint.
	PageSize int
	// MaxRecords caps the result count; 0 means unlimited. Hitting the cap
	// is reported via the truncated result, not as an error.
	MaxRecords int
	// OSFilter is an allow-list on the operating system field, translated
	// into a server-side $filter predicate.
	OSFilter []string
}

type page struct {
	Value    []json.RawMessage `json:"value"`
	NextLink string            `json:"@odata.nextLink"`
}

// getPage performs one GET and decodes the standard OData envelope.
func (c *Client) getPage(ctx context.Context, url string) (*page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("graph returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var p page
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding graph response: %w", err)
	}
	return &p, nil
}

// errStopPaging lets a decode callback end the walk early; fetchAll
// reports it as truncation, not failure.
var errStopPaging = errors.New("stop paging")

// fetchAll walks @odata.nextLink pages starting at firstURL, decoding each
// raw item via decode, until the pages run out or maxRecords is reached.
// The second result reports whether the result set was truncated.
func (c *Client) fetchAll(ctx context.Context, firstURL string, maxRecords int, decode func(json.RawMessage) error) (int, bool, error) {
	count := 0
	next := firstURL
	for next != "" {
		p, err := c.getPage(ctx, next)
		if err != nil {
			return count, false, appErrors.NewSourceError("fetching "+firstURL, err)
		}
		for _, raw := range p.Value {
			if maxRecords > 0 && count >= maxRecords {
				return count, true, nil
			}
			if err := decode(raw); err != nil {
				if errors.Is(err, errStopPaging) {
					return count, true, nil
				}
				return count, false, appErrors.NewSourceError("decoding record", err)
			}
			count++
		}
		if maxRecords > 0 && count >= maxRecords && p.NextLink != "" {
			return count, true, nil
		}
		next = p.NextLink
	}
	return count, false, nil
}

// parseGraphTime turns a Graph datetime into a nullable timestamp. Graph
// encodes "never" as the zero or epoch instant; both map to nil.
func parseGraphTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	if t.Year() <= 1970 {
		return nil
	}
	return &t
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
