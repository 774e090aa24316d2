package strava

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAPIBaseURL = "https://www.strava.com/api/v3"
	defaultWebBaseURL = "https://www.strava.com"
	defaultPageSize   = 200
	maxPageSize       = 200

	// ExportTimeout bounds every GPX download.
	ExportTimeout = 10 * time.Second
)

// Client provides access to the Strava API and the GPX export endpoint.
type Client struct {
	apiBaseURL   string
	webBaseURL   string
	accessToken  string
	pageSize     int
	httpClient   *http.Client
	exportClient *http.Client
	cookies      []*http.Cookie
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the client used for bearer-token API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithAPIBaseURL overrides the API root (used in tests).
func WithAPIBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			c.apiBaseURL = strings.TrimRight(trimmed, "/")
		}
	}
}

// WithWebBaseURL overrides the website root serving GPX exports (used in tests).
func WithWebBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			c.webBaseURL = strings.TrimRight(trimmed, "/")
		}
	}
}

// WithAccessToken sets the OAuth bearer token.
func WithAccessToken(token string) Option {
	return func(c *Client) {
		c.accessToken = strings.TrimSpace(token)
	}
}

// WithCookies sets the browser session cookies sent with GPX downloads.
func WithCookies(cookies []*http.Cookie) Option {
	return func(c *Client) {
		c.cookies = append([]*http.Cookie(nil), cookies...)
	}
}

// WithPageSize sets the number of activities requested per page.
func WithPageSize(size int) Option {
	return func(c *Client) {
		if size > 0 && size <= maxPageSize {
			c.pageSize = size
		}
	}
}

// New creates a Strava client.
func New(opts ...Option) *Client {
	client := &Client{
		apiBaseURL:   defaultAPIBaseURL,
		webBaseURL:   defaultWebBaseURL,
		pageSize:     defaultPageSize,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		exportClient: &http.Client{Timeout: ExportTimeout, CheckRedirect: noRedirect},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Athlete fetches the authenticated athlete's profile.
func (c *Client) Athlete(ctx context.Context) (*Athlete, error) {
	var athlete Athlete
	if err := c.getJSON(ctx, "/athlete", nil, &athlete); err != nil {
		return nil, err
	}
	return &athlete, nil
}

// Activities returns the athlete's activities in the order Strava lists them
// (newest first). Pages are fetched on demand; the sequence ends after the
// first empty page or yields a single error and stops.
func (c *Client) Activities(ctx context.Context) iter.Seq2[Activity, error] {
	return func(yield func(Activity, error) bool) {
		for page := 1; ; page++ {
			batch, err := c.activityPage(ctx, page)
			if err != nil {
				yield(Activity{}, err)
				return
			}
			if len(batch) == 0 {
				return
			}
			for _, activity := range batch {
				if !yield(activity, nil) {
					return
				}
			}
		}
	}
}

func (c *Client) activityPage(ctx context.Context, page int) ([]Activity, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(c.pageSize))

	var batch []Activity
	if err := c.getJSON(ctx, "/athlete/activities", params, &batch); err != nil {
		return nil, fmt.Errorf("list activities page %d: %w", page, err)
	}
	return batch, nil
}

// ExportGPX downloads the GPX track of one activity using the session
// cookies. A non-200 answer, redirects included, yields *ExportStatusError;
// transport failures are returned as-is.
func (c *Client) ExportGPX(ctx context.Context, activityID int64) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/activities/%d/export_gpx", c.webBaseURL, activityID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	resp, err := c.exportClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download gpx for activity %d: %w", activityID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &ExportStatusError{ActivityID: activityID, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read gpx for activity %d: %w", activityID, err)
	}
	return data, nil
}

// noRedirect stops at the first response. An expired session redirects the
// export route to the login page, which must not be saved as a track.
func noRedirect(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}

type errorPayload struct {
	Message string `json:"message"`
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	endpoint, err := url.Parse(c.apiBaseURL + path)
	if err != nil {
		return fmt.Errorf("parse strava url: %w", err)
	}
	if len(params) > 0 {
		endpoint.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Endpoint: path, StatusCode: resp.StatusCode}
		var payload errorPayload
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		if json.Unmarshal(body, &payload) == nil {
			apiErr.Message = strings.TrimSpace(payload.Message)
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode strava %s response: %w", path, err)
	}
	return nil
}

// IsUnauthorized reports whether err stems from a rejected bearer token.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
