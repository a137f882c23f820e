package bgg

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// HttpResult wraps the outcome of one API call. A non-success status code is
// not an error at the transport level; the code is surfaced for the caller's
// error-message lookup.
type HttpResult[T any] struct {
	Success    bool
	Data       *T
	StatusCode int
}

func (r *HttpResult[T]) FormatError(keys ...string) error {
	if len(keys) == 0 {
		return fmt.Errorf("request failed with status %d", r.StatusCode)
	}
	return fmt.Errorf("%v: request failed with status %d", keys, r.StatusCode)
}

// Client is a typed client for the XML API. All calls share one rate limiter;
// the remote service throttles aggressively.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

func get[T any](ctx context.Context, c *Client, url string) (*HttpResult[T], error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &HttpResult[T]{
			Success:    false,
			StatusCode: resp.StatusCode,
		}, nil
	}

	var data T
	if err := xml.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &HttpResult[T]{
		Success:    true,
		Data:       &data,
		StatusCode: resp.StatusCode,
	}, nil
}

// PlaysByGame fetches one page of the user's plays of a single game.
func (c *Client) PlaysByGame(ctx context.Context, username string, gameID int64, page int) (*HttpResult[PlaysResponse], error) {
	u := fmt.Sprintf("%s/plays?username=%s&id=%d&page=%d", c.baseURL, url.QueryEscape(username), gameID, page)
	return get[PlaysResponse](ctx, c, u)
}

// PlaysByDate fetches one page of the user's plays logged between two dates
// (inclusive, YYYY-MM-DD).
func (c *Client) PlaysByDate(ctx context.Context, username, minDate, maxDate string, page int) (*HttpResult[PlaysResponse], error) {
	u := fmt.Sprintf("%s/plays?username=%s&mindate=%s&maxdate=%s&page=%d",
		c.baseURL, url.QueryEscape(username), url.QueryEscape(minDate), url.QueryEscape(maxDate), page)
	return get[PlaysResponse](ctx, c, u)
}

// Plays fetches one page of all the user's plays.
func (c *Client) Plays(ctx context.Context, username string, page int) (*HttpResult[PlaysResponse], error) {
	u := fmt.Sprintf("%s/plays?username=%s&page=%d", c.baseURL, url.QueryEscape(username), page)
	return get[PlaysResponse](ctx, c, u)
}
