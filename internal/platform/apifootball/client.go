// Package apifootball is the REST client for the api-sports v3 football API.
// It is the fetch boundary of the worker: snapshots that are missing a match
// clock or a scoreline are rejected here and never reach the rule engine.
package apifootball

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/atho-gitrepo/36-80-live-bet/internal/domain"
)

// DefaultBaseURL is the production api-sports football endpoint.
const DefaultBaseURL = "https://v3.football.api-sports.io"

// Client is the REST client for the football data API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new api-football REST client. baseURL may be empty, in
// which case DefaultBaseURL is used.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// LiveFixtures returns a snapshot of every currently-live fixture. Entries
// that cannot be mapped to a MatchRecord (no clock yet, no score, unknown
// status) are dropped at this boundary.
func (c *Client) LiveFixtures(ctx context.Context) ([]domain.MatchRecord, error) {
	body, err := c.get(ctx, "/fixtures?live=all")
	if err != nil {
		return nil, fmt.Errorf("apifootball: live fixtures: %w", err)
	}

	var resp fixturesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("apifootball: decode live fixtures: %w", err)
	}

	records := make([]domain.MatchRecord, 0, len(resp.Response))
	for _, f := range resp.Response {
		rec, err := toRecord(f)
		if err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// FixtureByID returns the snapshot of a single fixture, typically for a
// final-result lookup after full time.
func (c *Client) FixtureByID(ctx context.Context, id string) (domain.MatchRecord, error) {
	params := url.Values{}
	params.Set("id", id)

	body, err := c.get(ctx, "/fixtures?"+params.Encode())
	if err != nil {
		return domain.MatchRecord{}, fmt.Errorf("apifootball: fixture %s: %w", id, err)
	}

	var resp fixturesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.MatchRecord{}, fmt.Errorf("apifootball: decode fixture %s: %w", id, err)
	}
	if len(resp.Response) == 0 {
		return domain.MatchRecord{}, fmt.Errorf("apifootball: fixture %s: %w", id, domain.ErrNoFixture)
	}

	rec, err := toRecord(resp.Response[0])
	if err != nil {
		return domain.MatchRecord{}, fmt.Errorf("apifootball: fixture %s: %w", id, err)
	}
	return rec, nil
}

// get performs an authenticated GET and returns the response body.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-apisports-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, domain.ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domain.ErrRateLimited
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(snippet))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

// toRecord maps an API fixture to a domain MatchRecord. A fixture without a
// clock or a scoreline is malformed for our purposes and is rejected.
func toRecord(f Fixture) (domain.MatchRecord, error) {
	status, ok := mapStatus(f.Fixture.Status.Short)
	if !ok {
		return domain.MatchRecord{}, fmt.Errorf("unhandled status %q", f.Fixture.Status.Short)
	}

	if f.Goals.Home == nil || f.Goals.Away == nil {
		return domain.MatchRecord{}, fmt.Errorf("fixture %d: missing score", f.Fixture.ID)
	}

	minute := 0
	if f.Fixture.Status.Elapsed != nil {
		minute = *f.Fixture.Status.Elapsed
	} else if status != domain.StatusScheduled {
		return domain.MatchRecord{}, fmt.Errorf("fixture %d: missing minute", f.Fixture.ID)
	}

	return domain.MatchRecord{
		MatchID: strconv.FormatInt(f.Fixture.ID, 10),
		League:  f.League.Name,
		Home:    f.Teams.Home.Name,
		Away:    f.Teams.Away.Name,
		Minute:  minute,
		Score:   domain.Score{Home: *f.Goals.Home, Away: *f.Goals.Away},
		Status:  status,
	}, nil
}

// mapStatus translates api-sports status shorts to the domain status enum.
func mapStatus(short string) (domain.MatchStatus, bool) {
	switch short {
	case "NS", "TBD":
		return domain.StatusScheduled, true
	case "1H", "2H", "ET", "P", "BT", "LIVE", "SUSP", "INT":
		return domain.StatusLive, true
	case "HT":
		return domain.StatusHalfTime, true
	case "FT", "AET", "PEN":
		return domain.StatusFullTime, true
	default:
		// Postponed, cancelled, abandoned etc. are of no interest here.
		return "", false
	}
}
