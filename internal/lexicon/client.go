// Package lexicon implements a client for the Lexicon music-library
// HTTP API, normalizing its heterogeneous response shapes into a single
// track record.
package lexicon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"lexibot/internal/bot"
)

// Timeout budgets per call class. Connectivity probes are kept short;
// ingestion may involve the server reading tags from disk.
const (
	probeTimeout  = 5 * time.Second
	readTimeout   = 10 * time.Second
	ingestTimeout = 30 * time.Second
)

// StatusError reports a non-success HTTP status from the Lexicon API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("lexicon API returned status %d: %s", e.Code, e.Body)
}

// Client talks to a Lexicon API server.
type Client struct {
	baseURL    string
	ingestPath string
	httpClient *http.Client
	logger     bot.Logger
}

// NewClient creates a client for the given base URL. ingestPath selects
// the track-ingestion endpoint ("/tracks" or "/track" depending on the
// deployment); empty means "/tracks".
func NewClient(baseURL, ingestPath string, logger bot.Logger) *Client {
	if ingestPath == "" {
		ingestPath = "/tracks"
	}
	if logger == nil {
		logger = bot.NewNopLogger()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		ingestPath: ingestPath,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// TestConnection issues a lightweight read against the service and
// reports whether it responded. Failures are swallowed to false, never
// raised; this is only used at configuration time.
func (c *Client) TestConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/tracks", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("lexicon connectivity probe failed", "url", c.baseURL, "error", err)
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// trackPayload is the wire shape of a track. Pointer fields distinguish
// absent metadata from empty strings.
type trackPayload struct {
	Title  *string `json:"title"`
	Artist *string `json:"artist"`
}

// ingestResponse covers every response shape the Lexicon API is known to
// produce across versions. Extraction priority is fixed: data.tracks[0],
// data.track, tracks[0], track.
type ingestResponse struct {
	Data *struct {
		Tracks []trackPayload `json:"tracks"`
		Track  *trackPayload  `json:"track"`
	} `json:"data"`
	Tracks []trackPayload `json:"tracks"`
	Track  *trackPayload  `json:"track"`
}

// extract returns the highest-priority matching track payload, or nil
// when no shape matches.
func (r *ingestResponse) extract() *trackPayload {
	if r.Data != nil {
		if len(r.Data.Tracks) > 0 {
			return &r.Data.Tracks[0]
		}
		if r.Data.Track != nil {
			return r.Data.Track
		}
	}
	if len(r.Tracks) > 0 {
		return &r.Tracks[0]
	}
	return r.Track
}

func (p *trackPayload) toTrack() bot.Track {
	track := bot.Track{Title: "Unknown", Artist: "Unknown", Succeeded: true}
	if p == nil {
		return track
	}
	if p.Title != nil {
		track.Title = *p.Title
	}
	if p.Artist != nil {
		track.Artist = *p.Artist
	}
	return track
}

// AddTrack submits a local file path for ingestion and normalizes the
// response. The request is batch-shaped but always carries exactly one
// path. A 200 response whose body matches no known shape still counts as
// success: ingestion happened, metadata merely could not be parsed out.
func (c *Client) AddTrack(ctx context.Context, path string) (bot.Track, error) {
	ctx, cancel := context.WithTimeout(ctx, ingestTimeout)
	defer cancel()

	payload, err := json.Marshal(map[string][]string{"locations": {path}})
	if err != nil {
		return bot.Track{}, fmt.Errorf("encoding ingest request: %w", err)
	}

	c.logger.Info("adding track to lexicon", "path", path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.ingestPath, bytes.NewReader(payload))
	if err != nil {
		return bot.Track{}, fmt.Errorf("creating ingest request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return bot.Track{}, fmt.Errorf("adding track to lexicon: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return bot.Track{}, fmt.Errorf("reading ingest response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return bot.Track{}, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var parsed ingestResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return bot.Track{}, fmt.Errorf("decoding ingest response: %w", err)
	}

	track := parsed.extract().toTrack()
	c.logger.Info("track added", "title", track.Title, "artist", track.Artist)
	return track, nil
}

// GetTrack fetches a track by ID.
func (c *Client) GetTrack(ctx context.Context, id int) (bot.Track, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	params := url.Values{"id": {strconv.Itoa(id)}}
	body, err := c.doGet(ctx, "/track", params)
	if err != nil {
		return bot.Track{}, err
	}

	var parsed struct {
		Data struct {
			Track *trackPayload `json:"track"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return bot.Track{}, fmt.Errorf("decoding track response: %w", err)
	}
	if parsed.Data.Track == nil {
		return bot.Track{}, fmt.Errorf("track %d not found in response", id)
	}
	return parsed.Data.Track.toTrack(), nil
}

// SearchTracks searches the library by title.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]bot.Track, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	params := url.Values{
		"filter[title]": {query},
		"limit":         {strconv.Itoa(limit)},
	}
	body, err := c.doGet(ctx, "/search/tracks", params)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Data struct {
			Tracks []trackPayload `json:"tracks"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	tracks := make([]bot.Track, len(parsed.Data.Tracks))
	for i := range parsed.Data.Tracks {
		tracks[i] = parsed.Data.Tracks[i].toTrack()
	}
	return tracks, nil
}

func (c *Client) doGet(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling lexicon API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
