package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/canalgrab-cli/canalgrab/log"
	"github.com/canalgrab-cli/canalgrab/util"
)

// Config carries the explicit settings of a Client. All retry behavior is
// fixed at construction; the client keeps no other state between calls.
type Config struct {
	// BaseURL is the root of the catalog REST API.
	BaseURL string
	// UserAgent is sent with every request.
	UserAgent string
	// Attempts is the total request budget per endpoint, first try included.
	Attempts uint
	// RetryDelay is the initial backoff delay; it grows exponentially.
	RetryDelay time.Duration
	// RetryMaxJitter is the upper bound of the random delay added to each
	// backoff step so that concurrent retries do not synchronize.
	RetryMaxJitter time.Duration
}

// DefaultConfig returns the retry settings used when the caller does not
// override them.
func DefaultConfig() Config {
	return Config{
		Attempts:       4,
		RetryDelay:     500 * time.Millisecond,
		RetryMaxJitter: 250 * time.Millisecond,
	}
}

// Client issues paginated metadata requests against the remote catalog and
// deserializes raw entries into typed nodes. It retains no state beyond the
// current call; re-iterating a listing re-issues the requests.
type Client struct {
	http *http.Client
	cfg  Config
}

// New creates a catalog client on top of the given HTTP client.
func New(httpClient *http.Client, cfg Config) *Client {
	if cfg.Attempts == 0 {
		cfg.Attempts = DefaultConfig().Attempts
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = DefaultConfig().RetryDelay
	}
	return &Client{http: httpClient, cfg: cfg}
}

// Wire payloads. The envelope shape is shared by every listing endpoint:
// an items array plus an opaque continuation token, empty on the last page.
type pageEnvelope struct {
	Items    []json.RawMessage `json:"items"`
	NextPage string            `json:"nextPage"`
}

type categoryPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type programPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type videoPayload struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Subtitle        string `json:"subtitle"`
	Published       string `json:"published"`
	DurationSeconds int64  `json:"durationSeconds"`
	Description     string `json:"description"`
}

type streamsEnvelope struct {
	Streams []streamPayload `json:"streams"`
}

type streamPayload struct {
	Codec    string `json:"codec"`
	Bitrate  int64  `json:"bitrate"`
	Label    string `json:"label"`
	Protocol string `json:"protocol"`
	URL      string `json:"url"`
	DRM      bool   `json:"drm"`
}

// Categories lists the root of the content tree.
func (c *Client) Categories(ctx context.Context) ([]*Category, error) {
	var categories []*Category
	for category, err := range listing(c, ctx, c.url("categories"), "", decodeCategory) {
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, nil
}

// Programs lazily lists the programs of a category in server order.
// The sequence is finite and not restartable: ranging over it again
// re-issues the underlying requests.
func (c *Client) Programs(ctx context.Context, category *Category) iter.Seq2[*Program, error] {
	endpoint := c.url("categories", category.ID, "programs")
	return listing(c, ctx, endpoint, category.ID, func(raw json.RawMessage) (*Program, error) {
		var payload programPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, err
		}
		return &Program{ID: payload.ID, Name: payload.Name, Category: category}, nil
	})
}

// Videos lazily lists the videos of a program, preserving the server's
// publication order.
func (c *Client) Videos(ctx context.Context, program *Program) iter.Seq2[*Video, error] {
	endpoint := c.url("programs", program.ID, "videos")
	return listing(c, ctx, endpoint, program.ID, func(raw json.RawMessage) (*Video, error) {
		var payload videoPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, err
		}

		var published time.Time
		if payload.Published != "" {
			var err error
			published, err = time.Parse(time.RFC3339, payload.Published)
			if err != nil {
				return nil, fmt.Errorf("publication timestamp: %w", err)
			}
		}

		title := payload.Title
		if payload.Subtitle != "" {
			title = fmt.Sprintf("%s (%s)", title, payload.Subtitle)
		}

		return &Video{
			ID:          payload.ID,
			Title:       title,
			PublishedAt: published,
			Duration:    time.Duration(payload.DurationSeconds) * time.Second,
			Description: payload.Description,
			Program:     program,
		}, nil
	})
}

// Variants fetches the stream renditions of a video. HLS entries pointing at
// a master playlist are expanded into one variant per advertised bandwidth so
// that selection can rank them directly.
func (c *Client) Variants(ctx context.Context, video *Video) ([]Variant, error) {
	var envelope streamsEnvelope
	if err := c.getJSON(ctx, c.url("videos", video.ID, "streams"), video.ID, &envelope); err != nil {
		return nil, err
	}

	var variants []Variant
	for _, stream := range envelope.Streams {
		variant := Variant{
			Codec:    stream.Codec,
			Bitrate:  stream.Bitrate,
			Label:    stream.Label,
			Protocol: Protocol(stream.Protocol),
			URL:      stream.URL,
			DRM:      stream.DRM,
		}

		if variant.Protocol == ProtocolHLS && variant.Bitrate == 0 {
			expanded, err := c.expandMaster(ctx, video.ID, variant)
			if err != nil {
				log.Warnf("expanding hls playlist for %s: %v", video.ID, err)
				variants = append(variants, variant)
				continue
			}
			variants = append(variants, expanded...)
			continue
		}

		variants = append(variants, variant)
	}

	return variants, nil
}

// expandMaster resolves an HLS master playlist into per-bandwidth variants.
// A media playlist (no stream entries) yields the original variant unchanged.
func (c *Client) expandMaster(ctx context.Context, videoID string, master Variant) ([]Variant, error) {
	body, err := c.get(ctx, master.URL, videoID)
	if err != nil {
		return nil, err
	}

	entries, err := parseMasterPlaylist(string(body))
	if err != nil {
		return nil, &MalformedError{ID: videoID, Err: err}
	}
	if len(entries) == 0 {
		return []Variant{master}, nil
	}

	variants := make([]Variant, 0, len(entries))
	for _, entry := range entries {
		codec := master.Codec
		if entry.Codecs != "" {
			codec = entry.Codecs
		}
		variants = append(variants, Variant{
			Codec:    codec,
			Bitrate:  entry.Bandwidth,
			Label:    master.Label,
			Protocol: ProtocolHLS,
			URL:      resolveReference(master.URL, entry.URI),
			DRM:      master.DRM,
		})
	}
	return variants, nil
}

// listing walks a paginated endpoint, following continuation tokens until the
// server signals the end of the list, and yields decoded entries in server
// order. A malformed entry is yielded as an error without ending the walk;
// a failed page fetch ends it.
func listing[T any](c *Client, ctx context.Context, endpoint, owner string, decode func(json.RawMessage) (T, error)) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		cursor := ""
		for {
			pageURL := endpoint
			if cursor != "" {
				pageURL += "?page=" + url.QueryEscape(cursor)
			}

			var envelope pageEnvelope
			if err := c.getJSON(ctx, pageURL, owner, &envelope); err != nil {
				yield(zero, err)
				return
			}

			for _, raw := range envelope.Items {
				item, err := decode(raw)
				if err != nil {
					if !yield(zero, &MalformedError{ID: owner, Err: err}) {
						return
					}
					continue
				}
				if !yield(item, nil) {
					return
				}
			}

			if envelope.NextPage == "" {
				return
			}
			cursor = envelope.NextPage
		}
	}
}

func decodeCategory(raw json.RawMessage) (*Category, error) {
	var payload categoryPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return &Category{ID: payload.ID, Name: payload.Name}, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL, owner string, out any) error {
	body, err := c.get(ctx, rawURL, owner)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &MalformedError{ID: owner, Err: err}
	}
	return nil
}

// get issues a GET with bounded, jittered exponential backoff. Transient
// failures (transport errors, 5xx) consume the retry budget; any other
// non-200 status fails immediately.
func (c *Client) get(ctx context.Context, rawURL, owner string) ([]byte, error) {
	var body []byte
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			if c.cfg.UserAgent != "" {
				req.Header.Set("User-Agent", c.cfg.UserAgent)
			}

			resp, err := c.http.Do(req)
			if err != nil {
				return err
			}
			defer util.Ignore(resp.Body.Close)

			switch {
			case resp.StatusCode >= http.StatusInternalServerError:
				return fmt.Errorf("%s: %s", rawURL, resp.Status)
			case resp.StatusCode != http.StatusOK:
				return retry.Unrecoverable(&UnavailableError{ID: owner, Status: resp.StatusCode})
			}

			body, err = io.ReadAll(resp.Body)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(c.cfg.Attempts),
		retry.Delay(c.cfg.RetryDelay),
		retry.MaxJitter(c.cfg.RetryMaxJitter),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			log.Debugf("retrying catalog request %s (attempt %d): %v", rawURL, attempt+1, err)
		}),
	)
	if err == nil {
		return body, nil
	}

	var unavailable *UnavailableError
	if errors.As(err, &unavailable) {
		return nil, err
	}
	return nil, &UnavailableError{ID: owner, Err: err}
}

func (c *Client) url(parts ...string) string {
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		segments = append(segments, url.PathEscape(part))
	}
	return strings.TrimSuffix(c.cfg.BaseURL, "/") + "/" + strings.Join(segments, "/")
}

// resolveReference resolves a possibly relative playlist URI against its
// master playlist URL.
func resolveReference(base, ref string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}
