// Package download implements the resumable, retrying file acquisition of a
// selected stream variant.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/canalgrab-cli/canalgrab/filesystem"
	"github.com/canalgrab-cli/canalgrab/log"
	"github.com/canalgrab-cli/canalgrab/util"
	"github.com/spf13/afero"
)

// partSuffix marks an in-flight download next to its final destination.
const partSuffix = ".part"

const copyChunkSize = 32 * 1024

// ErrExists reports a complete prior download already present at the
// destination; it is never overwritten without explicit caller intent.
var ErrExists = errors.New("destination already exists")

// IncompleteError reports a finished transfer whose size does not match the
// server-declared content length. The partial file is kept for a later resume.
type IncompleteError struct {
	Written  int64
	Expected int64
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("incomplete transfer: got %s of %s", util.FormatBytes(e.Written), util.FormatBytes(e.Expected))
}

// Config carries the explicit settings of a Downloader.
type Config struct {
	// UserAgent is sent with every request.
	UserAgent string
	// Attempts is the total transfer budget per file, first try included.
	Attempts uint
	// RetryDelay is the initial backoff delay; it grows exponentially.
	RetryDelay time.Duration
	// RetryMaxJitter bounds the random delay added to each backoff step.
	RetryMaxJitter time.Duration
}

// DefaultConfig returns the retry settings used when the caller does not
// override them.
func DefaultConfig() Config {
	return Config{
		Attempts:       5,
		RetryDelay:     time.Second,
		RetryMaxJitter: 500 * time.Millisecond,
	}
}

// Progress receives the byte offset of a transfer. The offset grows
// monotonically while bytes flow; when a server rejects a resume the
// restart is reported as a single drop back to zero. The total is -1
// while the server has not declared a content length.
type Progress func(written, total int64)

// Downloader performs streamed downloads that survive transient failures:
// the partial file lives at destination+".part" and is extended, never
// rewritten, until the transfer completes and the file is moved into place.
type Downloader struct {
	http *http.Client
	cfg  Config
}

// New creates a downloader on top of the given HTTP client.
func New(httpClient *http.Client, cfg Config) *Downloader {
	if cfg.Attempts == 0 {
		cfg.Attempts = DefaultConfig().Attempts
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = DefaultConfig().RetryDelay
	}
	return &Downloader{http: httpClient, cfg: cfg}
}

// Download streams the content of rawURL into dest, resuming any partial
// file left by an earlier run. On exhausted retries or cancellation the
// partial is left on disk and the bytes written so far are returned.
func (d *Downloader) Download(ctx context.Context, rawURL, dest string, progress Progress) (int64, error) {
	fs := filesystem.API()
	if err := fs.MkdirAll(filepath.Dir(dest), os.ModePerm); err != nil {
		return 0, err
	}

	if exists, err := fs.Exists(dest); err != nil {
		return 0, err
	} else if exists {
		return 0, ErrExists
	}

	part := dest + partSuffix
	written := partSize(fs, part)
	total, etag := d.probe(ctx, rawURL)
	if total >= 0 && written > total {
		// The partial cannot belong to this content; start over.
		written = 0
	}

	err := retry.Do(
		func() error {
			return d.transfer(ctx, rawURL, part, &written, &total, etag, progress)
		},
		retry.Context(ctx),
		retry.Attempts(d.cfg.Attempts),
		retry.Delay(d.cfg.RetryDelay),
		retry.MaxJitter(d.cfg.RetryMaxJitter),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return retry.IsRecoverable(err) && ctx.Err() == nil
		}),
		retry.OnRetry(func(attempt uint, err error) {
			log.Debugf("retrying download of %s at offset %d (attempt %d): %v", rawURL, written, attempt+1, err)
		}),
	)
	if err != nil {
		if ctx.Err() != nil {
			// A cancelled transfer keeps its partial intact for resumption.
			return written, context.Cause(ctx)
		}
		return written, err
	}

	if total >= 0 && written != total {
		return written, &IncompleteError{Written: written, Expected: total}
	}

	return written, fs.Rename(part, dest)
}

// transfer performs one attempt: a ranged request from the current offset,
// appended onto the partial file. A rejected resume truncates the partial
// and reports the restart through the progress callback before bytes flow
// again, so the caller never mistakes the old offset for real progress.
func (d *Downloader) transfer(ctx context.Context, rawURL, part string, written, total *int64, etag string, progress Progress) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return retry.Unrecoverable(err)
	}
	if d.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", d.cfg.UserAgent)
	}
	if *written > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", *written))
		if etag != "" {
			// The server falls back to the full content if the partial
			// no longer matches, which we honor by restarting below.
			req.Header.Set("If-Range", etag)
		}
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return err
	}
	defer util.Ignore(resp.Body.Close)

	fs := filesystem.API()
	file, err := fs.OpenFile(part, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return retry.Unrecoverable(err)
	}
	defer util.Ignore(file.Close)

	switch resp.StatusCode {
	case http.StatusPartialContent:
		if size, ok := contentRangeSize(resp.Header.Get("Content-Range")); ok {
			*total = size
		}
		if _, err := file.Seek(*written, io.SeekStart); err != nil {
			return retry.Unrecoverable(err)
		}
	case http.StatusOK:
		// Full body: either a fresh download or a rejected resume.
		if err := file.Truncate(0); err != nil {
			return retry.Unrecoverable(err)
		}
		*written = 0
		if resp.ContentLength >= 0 {
			*total = resp.ContentLength
		}
		if progress != nil {
			progress(*written, *total)
		}
	case http.StatusRequestedRangeNotSatisfiable:
		if *total >= 0 && *written == *total {
			// The partial already covers the whole content.
			return nil
		}
		*written = 0
		return fmt.Errorf("%s: resume rejected: %s", rawURL, resp.Status)
	default:
		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%s: %s", rawURL, resp.Status)
		}
		return retry.Unrecoverable(fmt.Errorf("%s: %s", rawURL, resp.Status))
	}

	buf := make([]byte, copyChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := file.Write(buf[:n]); werr != nil {
				return retry.Unrecoverable(werr)
			}
			*written += int64(n)
			if progress != nil {
				progress(*written, *total)
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// probe asks the server for the content length and validator ahead of any
// write, so a resumed partial can be checked against them. A server that
// rejects HEAD just leaves both unknown.
func (d *Downloader) probe(ctx context.Context, rawURL string) (total int64, etag string) {
	total = -1

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return total, ""
	}
	if d.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", d.cfg.UserAgent)
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return total, ""
	}
	defer util.Ignore(resp.Body.Close)

	if resp.StatusCode != http.StatusOK {
		return total, ""
	}
	if resp.ContentLength >= 0 {
		total = resp.ContentLength
	}
	return total, resp.Header.Get("ETag")
}

func partSize(fs afero.Afero, part string) int64 {
	stat, err := fs.Stat(part)
	if err != nil {
		return 0
	}
	return stat.Size()
}

// contentRangeSize extracts the complete length from a Content-Range header
// of the shape "bytes first-last/length".
func contentRangeSize(header string) (int64, bool) {
	_, after, found := strings.Cut(header, "/")
	if !found || after == "*" {
		return 0, false
	}
	size, err := strconv.ParseInt(strings.TrimSpace(after), 10, 64)
	if err != nil {
		return 0, false
	}
	return size, true
}
