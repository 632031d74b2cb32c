package download

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/avast/retry-go/v4"
	"github.com/canalgrab-cli/canalgrab/filesystem"
	"github.com/canalgrab-cli/canalgrab/log"
	"github.com/canalgrab-cli/canalgrab/util"
	"github.com/spf13/afero"
)

// segmentState is the sidecar bookkeeping of a segmented download, recording
// how much of the partial file is made of fully written segments. A resumed
// run truncates any trailing half-segment and continues from there.
type segmentState struct {
	Segments int   `json:"segments"`
	Bytes    int64 `json:"bytes"`
}

const segmentStateSuffix = ".part.json"

// DownloadHLS concatenates the media segments of an HLS playlist into dest,
// resuming at segment granularity and retrying each segment with the same
// backoff policy as progressive downloads.
func (d *Downloader) DownloadHLS(ctx context.Context, playlistURL, dest string, progress Progress) (int64, error) {
	fs := filesystem.API()
	if err := fs.MkdirAll(filepath.Dir(dest), os.ModePerm); err != nil {
		return 0, err
	}

	if exists, err := fs.Exists(dest); err != nil {
		return 0, err
	} else if exists {
		return 0, ErrExists
	}

	segments, err := d.mediaSegments(ctx, playlistURL)
	if err != nil {
		return 0, err
	}
	if len(segments) == 0 {
		return 0, fmt.Errorf("playlist %s lists no segments", playlistURL)
	}

	part := dest + partSuffix
	state := loadSegmentState(dest)
	if state.Segments > len(segments) || state.Bytes > partSize(fs, part) {
		// Sidecar does not describe this partial; start over.
		state = segmentState{}
	}

	file, err := fs.OpenFile(part, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, err
	}
	defer util.Ignore(file.Close)

	if err := file.Truncate(state.Bytes); err != nil {
		return state.Bytes, err
	}
	if _, err := file.Seek(state.Bytes, io.SeekStart); err != nil {
		return state.Bytes, err
	}

	written := state.Bytes
	for i := state.Segments; i < len(segments); i++ {
		n, err := d.fetchSegment(ctx, segments[i], file, written, progress)
		written += n
		if err != nil {
			if ctx.Err() != nil {
				err = context.Cause(ctx)
			}
			saveSegmentState(dest, segmentState{Segments: i, Bytes: written - n})
			return written, err
		}
		saveSegmentState(dest, segmentState{Segments: i + 1, Bytes: written})
	}

	_ = filesystem.API().Remove(dest + segmentStateSuffix)
	return written, fs.Rename(part, dest)
}

// mediaSegments fetches the media playlist and resolves its segment URIs.
func (d *Downloader) mediaSegments(ctx context.Context, playlistURL string) ([]string, error) {
	body, err := d.fetchText(ctx, playlistURL)
	if err != nil {
		return nil, err
	}

	base, _ := url.Parse(playlistURL)
	var segments []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if base != nil {
			if ref, err := url.Parse(line); err == nil {
				line = base.ResolveReference(ref).String()
			}
		}
		segments = append(segments, line)
	}
	return segments, nil
}

// fetchSegment streams one segment, appending to the open partial file.
func (d *Downloader) fetchSegment(ctx context.Context, segmentURL string, file afero.File, offset int64, progress Progress) (int64, error) {
	var written int64
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, segmentURL, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			if d.cfg.UserAgent != "" {
				req.Header.Set("User-Agent", d.cfg.UserAgent)
			}
			if written > 0 {
				req.Header.Set("Range", fmt.Sprintf("bytes=%d-", written))
			}

			resp, err := d.http.Do(req)
			if err != nil {
				return err
			}
			defer util.Ignore(resp.Body.Close)

			switch {
			case resp.StatusCode == http.StatusPartialContent:
			case resp.StatusCode == http.StatusOK && written == 0:
			case resp.StatusCode >= http.StatusInternalServerError:
				return fmt.Errorf("%s: %s", segmentURL, resp.Status)
			default:
				return retry.Unrecoverable(fmt.Errorf("%s: %s", segmentURL, resp.Status))
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
					written += int64(n)
					if progress != nil {
						progress(offset+written, -1)
					}
				}
				if err != nil {
					if errors.Is(err, io.EOF) {
						return nil
					}
					return err
				}
			}
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
	)
	return written, err
}

func (d *Downloader) fetchText(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	if d.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", d.cfg.UserAgent)
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return "", err
	}
	defer util.Ignore(resp.Body.Close)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: %s", rawURL, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func loadSegmentState(dest string) segmentState {
	var state segmentState
	data, err := filesystem.API().ReadFile(dest + segmentStateSuffix)
	if err != nil {
		return state
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return segmentState{}
	}
	return state
}

func saveSegmentState(dest string, state segmentState) {
	data, err := json.Marshal(state)
	if err != nil {
		return
	}
	if err := filesystem.API().WriteFile(dest+segmentStateSuffix, data, 0o644); err != nil {
		log.Warnf("writing download state for %s: %v", dest, err)
	}
}
