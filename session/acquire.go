package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/canalgrab-cli/canalgrab/catalog"
	"github.com/canalgrab-cli/canalgrab/download"
	"github.com/canalgrab-cli/canalgrab/player"
	"github.com/canalgrab-cli/canalgrab/progress"
	"github.com/canalgrab-cli/canalgrab/util"
)

// SaveAcquirer downloads the chosen variant under Dir. An existing complete
// file turns into a skip rather than an error.
type SaveAcquirer struct {
	Downloader *download.Downloader
	Dir        string
	// ShowProgress draws a per-file terminal bar when set.
	ShowProgress bool
}

func (a *SaveAcquirer) Acquire(ctx context.Context, video *catalog.Video, variant catalog.Variant) (Outcome, error) {
	dest := filepath.Join(a.Dir, download.Filename(video, variant))

	var report download.Progress
	var bar *progress.Bar
	if a.ShowProgress {
		bar = progress.NewBar(os.Stdout, util.FileStem(dest))
		report = bar.Update
		defer bar.Finish()
	}

	var written int64
	var err error
	if variant.Protocol == catalog.ProtocolHLS {
		written, err = a.Downloader.DownloadHLS(ctx, variant.URL, dest, report)
	} else {
		written, err = a.Downloader.Download(ctx, variant.URL, dest, report)
	}

	outcome := Outcome{Bytes: written, Path: dest}
	if errors.Is(err, download.ErrExists) {
		return outcome, ErrSkipped
	}
	return outcome, err
}

// PlayAcquirer hands the chosen variant's URL to an external media player
// and waits for it to exit.
type PlayAcquirer struct {
	Player *player.Player
}

func (a *PlayAcquirer) Acquire(ctx context.Context, _ *catalog.Video, variant catalog.Variant) (Outcome, error) {
	code, err := a.Player.Play(ctx, variant.URL)
	if err == nil && code != 0 {
		err = fmt.Errorf("player exited with status %d", code)
	}
	return Outcome{ExitCode: code}, err
}
