// Package player hands a stream URL to an external media player process and
// reports its exit status.
package player

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"strings"

	"github.com/canalgrab-cli/canalgrab/log"
)

// Player launches an external media player executable for playback.
type Player struct {
	// Name is the player executable, e.g. "mpv" or "vlc".
	Name string
}

// New creates a player wrapper around the named executable.
func New(name string) *Player {
	return &Player{Name: name}
}

// Play starts the player on the given URL and blocks until it exits,
// returning the process exit code. The player's stdio is detached; a
// cancelled context kills the player process.
func (p *Player) Play(ctx context.Context, rawURL string) (int, error) {
	safeURL, err := sanitizeMediaTarget(rawURL)
	if err != nil {
		return -1, fmt.Errorf("invalid media target: %w", err)
	}

	log.Infof("playing %s with %s", safeURL, p.Name)

	cmd := exec.CommandContext(ctx, p.Name, safeURL)
	cmd.SysProcAttr = sysProcAttr()
	cmd.Cancel = func() error { return killProcess(cmd) }
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	err = cmd.Run()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0, nil
	case errors.As(err, &exitErr):
		if ctx.Err() != nil {
			return exitErr.ExitCode(), context.Cause(ctx)
		}
		return exitErr.ExitCode(), nil
	default:
		return -1, fmt.Errorf("start %s: %w", p.Name, err)
	}
}

// sanitizeMediaTarget validates that a URL is safe to pass to a player,
// preventing flag injection through catalog-supplied strings.
func sanitizeMediaTarget(link string) (string, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", errors.New("empty url")
	}
	if strings.HasPrefix(link, "-") {
		return "", fmt.Errorf("%q looks like a flag", link)
	}

	u, err := url.Parse(link)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http", "https":
		return link, nil
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
}
