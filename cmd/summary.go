// Package cmd implements the command-line interface for canalgrab.
package cmd

import (
	"fmt"

	"github.com/canalgrab-cli/canalgrab/color"
	"github.com/canalgrab-cli/canalgrab/icon"
	"github.com/canalgrab-cli/canalgrab/session"
	"github.com/canalgrab-cli/canalgrab/style"
	"github.com/canalgrab-cli/canalgrab/util"
	"github.com/samber/lo"
)

// printSummary renders the per-video outcome table, one line per requested
// video, in request order.
func printSummary(results []session.Result) {
	if len(results) == 0 {
		return
	}

	fmt.Println()
	for _, result := range results {
		fmt.Printf("%s %s %s\n", statusIcon(result), result.Video.Title, detail(result))
	}

	failed := lo.CountBy(results, session.Result.Failed)
	if failed > 0 {
		fmt.Printf(
			"\n%s out of %s failed\n",
			style.Fg(color.Red)(util.Quantify(failed, "video", "videos")),
			util.Quantify(len(results), "video", "videos"),
		)
	}
}

func statusIcon(result session.Result) string {
	switch result.Status {
	case session.StatusSuccess:
		return style.Fg(color.Green)(icon.Get(icon.Success))
	case session.StatusSkipped:
		return style.Fg(color.Yellow)(icon.Get(icon.Skip))
	default:
		return style.Fg(color.Red)(icon.Get(icon.Fail))
	}
}

func detail(result session.Result) string {
	switch result.Status {
	case session.StatusSuccess:
		if result.Path != "" {
			return style.Faint(fmt.Sprintf("%s %s %s", icon.Get(icon.Download), util.FormatBytes(result.Bytes), result.Path))
		}
		return style.Faint(icon.Get(icon.Play) + " played")
	case session.StatusSkipped:
		return style.Faint("already downloaded")
	case session.StatusCancelled:
		return style.Faint("cancelled, partial file kept")
	default:
		if result.Err != nil {
			return style.Fg(color.Red)(result.Err.Error())
		}
		return style.Fg(color.Red)("failed")
	}
}
