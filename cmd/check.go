// Package cmd implements the command-line interface for canalgrab.
package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/canalgrab-cli/canalgrab/color"
	"github.com/canalgrab-cli/canalgrab/icon"
	"github.com/canalgrab-cli/canalgrab/style"
	"github.com/charmbracelet/lipgloss"
)

// checkPlayer verifies that the configured media player can be found in the
// system PATH before any playback is attempted.
func checkPlayer(name string) {
	_, err := exec.LookPath(name)
	if err != nil {
		printMissingDependencyError(name)
		os.Exit(1)
	}
}

func printMissingDependencyError(dep string) {
	var installCmd string
	switch runtime.GOOS {
	case "darwin":
		installCmd = "brew install " + dep
	case "linux":
		installCmd = "sudo apt install " + dep
	case "windows":
		installCmd = "scoop install " + dep
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.ErrorTitle(fmt.Sprintf("%s Missing dependency", icon.Get(icon.Fail)))
	body := fmt.Sprintf("The required dependency '%s' was not found in your PATH.", dep)

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(color.Orange).Bold(true).Render(installCmd))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}
