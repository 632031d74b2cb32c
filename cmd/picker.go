// Package cmd implements the command-line interface for canalgrab.
package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/canalgrab-cli/canalgrab/catalog"
	"github.com/canalgrab-cli/canalgrab/query"
	"github.com/canalgrab-cli/canalgrab/style"
	"github.com/canalgrab-cli/canalgrab/util"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// surveyPicker narrows ambiguous resolution results through interactive
// terminal prompts. Interrupting a prompt aborts the whole run.
type surveyPicker struct{}

func (surveyPicker) PickProgram(programs []*catalog.Program) (mo.Option[*catalog.Program], error) {
	index, err := pick("Which program?", lo.Map(programs, func(p *catalog.Program, _ int) string {
		if p.Category != nil {
			return fmt.Sprintf("%s (%s)", p.Name, p.Category.Name)
		}
		return p.Name
	}))
	if err != nil || index < 0 {
		return mo.None[*catalog.Program](), err
	}
	return mo.Some(programs[index]), nil
}

func (surveyPicker) PickVideo(videos []*catalog.Video) (mo.Option[*catalog.Video], error) {
	index, err := pick("Which video?", lo.Map(videos, func(v *catalog.Video, _ int) string {
		label := v.Title
		if !v.PublishedAt.IsZero() {
			label = fmt.Sprintf("%s (%s)", label, v.PublishedAt.Format("2006-01-02"))
		}
		return label
	}))
	if err != nil || index < 0 {
		return mo.None[*catalog.Video](), err
	}
	return mo.Some(videos[index]), nil
}

// promptPattern asks for a program pattern, completing from the remembered
// query history. An empty answer browses the whole catalog.
func promptPattern() (string, error) {
	prompt := survey.Input{
		Message: "Program pattern",
		Help:    "Leave empty to browse everything, press tab for remembered queries",
		Suggest: query.SuggestMany,
	}

	var pattern string
	if err := survey.AskOne(&prompt, &pattern); err != nil {
		return "", err
	}

	if strings.TrimSpace(pattern) == "" {
		return "?", nil
	}
	return pattern, nil
}

// pick prompts for a single choice and returns its index, or -1 when the
// user interrupts the prompt.
func pick(message string, options []string) (int, error) {
	width, _, err := util.TerminalSize()
	if err != nil || width <= 0 {
		width = 80
	}
	trim := style.Truncate(width - 4)

	prompt := survey.Select{
		Message: message,
		Options: lo.Map(options, func(o string, _ int) string {
			return trim(o)
		}),
		PageSize: 15,
	}

	var index int
	err = survey.AskOne(&prompt, &index)
	if errors.Is(err, terminal.InterruptErr) {
		return -1, nil
	}
	if err != nil {
		return -1, err
	}

	return index, nil
}
