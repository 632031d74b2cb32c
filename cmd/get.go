// Package cmd implements the command-line interface for canalgrab.
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/canalgrab-cli/canalgrab/catalog"
	"github.com/canalgrab-cli/canalgrab/color"
	"github.com/canalgrab-cli/canalgrab/constant"
	"github.com/canalgrab-cli/canalgrab/download"
	"github.com/canalgrab-cli/canalgrab/key"
	"github.com/canalgrab-cli/canalgrab/log"
	"github.com/canalgrab-cli/canalgrab/network"
	"github.com/canalgrab-cli/canalgrab/player"
	"github.com/canalgrab-cli/canalgrab/query"
	"github.com/canalgrab-cli/canalgrab/resolve"
	"github.com/canalgrab-cli/canalgrab/session"
	"github.com/canalgrab-cli/canalgrab/stream"
	"github.com/canalgrab-cli/canalgrab/style"
	"github.com/canalgrab-cli/canalgrab/util"
	"github.com/canalgrab-cli/canalgrab/where"
	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(getCmd)

	getCmd.Flags().StringP("program", "p", "", "Program name pattern to search for")
	lo.Must0(getCmd.MarkFlagRequired("program"))

	getCmd.Flags().StringP("mode", "m", "", "Selection mode: all, last, auto or pick")
	lo.Must0(getCmd.RegisterFlagCompletionFunc("mode", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"all", "last", "auto", "pick"}, cobra.ShellCompDirectiveNoFileComp
	}))

	getCmd.Flags().StringP("output", "o", "", "Directory to download into, or player:NAME to stream into a player")
	getCmd.Flags().Bool("play", false, "Hand the selected streams to the default media player instead of downloading")
	getCmd.Flags().String("player", "", "Play with the named player program")
	getCmd.Flags().BoolP("json", "j", false, "Emit the run summary as JSON")
	getCmd.Flags().IntP("workers", "w", 0, "Concurrent download limit")

	getCmd.MarkFlagsMutuallyExclusive("output", "play")
	getCmd.MarkFlagsMutuallyExclusive("output", "player")
	getCmd.MarkFlagsMutuallyExclusive("play", "player")
}

// getCmd resolves a program query against the remote catalog and downloads
// or plays every matching video.
var getCmd = &cobra.Command{
	Use:   "get [video pattern]",
	Short: "Fetch or play catalog videos matching a program pattern",
	Long: `Fetch or play every catalog video designated by a program pattern.

Patterns are anchored at the name start; a leading ? switches to
case-insensitive substring search, * matches any run of characters
and a bare ? inside the pattern matches a single character.`,
	Example: `  canalgrab get -p 'Les Guignols' -m last
  canalgrab get -p '?guignols' 'Best of*' -m all
  canalgrab get -p groland --play`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		q, err := queryFromFlags(cmd, args)
		handleErr(err)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		results, err := runQuery(ctx, q, acquisitionFromFlags(cmd))
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(summarize(results)))
		} else {
			printSummary(results)
		}

		if lo.ContainsBy(results, session.Result.Failed) {
			os.Exit(1)
		}
	},
}

// acquisition carries the save-or-play directive decoded from the CLI flags.
type acquisition struct {
	play       bool
	playerName string
	outputDir  string
	workers    int
}

func queryFromFlags(cmd *cobra.Command, args []string) (resolve.Query, error) {
	q := resolve.Query{
		Program: lo.Must(cmd.Flags().GetString("program")),
		Video:   mo.None[string](),
	}

	if len(args) > 0 {
		q.Video = mo.Some(args[0])
	}

	modeName := lo.Must(cmd.Flags().GetString("mode"))
	if modeName == "" {
		modeName = viper.GetString(key.CliMode)
	}

	mode, err := resolve.ParseMode(modeName)
	if err != nil {
		return q, err
	}
	q.Mode = mode

	return q, nil
}

func acquisitionFromFlags(cmd *cobra.Command) acquisition {
	return newAcquisition(
		lo.Must(cmd.Flags().GetBool("play")),
		lo.Must(cmd.Flags().GetString("player")),
		lo.Must(cmd.Flags().GetString("output")),
		lo.Must(cmd.Flags().GetInt("workers")),
	)
}

// newAcquisition resolves the save-or-play directive from flag values,
// falling back on the configured defaults.
func newAcquisition(play bool, playerName, outputDir string, workers int) acquisition {
	a := acquisition{
		play:       play,
		playerName: playerName,
		outputDir:  outputDir,
		workers:    workers,
	}

	// -o player:vlc is a shorthand for --player vlc
	if name, ok := strings.CutPrefix(a.outputDir, "player:"); ok {
		a.play = true
		a.playerName = name
		a.outputDir = ""
	}

	if a.playerName != "" {
		a.play = true
	}
	if a.playerName == "" {
		a.playerName = viper.GetString(key.Player)
	}
	if a.outputDir == "" {
		a.outputDir = viper.GetString(key.DownloadsDir)
	}
	if a.outputDir == "" {
		a.outputDir = where.Downloads()
	}
	if a.workers <= 0 {
		a.workers = viper.GetInt(key.DownloadsWorkers)
	}

	return a
}

// showProgress reports whether per-file bars may draw. Concurrent transfers
// would interleave carriage returns on the same terminal line, so bars stay
// off unless the run is serial.
func (a acquisition) showProgress() bool {
	return viper.GetBool(key.CliProgress) && a.workers == 1
}

// runQuery drives the whole pipeline: resolve the query, then select and
// acquire a stream for every resolved video. Resolution failures abort the
// run; per-video failures are folded into the results.
func runQuery(ctx context.Context, q resolve.Query, a acquisition) ([]session.Result, error) {
	client := catalogClient()

	var picker resolve.Picker
	if q.Mode == resolve.ModePick {
		picker = surveyPicker{}
	}

	videos, err := resolve.New(client, picker).Resolve(ctx, q)
	if err != nil {
		var noMatch *resolve.NoMatchError
		if errors.As(err, &noMatch) {
			return nil, withHint(ctx, client, noMatch)
		}
		return nil, err
	}

	if err := query.Remember(q.Program, 1); err != nil {
		log.Warnf("could not record query history: %s", err)
	}

	orchestrator := &session.Orchestrator{
		Source:   client,
		Selector: stream.NewSelector(viper.GetStringSlice(key.StreamsCodecPreference)),
		Acquirer: acquirer(a),
		Workers:  a.workers,
	}

	if a.play {
		// players fight over the terminal, so playback is serial
		orchestrator.Workers = 1
	}

	return orchestrator.Run(ctx, videos), nil
}

func catalogClient() *catalog.Client {
	cfg := catalog.DefaultConfig()
	cfg.BaseURL = viper.GetString(key.CatalogAPIBase)
	cfg.UserAgent = constant.UserAgent
	cfg.Attempts = uint(util.Max(viper.GetInt(key.CatalogRetries), 1))
	return catalog.New(network.Client, cfg)
}

func acquirer(a acquisition) session.Acquirer {
	if a.play {
		checkPlayer(a.playerName)
		return &session.PlayAcquirer{Player: player.New(a.playerName)}
	}

	cfg := download.DefaultConfig()
	cfg.UserAgent = constant.UserAgent
	cfg.Attempts = uint(util.Max(viper.GetInt(key.DownloadsRetries), 1))

	return &session.SaveAcquirer{
		Downloader:   download.New(network.DownloadClient, cfg),
		Dir:          a.outputDir,
		ShowProgress: a.showProgress(),
	}
}

// withHint decorates a no-match error with the closest known program name,
// falling back on the remembered query history.
func withHint(ctx context.Context, client *catalog.Client, noMatch *resolve.NoMatchError) error {
	pattern := strings.TrimPrefix(noMatch.Pattern, "?")

	if names, err := programNames(ctx, client); err == nil {
		if closest, ok := query.Closest(pattern, names).Get(); ok {
			return fmt.Errorf("%w, did you mean %s?", noMatch, style.Fg(color.Yellow)(closest))
		}
	}

	if remembered, ok := query.Suggest(pattern).Get(); ok {
		return fmt.Errorf("%w, you searched %s before", noMatch, style.Fg(color.Yellow)(remembered))
	}

	return noMatch
}

func programNames(ctx context.Context, client *catalog.Client) ([]string, error) {
	categories, err := client.Categories(ctx)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, category := range categories {
		for program, err := range client.Programs(ctx, category) {
			if err != nil {
				continue
			}
			names = append(names, program.Name)
		}
	}

	return names, nil
}

// resultSummary is the JSON shape of a finished acquisition, one entry per
// requested video, in request order.
type resultSummary struct {
	ID       string `json:"id"`
	Program  string `json:"program,omitempty"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
	Bytes    int64  `json:"bytes,omitempty"`
	Path     string `json:"path,omitempty"`
	ExitCode int    `json:"exit_code,omitempty"`
}

func summarize(results []session.Result) []resultSummary {
	return lo.Map(results, func(r session.Result, _ int) resultSummary {
		s := resultSummary{
			ID:       r.ID.String(),
			Title:    r.Video.Title,
			Status:   r.Status.String(),
			Bytes:    r.Bytes,
			Path:     r.Path,
			ExitCode: r.ExitCode,
		}
		if r.Video.Program != nil {
			s.Program = r.Video.Program.Name
		}
		if r.Err != nil {
			s.Error = r.Err.Error()
		}
		return s
	})
}

func init() {
	getCmd.AddCommand(getSchemaCmd)
	getSchemaCmd.SetOut(os.Stdout)
}

// getSchemaCmd emits the JSON schema of the run summary, for consumers
// scripting against the --json output.
var getSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the machine-readable run summary",
	Run: func(cmd *cobra.Command, args []string) {
		schema := jsonschema.Reflect(&resultSummary{})
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		handleErr(encoder.Encode(schema))
	},
}
