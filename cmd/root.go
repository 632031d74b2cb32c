// Package cmd implements the command-line interface for canalgrab.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/canalgrab-cli/canalgrab/color"
	"github.com/canalgrab-cli/canalgrab/constant"
	"github.com/canalgrab-cli/canalgrab/icon"
	"github.com/canalgrab-cli/canalgrab/key"
	"github.com/canalgrab-cli/canalgrab/log"
	"github.com/canalgrab-cli/canalgrab/resolve"
	"github.com/canalgrab-cli/canalgrab/session"
	"github.com/canalgrab-cli/canalgrab/style"
	"github.com/canalgrab-cli/canalgrab/util"
	"github.com/canalgrab-cli/canalgrab/version"
	"github.com/canalgrab-cli/canalgrab/where"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")
	rootCmd.Flags().StringP("output", "o", "", "Directory to download into, or player:NAME to stream into a player")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, plain)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().String("api-url", "", "Override the catalog API root URL")
	lo.Must0(viper.BindPFlag(key.CatalogAPIBase, rootCmd.PersistentFlags().Lookup("api-url")))

	rootCmd.PersistentFlags().Bool("verbose", false, "Write debug-level logs for this run")
	cobra.OnInitialize(func() {
		if lo.Must(rootCmd.PersistentFlags().GetBool("verbose")) {
			viper.Set(key.LogsWrite, true)
			viper.Set(key.LogsLevel, "debug")
			handleErr(log.Setup())
		}
	})

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})

	// Initialize cleanup of localized temporary files on application startup.
	go func() {
		_ = util.Delete(where.Temp())
	}()
}

// rootCmd defines the entry point for the canalgrab application. Run bare,
// it opens an interactive catalog browse session.
var rootCmd = &cobra.Command{
	Use:   constant.Canalgrab,
	Short: "A command-line interface for browsing and grabbing broadcaster VOD content",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - A command-line interface for browsing and grabbing broadcaster VOD content"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		pattern, err := promptPattern()
		if errors.Is(err, terminal.InterruptErr) {
			return
		}
		handleErr(err)

		browse := resolve.Query{
			Program: pattern,
			Video:   mo.None[string](),
			Mode:    resolve.ModePick,
		}

		results, err := runQuery(ctx, browse, newAcquisition(
			false, "", lo.Must(cmd.Flags().GetString("output")), 0,
		))
		handleErr(err)
		printSummary(results)

		if lo.ContainsBy(results, session.Result.Failed) {
			os.Exit(1)
		}
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
