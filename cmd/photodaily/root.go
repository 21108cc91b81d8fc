package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"PhotoDaily/internal/app"
	"PhotoDaily/internal/config"
	"PhotoDaily/internal/domain"
	"PhotoDaily/internal/logging"
	"PhotoDaily/internal/usecase"
)

const (
	FlagConfig   = "config"
	FlagLogLevel = "log-level"

	FlagInput  = "input"
	FlagOutput = "output"
	FlagFont   = "font"
	FlagWatch  = "watch"

	FlagMode    = "mode"
	FlagCaption = "caption"
	FlagDate    = "date"
	FlagDaemon  = "daemon"

	FlagLimit = "limit"

	DefaultMode  = "feed"
	DefaultLimit = 20
)

// runtime carries what PersistentPreRunE resolved for the subcommands.
type runtime struct {
	app *app.Application
}

// RootCmd creates the photodaily command tree.
func RootCmd() *cobra.Command {
	rt := &runtime{}

	r := &cobra.Command{
		Use:           "photodaily",
		Short:         "photodaily watermarks dated photos and publishes the one scheduled for today.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path, err := cmd.Flags().GetString(FlagConfig)
			if err != nil {
				return err
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed(FlagLogLevel) {
				level, _ := cmd.Flags().GetString(FlagLogLevel)
				cfg.Logging.Level = level
			}

			rt.app = app.New(cfg, logging.New(cfg.Logging.Level))
			return nil
		},
	}

	r.PersistentFlags().String(FlagConfig, "", "path to a YAML config file (default: $PHOTODAILY_CONFIG)")
	r.PersistentFlags().String(FlagLogLevel, "info", "log level. debug|info|warn|error")

	r.AddCommand(ProcessCmd(rt), PostCmd(rt), HistoryCmd(rt))

	return r
}

// ProcessCmd watermarks every dated JPEG in the input folder.
func ProcessCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Add the date strip to every YYYY-MM-DD.jpg in the input folder",
		Example: `  photodaily process
  photodaily process --input raw_photos --output ready_to_post --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			opts := app.ProcessOptions{}
			opts.InputDir, _ = flags.GetString(FlagInput)
			opts.OutputDir, _ = flags.GetString(FlagOutput)
			opts.FontPath, _ = flags.GetString(FlagFont)
			opts.Watch, _ = flags.GetBool(FlagWatch)

			report, err := rt.app.Process(cmd.Context(), opts)
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "processed %d, skipped %d, failed %d\n",
				report.Processed, report.Skipped, report.Failed)
			return nil
		},
	}

	cmd.Flags().String(FlagInput, "", "folder with raw photos (default from config)")
	cmd.Flags().String(FlagOutput, "", "folder for watermarked output (default from config)")
	cmd.Flags().String(FlagFont, "", "TrueType/OpenType font file (default from config)")
	cmd.Flags().Bool(FlagWatch, false, "keep watching the input folder for new photos")

	return cmd
}

// PostCmd publishes the hosted image for the post date.
func PostCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Publish the image scheduled for today to feed, story or both",
		Example: `  photodaily post --mode both --caption AUTO
  photodaily post --date 2025-01-01 --caption "Frosty morning"
  photodaily post --daemon`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()

			modeFlag, _ := flags.GetString(FlagMode)
			mode, err := domain.ParseMode(modeFlag)
			if err != nil {
				return err
			}

			req := usecase.PostRequest{Mode: mode}
			req.Caption, _ = flags.GetString(FlagCaption)

			if value, _ := flags.GetString(FlagDate); value != "" {
				req.Date, err = time.Parse(domain.DateLayout, value)
				if err != nil {
					return fmt.Errorf("--%s must be YYYY-MM-DD: %w", FlagDate, err)
				}
			}

			daemon, _ := flags.GetBool(FlagDaemon)
			if daemon && !req.Date.IsZero() {
				return fmt.Errorf("--%s cannot be combined with --%s", FlagDate, FlagDaemon)
			}

			report, err := rt.app.Post(cmd.Context(), req, daemon)
			if report.PostDate != "" {
				fmt.Fprint(cmd.OutOrStdout(), usecase.FormatReport(report))
			}
			return err
		},
	}

	cmd.Flags().String(FlagMode, DefaultMode, "target surface. feed|story|both")
	cmd.Flags().String(FlagCaption, usecase.AutoCaption, "caption text, or AUTO for the generated day caption")
	cmd.Flags().String(FlagDate, "", "post date YYYY-MM-DD (default: today in the configured timezone)")
	cmd.Flags().Bool(FlagDaemon, false, "post now and then once per scheduler interval until interrupted")

	return cmd
}

// HistoryCmd prints recent upload attempts.
func HistoryCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the most recent upload attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt(FlagLimit)

			records, err := rt.app.History(cmd.Context(), limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tSURFACE\tSTATE\tATTEMPTS\tMEDIA\tERROR\tAT")
			for _, rec := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
					rec.PostDate, rec.Surface, rec.State, rec.Attempts, rec.MediaID, rec.Error,
					rec.CreatedAt.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}

	cmd.Flags().Int(FlagLimit, DefaultLimit, "number of records to show")

	return cmd
}

// Execute runs the command tree and maps the outcome to a process exit code.
func Execute(ctx context.Context, rootCmd *cobra.Command) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "photodaily:", err)
		return 1
	}
	return 0
}
