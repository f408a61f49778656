// Package cli implements the marathon-pipeline command-line interface.
//
// The CLI wraps the pipeline for scheduled runs, offers a local listing
// of the collected schedule with filters, and exports the schedule as a
// calendar file.
package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/marathonkr/marathon-pipeline/internal/calendar"
	"github.com/marathonkr/marathon-pipeline/internal/collector"
	"github.com/marathonkr/marathon-pipeline/internal/config"
	"github.com/marathonkr/marathon-pipeline/internal/event"
	"github.com/marathonkr/marathon-pipeline/internal/filter"
	"github.com/marathonkr/marathon-pipeline/internal/httpx"
	"github.com/marathonkr/marathon-pipeline/internal/logger"
	"github.com/marathonkr/marathon-pipeline/internal/notifier"
	"github.com/marathonkr/marathon-pipeline/internal/pipeline"
	"github.com/marathonkr/marathon-pipeline/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig  string
	flagDataDir string
	flagVerbose bool
)

// NewRootCmd creates the root command with its subcommands.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "marathon-pipeline",
		Short: "Collect, merge, and publish the Korean marathon schedule",
		Long: `marathon-pipeline collects race listings from Korean and international
sources, merges duplicate entries, and publishes JSON and calendar
artifacts for the schedule frontend.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Override the configured data directory")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newExportCmd())

	return cmd
}

// Execute runs the CLI.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagDataDir != "" {
		cfg.Output.DataDir = flagDataDir
	}
	return cfg, nil
}

func setupLogging(cfg *config.Config) error {
	levelName := cfg.Logging.Level
	if flagVerbose {
		levelName = "debug"
	}
	level, err := logger.ParseLevel(levelName)
	if err != nil {
		return err
	}
	logger.SetDefault(logger.New(level, os.Stderr))
	return nil
}

func openStore(cfg *config.Config) (*storage.Store, error) {
	return storage.New(cfg.Output.DataDir, cfg.Output.PrettyPrint)
}

func buildCollectors(cfg *config.Config) []collector.Collector {
	var collectors []collector.Collector
	if cfg.Sources.GoRunning.Enabled {
		collectors = append(collectors,
			collector.NewGoRunningWith(collector.NewChromeRenderer(), cfg.Sources.GoRunning.URL))
	}
	if cfg.Sources.Aims.Enabled {
		fetcher := httpx.NewWithOptions(httpx.Options{
			Timeout:     time.Duration(cfg.Retry.TimeoutSec) * time.Second,
			MaxAttempts: cfg.Retry.MaxAttempts,
			RetryDelay:  time.Duration(cfg.Retry.DelayMs) * time.Millisecond,
		})
		collectors = append(collectors, collector.NewAimsWith(fetcher, cfg.Sources.Aims.URL))
	}
	return collectors
}

func newRunCmd() *cobra.Command {
	var flagNotify bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full collection pipeline once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := setupLogging(cfg); err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return fmt.Errorf("initializing storage: %w", err)
			}

			// Announcements are printed unless posting is asked for.
			opts := []pipeline.Option{pipeline.WithRunHour(cfg.Schedule.HourUTC)}
			if flagNotify {
				n, err := notifier.NewTwitterNotifier()
				if err != nil {
					return fmt.Errorf("initializing notifier: %w", err)
				}
				opts = append(opts, pipeline.WithNotifier(n))
			} else {
				opts = append(opts, pipeline.WithNotifier(notifier.NewDryRunNotifier(cmd.OutOrStdout())))
			}

			p := pipeline.New(buildCollectors(cfg), store, opts...)
			report, err := p.Run(cmd.Context())
			if err != nil {
				return err
			}

			WriteReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagNotify, "notify", false, "Post announcements for new events instead of printing them")

	return cmd
}

func newListCmd() *cobra.Command {
	var (
		flagCountry   string
		flagRegion    string
		flagDistance  string
		flagKeyword   string
		flagFrom      string
		flagTo        string
		flagUpcoming  bool
		flagPopular   bool
		flagFormat    string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List collected events from the local data directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := setupLogging(cfg); err != nil {
				return err
			}

			format := OutputFormat(strings.ToLower(flagFormat))
			if format != FormatText && format != FormatJSON {
				return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
			}

			store, err := openStore(cfg)
			if err != nil {
				return fmt.Errorf("initializing storage: %w", err)
			}
			events, err := store.LoadEvents(storage.FileAll)
			if err != nil {
				return fmt.Errorf("loading events: %w", err)
			}

			f, err := buildFilter(flagCountry, flagRegion, flagDistance, flagKeyword, flagFrom, flagTo, flagUpcoming, flagPopular)
			if err != nil {
				return err
			}

			return WriteEvents(cmd.OutOrStdout(), f.Apply(events), format)
		},
	}

	cmd.Flags().StringVar(&flagCountry, "country", "", "Country code (e.g. KR)")
	cmd.Flags().StringVar(&flagRegion, "region", "", "Region name (e.g. 서울)")
	cmd.Flags().StringVar(&flagDistance, "distance", "", "Distance label (e.g. 풀, 하프, 10km)")
	cmd.Flags().StringVar(&flagKeyword, "keyword", "", "Keyword matched against name, organizer, and tags")
	cmd.Flags().StringVar(&flagFrom, "from", "", "Earliest event date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flagTo, "to", "", "Latest event date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&flagUpcoming, "upcoming", false, "Only events that have not happened yet")
	cmd.Flags().BoolVar(&flagPopular, "popular", false, "Only major races")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")

	return cmd
}

func newExportCmd() *cobra.Command {
	var (
		flagOut     string
		flagCountry string
		flagID      string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export collected events as an iCalendar file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := setupLogging(cfg); err != nil {
				return err
			}

			store, err := openStore(cfg)
			if err != nil {
				return fmt.Errorf("initializing storage: %w", err)
			}
			events, err := store.LoadEvents(storage.FileAll)
			if err != nil {
				return fmt.Errorf("loading events: %w", err)
			}

			if flagCountry != "" {
				f := &filter.Filter{Country: event.CountryCode(strings.ToUpper(flagCountry))}
				events = f.Apply(events)
			}

			var ics string
			count := len(events)
			if flagID != "" {
				e, ok := findEvent(events, flagID)
				if !ok {
					return fmt.Errorf("event not found: %s", flagID)
				}
				ics = calendar.GenerateICS(e)
				count = 1
			} else {
				ics = calendar.GenerateCalendar(events, pipeline.CalendarName)
			}

			if flagOut == "" {
				fmt.Fprint(cmd.OutOrStdout(), ics)
				return nil
			}
			if err := os.WriteFile(flagOut, []byte(ics), 0644); err != nil {
				return fmt.Errorf("writing %s: %w", flagOut, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d events to %s\n", count, flagOut)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagOut, "out", "", "Output file (stdout when omitted)")
	cmd.Flags().StringVar(&flagCountry, "country", "", "Only events from this country code")
	cmd.Flags().StringVar(&flagID, "id", "", "Export a single event by its ID")

	return cmd
}

func findEvent(events []event.Event, id string) (event.Event, bool) {
	for _, e := range events {
		if e.ID == id {
			return e, true
		}
	}
	return event.Event{}, false
}

func buildFilter(country, region, distance, keyword, from, to string, upcoming, popular bool) (*filter.Filter, error) {
	f := filter.New()
	if country != "" {
		f.Country = event.CountryCode(strings.ToUpper(country))
	}
	if region != "" {
		f.Regions = []string{region}
	}
	if distance != "" {
		f.Distances = []string{distance}
	}
	f.Keyword = keyword
	f.UpcomingOnly = upcoming
	f.PopularOnly = popular

	if from != "" {
		t, err := time.Parse(event.ISODate, from)
		if err != nil {
			return nil, fmt.Errorf("invalid --from date: %s", from)
		}
		f.DateFrom = &t
	}
	if to != "" {
		t, err := time.Parse(event.ISODate, to)
		if err != nil {
			return nil, fmt.Errorf("invalid --to date: %s", to)
		}
		f.DateTo = &t
	}
	return f, nil
}
