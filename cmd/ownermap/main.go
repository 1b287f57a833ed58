package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mitchelldurbincs/ownermap/internal/config"
	"github.com/mitchelldurbincs/ownermap/internal/monitoring"
	"github.com/mitchelldurbincs/ownermap/internal/pipeline"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ownermap <mod-root>",
	Short: "Recolor a province map by the country that owns each province",
	Long: `ownermap reads the province bitmap, province definitions, state history
files and country colors of a mod and writes a copy of the map where every
province is painted in its owner's color.

Player countries keep their own color, puppets take their overlord's color,
every other owner is drawn dark gray and land outside any state is navy.`,
	Args:              cobra.ExactArgs(1),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
	RunE:              runRender,
}

var watchCmd = &cobra.Command{
	Use:   "watch <mod-root>",
	Short: "Re-render the map whenever an input or the config file changes",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	// No config needed
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ownermap %s\n", version)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default: ./ownermap.yaml or ./config/ownermap.yaml)")
	flags.String("env", "", "Merge ownermap.<env>.yaml over the config file")
	flags.StringP("output", "o", "", "Output image path (default: map.png)")
	flags.String("format", "", "Output format: png, bmp")
	flags.String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file and applies flag overrides
func loadConfig(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	env, _ := cmd.Flags().GetString("env")

	if err := config.Init(path); err != nil {
		return err
	}
	if err := config.LoadEnvironmentConfig(env); err != nil {
		return err
	}

	overrides := map[string]string{
		"output":    "output.path",
		"format":    "output.format",
		"log-level": "logging.level",
	}
	for flag, key := range overrides {
		if val, _ := cmd.Flags().GetString(flag); val != "" {
			config.Set(key, val)
		}
	}
	if err := config.Validate(config.Get()); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	cfg := config.Get()
	setupLogging(cfg.Logging.Level, cfg.Logging.Format)
	if p := config.ConfigFilePath(); p != "" {
		log.Debug().Str("config", p).Msg("Loaded config file")
	}
	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	runner := pipeline.NewRunner(config.Get(), log.Logger)
	_, err := runner.Run(cmd.Context(), args[0])
	return err
}

func runWatch(cmd *cobra.Command, args []string) error {
	runner := pipeline.NewRunner(config.Get(), log.Logger)
	w, err := pipeline.NewWatcher(runner, args[0], log.Logger)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	monitor := monitoring.NewRunMonitor()
	detach := w.Attach(monitor)
	defer func() {
		detach()
		monitor.Log(log.Logger)
	}()

	if config.ConfigFilePath() != "" {
		config.WatchConfig(func(err error) {
			if err != nil {
				log.Error().Err(err).Msg("Ignoring invalid config change")
				return
			}
			log.Info().Str("config", config.ConfigFilePath()).Msg("Config changed, scheduling run")
			runner.SetConfig(config.Get())
			w.Trigger()
		})
	}

	return w.Run(cmd.Context())
}

func setupLogging(level, format string) {
	// Parse log level
	var logLevel zerolog.Level
	switch level {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	if format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}
}
