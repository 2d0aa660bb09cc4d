package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/jellexet/valuebuf/internal/config"
	"github.com/jellexet/valuebuf/pkg/editor"
	"github.com/jellexet/valuebuf/pkg/pool"
)

var (
	version    = "dev"
	cfg        *config.Config
	logger     *zap.Logger
	configFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "vedit [file]",
		Short:   "vedit - a small terminal text editor",
		Version: version,
		Args:    cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.LoadConfig(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			// Override config with global flags
			if viper.IsSet("debug") {
				cfg.Debug = viper.GetBool("debug")
			}
			if viper.IsSet("log-level") {
				cfg.LogLevel = viper.GetString("log-level")
			}
			if viper.IsSet("log-file") {
				cfg.LogFile = viper.GetString("log-file")
			}
			if viper.IsSet("pool") {
				cfg.Buffer.Pool = viper.GetString("pool")
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			logger, err = cfg.NewLogger()
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}

			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := ""
			if len(args) == 1 {
				filename = args[0]
			}
			return runEditor(filename)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (YAML)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "enable debug logging")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error; default info, or debug with --debug)")
	rootCmd.PersistentFlags().String("log-file", "", "log file path (logging is off without one)")
	rootCmd.PersistentFlags().String("pool", config.PoolShared, "document storage pool (shared, heap)")

	// Bind global flags to viper
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log-file", rootCmd.PersistentFlags().Lookup("log-file"))
	viper.BindPFlag("pool", rootCmd.PersistentFlags().Lookup("pool"))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runEditor puts the terminal in raw mode and runs the editor until Ctrl-Q.
func runEditor(filename string) (err error) {
	fd := int(os.Stdin.Fd())

	provider, counting := cfg.NewProvider(logger)
	editor.Configure(logger, provider, cfg.Buffer.InitialCapacity)

	if err := openDocument(fd, filename); err != nil {
		return multierr.Append(err, checkLeaks(counting))
	}

	// Enable raw mode for terminal
	oldState, err := editor.EnableRawMode(fd)
	if err != nil {
		editor.CloseSession()
		return err
	}
	logger.Info("Editor started",
		zap.String("file_path", filename),
		zap.String("pool", cfg.Buffer.Pool),
		zap.Bool("track", cfg.Buffer.Track))

	// Ensure cleanup on exit
	defer func() {
		editor.ClearScreen(editor.Screen)
		editor.MoveCursorTopLeft()
		editor.CloseSession()
		err = multierr.Combine(err,
			editor.DisableRawMode(fd, oldState),
			checkLeaks(counting))
	}()

	// A single reader so buffered bytes of escape sequences are not lost
	reader := bufio.NewReader(os.Stdin)
	onKeypress := func() (key byte) {
		key, _ = reader.ReadByte()
		return key
	}

	// Start the main editor loop
	editor.ProcessKeypress(fd, onKeypress)
	return nil
}

// openDocument starts the editor session for filename, or an unnamed one.
// On failure the session storage has already been released.
func openDocument(fd int, filename string) error {
	if filename == "" {
		editor.InitSession(fd, "", "")
		return nil
	}
	if err := editor.LoadFile(fd, filename); err != nil {
		editor.CloseSession()
		return err
	}
	return nil
}

// checkLeaks reports regions that were rented but never returned.
func checkLeaks(counting *pool.Counting) error {
	if counting == nil {
		return nil
	}
	stats := counting.Stats()
	logger.Info("Storage stats",
		zap.Int64("rents", stats.Rents),
		zap.Int64("returns", stats.Returns),
		zap.Int64("invalid_returns", stats.Invalid),
		zap.Int("outstanding", stats.Outstanding))
	if stats.Outstanding != 0 || stats.Invalid != 0 {
		return fmt.Errorf("storage leak: %d regions outstanding, %d invalid returns", stats.Outstanding, stats.Invalid)
	}
	return nil
}
