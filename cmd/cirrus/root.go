package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/aretw0/cirrus/internal/platform"
)

var (
	verbose   bool
	logFile   string
	workspace string

	// cfg merges flags, CIRRUS_* environment variables and cirrus.yaml,
	// in that order of precedence. It is rebuilt for every execution.
	cfg = viper.New()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cirrus",
	Short: "Offline-first notes that sync with a remote store",
	Long: `Cirrus keeps your notes in a local workspace and works fully offline.
When a remote store is configured, edits are pushed as you make them and a
full sync merges both sides, the most recent edit of each note winning.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger(cmd.ErrOrStderr())
		cfg = newConfig(cmd.Root().PersistentFlags())
		return loadConfig()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVar(&logFile, "log-file", "", "Also write logs to this file (rotated)")
	flags.StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: nearest parent with .cirrus)")
	flags.String("remote", "", "Remote store: http(s)://host/notes or memory://")
	flags.String("api-key", "", "API key sent to the remote store")
	flags.Duration("timeout", 0, "Per-request timeout for the remote store (default 10s)")
	flags.Duration("sync-interval", 0, "Automatic sync period (default 30s)")
}

func newConfig(flags *pflag.FlagSet) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlag("remote", flags.Lookup("remote"))
	_ = v.BindPFlag("api_key", flags.Lookup("api-key"))
	_ = v.BindPFlag("timeout", flags.Lookup("timeout"))
	_ = v.BindPFlag("sync_interval", flags.Lookup("sync-interval"))

	v.SetEnvPrefix("CIRRUS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func setupLogger(stderr io.Writer) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	out := stderr
	if logFile != "" {
		out = io.MultiWriter(stderr, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}
	logger := slog.New(slog.NewTextHandler(out, opts))
	slog.SetDefault(logger)
}

// loadConfig reads cirrus.yaml from the workspace, when there is one.
func loadConfig() error {
	root, err := findWorkspace()
	if err != nil {
		return nil
	}
	path := filepath.Join(root, platform.ConfigFile)
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	cfg.SetConfigFile(path)
	if err := cfg.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	slog.Debug("config loaded", "path", path)
	return nil
}

// findWorkspace resolves the workspace root from --workspace or the
// current directory.
func findWorkspace() (string, error) {
	start := workspace
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		start = wd
	}
	root, err := platform.FindRoot(start)
	if errors.Is(err, platform.ErrNoWorkspace) {
		return "", fmt.Errorf("not a cirrus workspace (or any parent): %s (run 'cirrus init')", start)
	}
	return root, err
}
