// Recipe Book: browse recipes by tag and scale their ingredients.
//
// Usage:
//
//	recipebook [view] [--source dir|url] [--verbose] [--quiet]
//	recipebook serve [--addr :8080]
//	recipebook index [--dir .]
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/recipebook/internal/config"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

var (
	// Global flags
	configPath string
	verbose    bool
	quiet      bool
	logFile    string
	sourceFlag string

	// Set up by the root PersistentPreRunE.
	cfg     config.Config
	log     *logger.Logger
	logSink io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "recipebook",
	Short: "Browse recipes by tag and scale their ingredients",
	Long: `recipebook reads a recipe collection (asset/Info.json plus one
recipes/<id>.json per recipe) from a local directory or a web host.

Run without arguments to start the interactive viewer.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("source") {
			cfg.Source = sourceFlag
		}
		if cmd.Flags().Changed("log-file") {
			cfg.Log.File = logFile
		}

		level := logger.ParseLevel(cfg.Log.Level)
		if verbose {
			level = logger.LevelVerbose
		}
		if quiet {
			level = logger.LevelOff
		}
		log = logger.New(level, openLogOutput(cfg.Log.File))
		log.Debug("config: source=%s metadata=%s detail=%s", cfg.Source, cfg.MetadataPath, cfg.DetailPath)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
		if logSink != nil {
			_ = logSink.Close()
		}
	},
	RunE: runViewer,
}

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Start the interactive viewer (default)",
	Args:  cobra.NoArgs,
	RunE:  runViewer,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Host the asset tree and the recipe JSON API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Regenerate asset/Info.json and asset/recipes.json from recipes/*.json",
	Args:  cobra.NoArgs,
	RunE:  runIndex,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "recipebook.yaml", "YAML config file (skipped when missing)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose/debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "disable all logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", `file to write logs to (use "stderr" to log to console)`)
	rootCmd.PersistentFlags().StringVarP(&sourceFlag, "source", "s", "", "asset root: a directory or an http(s) base URL")

	serveCmd.Flags().String("addr", "", "listen address (default from config)")
	indexCmd.Flags().String("dir", "", "site root holding recipes/ and asset/ (default from config)")

	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(indexCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openLogOutput directs logs to a file so the REPL stays clean. An empty
// name or "stderr" logs to the console.
func openLogOutput(name string) io.Writer {
	if name == "" || name == "stderr" {
		return os.Stderr
	}
	if dir := filepath.Dir(name); dir != "" && dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", name, err)
		return os.Stderr
	}
	logSink = f
	return f
}
