package cmd

import (
	"errors"
	"io"
	"log"
	"os"

	"github.com/Ashfaaq98/console-cases/internal/ui"
	"github.com/spf13/cobra"
)

var (
	forceTUI  bool
	themeName string
)

// browseCmd represents the browse command
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse cases in a terminal UI",
	Long: `Open the terminal user interface. The dataset loads in the background while
the screen is already usable.

Keys:
  /      focus search (Esc clears it)
  a      focus the add-case form
  Tab    move between search, list and form
  t      cycle color theme
  q      quit

Logs are written to logs/console-cases-ui.log while the UI owns the terminal.

Examples:
  console-cases browse
  console-cases browse --dataset https://example.com/cases.json --theme light`,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)

	browseCmd.Flags().BoolVar(&forceTUI, "force-tui", false, "Force TUI mode even in unsupported terminals")
	browseCmd.Flags().StringVar(&themeName, "theme", "dark", "Color theme (dark, light, neon, high-contrast)")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	config := GetConfig()

	if !forceTUI && !canInitializeTUI() {
		logger := log.New(os.Stderr, "[browse] ", log.LstdFlags)
		logger.Printf("Terminal info: %s", getTerminalInfo())
		logger.Println("TUI cannot be initialized in this terminal environment")
		logger.Println("Use the plain-text alternative instead:")
		logger.Println("  console-cases list --query <text>")
		return errors.New("terminal UI unavailable")
	}

	// Silent TUI mode: logs go to file, errors still visible after exit
	var out io.Writer = io.Discard
	if logFile := setupFileLogger("console-cases-ui.log"); logFile != nil {
		defer logFile.Close()
		out = logFile
	}
	logger := newLogger(out, "[UI] ", config.Log.Level)

	datasetCache, err := openDatasetCache(config, newLogger(out, "[cache] ", config.Log.Level))
	if err != nil {
		return err
	}
	defer datasetCache.Close()

	tui := ui.NewUI(ctx, ui.Options{
		Fetcher: newDatasetLoader(config, datasetCache, newLogger(out, "[loader] ", config.Log.Level)),
		Source:  config.Dataset.URL,
		Logger:  logger,
		Theme:   themeName,
	})
	return tui.Start(ctx)
}
