package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Ashfaaq98/console-cases/internal/browser"
	"github.com/Ashfaaq98/console-cases/internal/render"
	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cases as plain text",
	Long: `List cases in a simple text format. This command works in any terminal
environment and provides an alternative to the TUI when terminal capabilities
are limited. Control characters in the dataset are stripped from the output.

Examples:
  # List all cases
  console-cases list

  # List cases matching a search
  console-cases list --query bank`,
	RunE: runList,
}

var listQuery string

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Case-insensitive search text")
}

// textSurface keeps the latest view for printing once the session settles
type textSurface struct {
	browser.NopSurface
	view    render.View
	errText string
}

func (t *textSurface) Render(view render.View)  { t.view = view }
func (t *textSurface) ShowError(message string) { t.errText = message }

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	config := GetConfig()

	logger := newLogger(os.Stderr, "[list] ", config.Log.Level)
	datasetCache, err := openDatasetCache(config, logger)
	if err != nil {
		return err
	}
	defer datasetCache.Close()

	surface := &textSurface{}
	session := browser.NewSession(browser.Options{
		Fetcher:   newDatasetLoader(config, datasetCache, logger),
		Source:    config.Dataset.URL,
		Surface:   surface,
		Sanitizer: render.Terminal{},
		Logger:    logger,
	})
	if err := session.Load(ctx); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), surface.errText)
		return fmt.Errorf("failed to load cases: %w", err)
	}
	if listQuery != "" {
		session.Search(listQuery)
	}

	width, _ := getTerminalSize()
	printView(cmd.OutOrStdout(), surface.view, width)
	return nil
}

func printView(w io.Writer, view render.View, width int) {
	fmt.Fprintln(w, view.CountLabel)
	fmt.Fprintln(w)
	if view.NoResults {
		fmt.Fprintln(w, browser.NoResultsMessage)
		return
	}
	for i, it := range view.Items {
		fmt.Fprintf(w, "%d. %s\n", i+1, it.Company)
		if it.Description != "" {
			for _, line := range wrap(it.Description, width-3) {
				fmt.Fprintf(w, "   %s\n", line)
			}
		}
		if len(it.Tags) > 0 {
			fmt.Fprintf(w, "   Type: %s\n", strings.Join(it.Tags, ", "))
		}
		fmt.Fprintf(w, "   Reported: %s\n", it.ReportedDate)
		if it.Source.Href != "" {
			fmt.Fprintf(w, "   %s: %s\n", it.Source.Text, it.Source.Href)
		}
		fmt.Fprintln(w)
	}
}

// wrap breaks text on spaces so no line exceeds width. Words longer than
// width stay whole; width <= 0 disables wrapping.
func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if width <= 0 || len(words) == 0 {
		return []string{text}
	}
	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		if len(line)+1+len(word) > width {
			lines = append(lines, line)
			line = word
			continue
		}
		line += " " + word
	}
	return append(lines, line)
}
