package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/Ashfaaq98/console-cases/internal/web"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the case browser as a web page",
	Long: `Start an HTTP server that renders the case browser as an HTML page.

Every browser gets its own session, identified by a cookie. The dataset is
loaded once per session; cases added through the form live only in that
session and disappear when it expires or the server stops.

Routes:
  GET  /          case list, search with ?q=
  POST /cases     add a session-local case
  GET  /healthz   liveness
  GET  /data/...  files from the data directory

Examples:
  # Serve the bundled dataset on the default address
  console-cases serve

  # Serve a remote dataset, shared across sessions through Redis
  console-cases serve --dataset https://example.com/cases.json --cache redis`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("bind", "127.0.0.1:8080", "Bind address for the web surface")
	serveCmd.Flags().Float64("rps", 2, "Max case submissions per second per client (0 disables)")
	serveCmd.Flags().Int("burst", 5, "Burst size for the submission rate limiter")
	serveCmd.Flags().Duration("session-ttl", 30*time.Minute, "Idle time after which a session is discarded")
	serveCmd.Flags().String("data-dir", "data", "Directory served under /data/")

	viper.BindPFlag("web.bind", serveCmd.Flags().Lookup("bind"))
	viper.BindPFlag("web.rps", serveCmd.Flags().Lookup("rps"))
	viper.BindPFlag("web.burst", serveCmd.Flags().Lookup("burst"))
	viper.BindPFlag("web.session_ttl", serveCmd.Flags().Lookup("session-ttl"))
	viper.BindPFlag("web.data_dir", serveCmd.Flags().Lookup("data-dir"))
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	config := GetConfig()

	logger := newLogger(os.Stderr, "[serve] ", config.Log.Level)
	logger.Println("Starting Console-Cases web surface")

	datasetCache, err := openDatasetCache(config, newLogger(os.Stderr, "[cache] ", config.Log.Level))
	if err != nil {
		return err
	}
	defer datasetCache.Close()

	ld := newDatasetLoader(config, datasetCache, newLogger(os.Stderr, "[loader] ", config.Log.Level))

	srv, err := web.NewServer(web.Options{
		Bind:       config.Web.Bind,
		Source:     config.Dataset.URL,
		DataDir:    resolvePathRelativeToBase(getWorkingDir(), config.Web.DataDir),
		Fetcher:    ld,
		RPS:        config.Web.RPS,
		Burst:      config.Web.Burst,
		SessionTTL: config.Web.SessionTTL,
		Logger:     newLogger(os.Stderr, "[web] ", config.Log.Level),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize web surface: %w", err)
	}
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("failed to start web surface: %w", err)
	}

	<-ctx.Done()
	logger.Printf("Shutting down (%d live sessions)", srv.SessionCount())
	<-srv.Done()
	return nil
}
