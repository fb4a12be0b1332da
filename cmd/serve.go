package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/valtlai/agent-history/internal"
	"github.com/valtlai/agent-history/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve conversation history over HTTP",
	Long: `Start an HTTP server exposing one endpoint:

  POST /api/history  {"projectPath": "/abs/path"}  ->  {"success": true, "history": {...}}

Only malformed request input yields an error envelope; a project with
no history returns an empty result with success=true.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              serveAddr,
			Handler:           server.New(cfg).Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		internal.LogInfo("listening on %s", serveAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8574", "Listen address")
	rootCmd.AddCommand(serveCmd)
}
