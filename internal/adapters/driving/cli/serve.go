package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finsight-labs/finsearch-cli/internal/adapters/driving/httpapi"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Serves the retrieval engine as a JSON API.

Endpoints mirror the agent service contract: POST /document, /search,
/company/search, /financial-data, /filing, /news-article,
/financial-context and /clear, plus GET /document/{id}, /stats and a
Prometheus /metrics endpoint.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "listen port")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if searchService == nil || ingestService == nil || indexService == nil {
		return errors.New("services not configured")
	}

	server, err := httpapi.NewServer(searchService, ingestService, indexService)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", servePort)
	cmd.Printf("HTTP API listening on http://localhost%s\n", addr)
	return server.Run(cmd.Context(), addr)
}
