package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	rhttp "github.com/reflectify/reflectify/internal/http"
)

const healthTimeout = 5 * time.Second

func newHealthCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check reflectifyd health",
		Long: `Check the health status of a running reflectifyd.

Examples:
  # Check the local daemon
  reflectify health

  # Check another server
  reflectify health --server http://reflectify.internal:9191`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			url := opts.server()
			h, err := fetchHealth(cmd.Context(), url)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				if err := writeJSON(cmd.OutOrStdout(), h); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), renderHealth(url, h))
			}
			if h.Status != "ok" {
				return fmt.Errorf("server is %s", h.Status)
			}
			return nil
		},
	}
}

// fetchHealth decodes /health. A degraded daemon answers 503 with the same
// body, so both status codes carry a HealthResponse.
func fetchHealth(ctx context.Context, serverURL string) (rhttp.HealthResponse, error) {
	var h rhttp.HealthResponse

	url := strings.TrimRight(serverURL, "/") + "/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return h, fmt.Errorf("failed to create request: %w", err)
	}

	client := &http.Client{Timeout: healthTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return h, fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return h, responseError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return h, fmt.Errorf("failed to decode response: %w", err)
	}
	return h, nil
}
