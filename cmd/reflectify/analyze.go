package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reflectify/reflectify/internal/analysis"
	rhttp "github.com/reflectify/reflectify/internal/http"
	"github.com/reflectify/reflectify/internal/services"
)

func newAnalyzeCmd(opts *options) *cobra.Command {
	var title, category string

	cmd := &cobra.Command{
		Use:   "analyze [file|-]",
		Short: "Analyze a reflection from a file or stdin",
		Long: `Analyze a reflection and print its scores, level, feedback and follow-up questions.

Examples:
  # Analyze a file locally
  reflectify analyze praktikum.txt --category Praktikum

  # Analyze from stdin
  cat tagebuch.txt | reflectify analyze -

  # Use a running daemon and print JSON
  reflectify analyze --server http://localhost:9191 --json praktikum.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			in := analysis.Input{Text: text, Title: title, Category: category}

			var res *analysis.Result
			if opts.serverURL != "" {
				res, err = analyzeRemote(cmd.Context(), opts.serverURL, in)
			} else {
				res, err = analyzeLocal(cmd.Context(), opts, in)
			}
			if err != nil {
				return err
			}

			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderResult(res))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "reflection title")
	cmd.Flags().StringVar(&category, "category", "", "reflection category, e.g. Arbeit or Studium")
	return cmd
}

// readInput reads the reflection from the file named in args, or from stdin
// when args is empty or "-".
func readInput(stdin io.Reader, args []string) (string, error) {
	var (
		content []byte
		err     error
	)
	if len(args) == 0 || args[0] == "-" {
		content, err = io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		content, err = os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
	}

	if strings.TrimSpace(string(content)) == "" {
		return "", errors.New("no reflection text to analyze")
	}
	return string(content), nil
}

func analyzeLocal(ctx context.Context, opts *options, in analysis.Input) (*analysis.Result, error) {
	cfg, logger, err := opts.load()
	if err != nil {
		return nil, err
	}
	defer func() { _ = logger.Sync() }()

	reg, err := services.Build(ctx, services.Options{Config: cfg, Logger: logger})
	if err != nil {
		return nil, err
	}
	defer reg.Close()

	return reg.Engine().Analyze(ctx, in), nil
}

func analyzeRemote(ctx context.Context, serverURL string, in analysis.Input) (*analysis.Result, error) {
	body, err := json.Marshal(rhttp.AnalyzeRequest{Text: in.Text, Title: in.Title, Category: in.Category})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimRight(serverURL, "/") + "/api/v1/analyze"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: requestTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach %s: %w", serverURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp)
	}

	var res analysis.Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &res, nil
}

// responseError turns a non-200 answer into an error, preferring the
// server's ErrorResponse message.
func responseError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("server returned status %d (failed to read response body: %w)", resp.StatusCode, err)
	}
	var e rhttp.ErrorResponse
	if json.Unmarshal(body, &e) == nil && e.Message != "" {
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, e.Message)
	}
	return fmt.Errorf("server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}
