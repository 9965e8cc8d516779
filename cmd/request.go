package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tasnim.dev/lambda-logs/internal/api"
	"tasnim.dev/lambda-logs/internal/tui/theme"
)

// maxResponseBody caps how much of a response is read for the expect check.
const maxResponseBody = 1 << 20

func NewRequestCmd(app *App) *cobra.Command {
	var (
		send         bool
		expectStatus int
		timeout      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "request <file>",
		Short: "Validate a REST request descriptor, optionally sending it",
		Long: `Reads a request descriptor (YAML or JSON) with method, url and optional
params, data, headers and an expect block (statusCode, data). Without --send it
prints the resolved request. With --send the response is checked against expect;
--expect-status overrides its status code.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.resolve(cmd)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading request: %w", err)
			}
			var desc api.Request
			if err := yaml.Unmarshal(data, &desc); err != nil {
				return fmt.Errorf("parsing request: %w", err)
			}

			req, err := desc.NewHTTPRequest(cmd.Context())
			if err != nil {
				return err
			}

			if !send {
				lipgloss.Fprintf(e.out, "%s %s\n", req.Method, req.URL)
				keys := make([]string, 0, len(req.Header))
				for k := range req.Header {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					lipgloss.Fprintf(e.out, "%s: %s\n", k, req.Header.Get(k))
				}
				return nil
			}

			expect := desc.Expect
			if expectStatus != 0 {
				if expect == nil {
					expect = &api.ExpectedResponse{}
				}
				expect.StatusCode = expectStatus
			}

			e.logger.Debug("sending request", "method", req.Method, "url", req.URL.String())
			resp, err := (&http.Client{Timeout: timeout}).Do(req)
			if err != nil {
				return fmt.Errorf("sending request: %w", err)
			}
			defer resp.Body.Close()
			body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
			if err != nil {
				return fmt.Errorf("reading response: %w", err)
			}

			lipgloss.Fprintf(e.out, "%s %s -> %d\n", req.Method, req.URL, resp.StatusCode)
			if expect == nil {
				return nil
			}
			if err := expect.Check(resp.StatusCode, body); err != nil {
				return err
			}
			lipgloss.Fprintln(e.out, theme.SuccessStyle.Render("response matches"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&send, "send", false, "Send the request")
	cmd.Flags().IntVar(&expectStatus, "expect-status", 0, "Fail unless the response has this status code (overrides expect.statusCode)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "HTTP timeout with --send")

	return cmd
}
