package cmd

import (
	"fmt"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	awslogs "tasnim.dev/lambda-logs/internal/aws/logs"
	"tasnim.dev/lambda-logs/internal/tui/theme"
)

// maxTailLines is the GetLogEvents page limit.
const maxTailLines = 10000

func NewTailCmd(app *App) *cobra.Command {
	var (
		stream   string
		lines    int
		follow   bool
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "tail <function>",
		Short: "Print the latest events of the most recently active stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if lines < 1 || lines > maxTailLines {
				return fmt.Errorf("--lines must be between 1 and %d", maxTailLines)
			}
			if interval < time.Second {
				return fmt.Errorf("--interval must be at least 1s")
			}

			e, err := app.resolve(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			fn, region := e.target(cmd, args[0])
			logGroup := awslogs.LogGroupName(fn)

			client, err := e.backend.Logs(ctx, region)
			if err != nil {
				return err
			}

			if stream == "" {
				latest, ok, err := client.LatestLogStream(ctx, logGroup)
				if err != nil {
					return err
				}
				if !ok {
					lipgloss.Fprintf(e.out, "No log streams in %s\n", logGroup)
					return nil
				}
				stream = latest.Name
			}
			if e.output == "text" {
				lipgloss.Fprintln(e.out, theme.TitleStyle.Render("==> "+stream+" <=="))
			}

			events, token, err := client.GetLatestLogEvents(ctx, logGroup, stream, lines)
			if err != nil {
				return err
			}
			if err := e.printLogEvents(events); err != nil {
				return err
			}
			if !follow {
				return nil
			}

			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}

				events, next, err := client.GetLogEventsSince(ctx, logGroup, stream, token)
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					return err
				}
				if len(events) > 0 {
					if err := e.printLogEvents(events); err != nil {
						return err
					}
				}
				if next != "" {
					token = next
				}
			}
		},
	}

	cmd.Flags().StringVarP(&stream, "stream", "s", "", "Log stream to read (default: most recently active)")
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of events to print")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep polling for new events")
	cmd.Flags().DurationVar(&interval, "interval", 5*time.Second, "Polling interval with --follow")

	return cmd
}
