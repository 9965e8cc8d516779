package cmd

import (
	"fmt"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	awslogs "tasnim.dev/lambda-logs/internal/aws/logs"
)

func NewCleanCmd(app *App) *cobra.Command {
	var dryRun, yes, keepGoing bool

	cmd := &cobra.Command{
		Use:   "clean <function>",
		Short: "Delete every log stream of a Lambda function",
		Long: `Deletes every log stream in /aws/lambda/<function>. The log group itself is kept.

Without --yes the streams are listed and confirmed first, and only the
confirmed streams are deleted. By default the first failed delete stops the run. --keep-going attempts every
stream and reports all failures at the end.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			concurrency := e.v.GetInt("concurrency")
			if concurrency <= 0 {
				concurrency = e.cfg.Concurrency()
			}
			opts := awslogs.DeleteOptions{Concurrency: concurrency, KeepGoing: keepGoing}

			var names []string
			if dryRun || !yes {
				streams, err := client.ListLogStreams(ctx, logGroup)
				if err != nil {
					return err
				}
				if dryRun {
					return e.printStreams(logGroup, streams)
				}

				names = streamNames(streams)
				if len(names) == 0 {
					return e.printCleanResult(logGroup, 0, nil)
				}
				ok, err := app.Confirm(fmt.Sprintf("Delete %d log stream(s) from %s?", len(names), logGroup), names)
				if err != nil {
					return err
				}
				if !ok {
					lipgloss.Fprintln(e.out, "Aborted.")
					return nil
				}
			}

			e.logger.Info("cleaning log group",
				"log_group", logGroup,
				"region", region,
				"account", e.backend.AccountID(ctx, region),
				"concurrency", concurrency,
			)

			// Confirmed names are deleted as listed; streams created since the prompt are kept.
			var n int
			if names != nil {
				n, err = client.DeleteLogStreams(ctx, logGroup, names, opts)
			} else {
				n, err = client.DeleteAllLogs(ctx, fn, opts)
			}
			if perr := e.printCleanResult(logGroup, n, err); perr != nil {
				return perr
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the streams that would be deleted")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "Attempt every delete and report failures at the end")
	cmd.Flags().Int("concurrency", 0, "Concurrent DeleteLogStream calls (default from config, 4)")

	return cmd
}

func streamNames(streams []awslogs.LogStream) []string {
	names := make([]string, 0, len(streams))
	for _, s := range streams {
		if s.Name != "" {
			names = append(names, s.Name)
		}
	}
	return names
}
