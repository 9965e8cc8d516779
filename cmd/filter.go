package cmd

import (
	"github.com/spf13/cobra"

	awslogs "tasnim.dev/lambda-logs/internal/aws/logs"
)

func NewFilterCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "filter <function> <pattern>",
		Short: "Show the latest event containing a phrase",
		Long: `Searches /aws/lambda/<function> for the pattern as a literal, quoted phrase
across all streams and prints at most one matching event.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.resolve(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			fn, region := e.target(cmd, args[0])

			client, err := e.backend.Logs(ctx, region)
			if err != nil {
				return err
			}

			res, err := client.FilterLogEvents(ctx, fn, args[1])
			if err != nil {
				return err
			}
			e.logger.Debug("filtered log events", "function", fn, "matches", len(res.Events))
			return e.printFilterResult(awslogs.LogGroupName(fn), args[1], res)
		},
	}
}
