package cmd

import (
	"github.com/spf13/cobra"

	awslogs "tasnim.dev/lambda-logs/internal/aws/logs"
)

func NewStreamsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "streams <function>",
		Aliases: []string{"ls"},
		Short:   "List log streams, most recently active first",
		Args:    cobra.ExactArgs(1),
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

			streams, err := client.ListLogStreams(ctx, logGroup)
			if err != nil {
				return err
			}
			return e.printStreams(logGroup, streams)
		},
	}
}
