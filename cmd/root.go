package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	awsclient "tasnim.dev/lambda-logs/internal/aws"
	awslogs "tasnim.dev/lambda-logs/internal/aws/logs"
	"tasnim.dev/lambda-logs/internal/config"
	"tasnim.dev/lambda-logs/internal/logger"
	"tasnim.dev/lambda-logs/internal/tui"
	"tasnim.dev/lambda-logs/internal/utils"
)

// EnvPrefix is the prefix for environment overrides, e.g. LAMBDA_LOGS_REGION.
const EnvPrefix = "LAMBDA_LOGS"

// Backend hands out per-region AWS clients.
type Backend interface {
	Logs(ctx context.Context, region string) (*awslogs.Client, error)
	AccountID(ctx context.Context, region string) string
}

// App carries the collaborators the commands share. Zero fields fall back to the real ones.
type App struct {
	LoadConfig func() (*config.Config, error)
	NewBackend func(profile string, logger *slog.Logger) Backend
	Confirm    func(title string, items []string) (bool, error)
	Stderr     io.Writer
}

func (a *App) withDefaults() *App {
	if a.LoadConfig == nil {
		a.LoadConfig = config.Load
	}
	if a.NewBackend == nil {
		a.NewBackend = func(profile string, logger *slog.Logger) Backend {
			return awsclient.NewRegistry(profile, logger)
		}
	}
	if a.Confirm == nil {
		a.Confirm = tui.Confirm
	}
	if a.Stderr == nil {
		a.Stderr = os.Stderr
	}
	return a
}

// env is what a command sees after flags, environment and config file are merged.
type env struct {
	cfg     *config.Config
	v       *viper.Viper
	profile string
	region  string
	output  string
	logger  *slog.Logger
	backend Backend
	out     io.Writer
}

func (a *App) resolve(cmd *cobra.Command) (*env, error) {
	cfg, err := a.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}

	profile, region := cfg.Merge(v.GetString("profile"), v.GetString("region"))

	level := v.GetString("log-level")
	if level == "" {
		level = cfg.Level()
	}
	format := strings.ToLower(v.GetString("log-format"))
	if format == "" {
		format = cfg.Format()
	}
	if format != "text" && format != "json" {
		return nil, fmt.Errorf("unsupported log format %q (want text or json)", format)
	}
	log := logger.New(a.Stderr, logger.Config{
		Level:     level,
		Format:    format,
		AddSource: v.GetBool("log-source") || cfg.LogSource,
	})
	slog.SetDefault(log)

	output := strings.ToLower(v.GetString("output"))
	switch output {
	case "", "text":
		output = "text"
	case "json", "yaml":
	default:
		return nil, fmt.Errorf("unsupported output format %q (want text, json or yaml)", output)
	}

	return &env{
		cfg:     cfg,
		v:       v,
		profile: profile,
		region:  region,
		output:  output,
		logger:  log,
		backend: a.NewBackend(profile, log),
		out:     cmd.OutOrStdout(),
	}, nil
}

// target resolves a function argument (name or ARN) to a function name and region.
// An ARN's region wins over config and environment defaults, but not over --region.
func (e *env) target(cmd *cobra.Command, arg string) (string, string) {
	fn := utils.FunctionName(arg)
	region := e.region
	if arnRegion := utils.RegionFromARN(arg); arnRegion != "" && !cmd.Flags().Changed("region") {
		region = arnRegion
	}
	return fn, region
}

// NewRootCmd builds the lambda-logs command tree.
func NewRootCmd(app *App) *cobra.Command {
	if app == nil {
		app = &App{}
	}
	app.withDefaults()

	root := &cobra.Command{
		Use:   "lambda-logs",
		Short: "Clean up and search CloudWatch Logs of AWS Lambda functions",
		Long: `lambda-logs works on the log group a Lambda function writes to (/aws/lambda/<function>).

  lambda-logs streams my-func          # List log streams, most recent first
  lambda-logs filter my-func "ERROR"   # Show the latest event containing ERROR
  lambda-logs tail my-func -f          # Follow the most recent stream
  lambda-logs clean my-func            # Delete every log stream

Environment variables prefixed with LAMBDA_LOGS_ override the config file
(~/.config/lambda-logs/config.yaml); flags override both.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringP("profile", "p", "", "AWS profile to use")
	root.PersistentFlags().StringP("region", "r", "", "AWS region to use")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().String("log-format", "", "Log format on stderr: text, json")
	root.PersistentFlags().Bool("log-source", false, "Include source file and line in log records")
	root.PersistentFlags().StringP("output", "o", "text", "Output format: text, json, yaml")

	root.AddCommand(NewCleanCmd(app))
	root.AddCommand(NewFilterCmd(app))
	root.AddCommand(NewStreamsCmd(app))
	root.AddCommand(NewTailCmd(app))
	root.AddCommand(NewRequestCmd(app))
	root.AddCommand(NewVersionCmd())

	return root
}
