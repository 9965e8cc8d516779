package aws

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"

	awslogs "tasnim.dev/lambda-logs/internal/aws/logs"
)

// ConfigLoader resolves an AWS config for a profile and region.
type ConfigLoader func(ctx context.Context, profile, region string) (awssdk.Config, error)

// Registry hands out one CloudWatch Logs client per region, built on first use
// and reused afterwards.
type Registry struct {
	profile string
	load    ConfigLoader
	logger  *slog.Logger

	mu      sync.Mutex
	configs map[string]awssdk.Config
	logs    map[string]*awslogs.Client
}

// NewRegistry creates a registry that loads configs for the given profile.
func NewRegistry(profile string, logger *slog.Logger) *Registry {
	return NewRegistryWithLoader(profile, logger, LoadConfig)
}

// NewRegistryWithLoader creates a registry with a custom config loader (for testing).
func NewRegistryWithLoader(profile string, logger *slog.Logger, load ConfigLoader) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		profile: profile,
		load:    load,
		logger:  logger,
		configs: make(map[string]awssdk.Config),
		logs:    make(map[string]*awslogs.Client),
	}
}

// Config returns the cached AWS config for region, loading it on first use.
// An empty region resolves through the shared config and environment.
func (r *Registry) Config(ctx context.Context, region string) (awssdk.Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.configLocked(ctx, region)
}

func (r *Registry) configLocked(ctx context.Context, region string) (awssdk.Config, error) {
	if cfg, ok := r.configs[region]; ok {
		return cfg, nil
	}
	cfg, err := r.load(ctx, r.profile, region)
	if err != nil {
		return awssdk.Config{}, fmt.Errorf("region %q: %w", region, err)
	}
	r.logger.Debug("loaded AWS config", "profile", r.profile, "region", cfg.Region)
	r.configs[region] = cfg
	return cfg, nil
}

// Logs returns the CloudWatch Logs client for region.
func (r *Registry) Logs(ctx context.Context, region string) (*awslogs.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.logs[region]; ok {
		return c, nil
	}
	cfg, err := r.configLocked(ctx, region)
	if err != nil {
		return nil, err
	}
	c := awslogs.NewClient(cloudwatchlogs.NewFromConfig(cfg), awslogs.WithLogger(r.logger))
	r.logs[region] = c
	return c, nil
}

// AccountID returns the account the region's credentials belong to, "" on error.
func (r *Registry) AccountID(ctx context.Context, region string) string {
	cfg, err := r.Config(ctx, region)
	if err != nil {
		return ""
	}
	return GetAccountID(ctx, cfg)
}
