package logs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	cwltypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"golang.org/x/sync/errgroup"
)

// LambdaLogGroupPrefix is the log group prefix Lambda writes function logs under.
const LambdaLogGroupPrefix = "/aws/lambda/"

// CloudWatchLogsAPI defines the subset of CloudWatch Logs API we use.
type CloudWatchLogsAPI interface {
	DescribeLogStreams(ctx context.Context, params *cloudwatchlogs.DescribeLogStreamsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.DescribeLogStreamsOutput, error)
	DeleteLogStream(ctx context.Context, params *cloudwatchlogs.DeleteLogStreamInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.DeleteLogStreamOutput, error)
	FilterLogEvents(ctx context.Context, params *cloudwatchlogs.FilterLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.FilterLogEventsOutput, error)
	GetLogEvents(ctx context.Context, params *cloudwatchlogs.GetLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.GetLogEventsOutput, error)
}

// Client wraps the CloudWatch Logs API.
type Client struct {
	api    CloudWatchLogsAPI
	logger *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the logger used for per-stream progress.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new logs client.
func NewClient(api CloudWatchLogsAPI, opts ...Option) *Client {
	c := &Client{api: api, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LogGroupName returns the log group a Lambda function writes to.
func LogGroupName(functionName string) string {
	return LambdaLogGroupPrefix + functionName
}

// ListLogStreams returns every stream in logGroup, most recently active first.
func (c *Client) ListLogStreams(ctx context.Context, logGroup string) ([]LogStream, error) {
	var streams []LogStream
	var nextToken *string

	for {
		out, err := c.api.DescribeLogStreams(ctx, &cloudwatchlogs.DescribeLogStreamsInput{
			LogGroupName: aws.String(logGroup),
			OrderBy:      cwltypes.OrderByLastEventTime,
			Descending:   aws.Bool(true),
			NextToken:    nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("DescribeLogStreams: %w", err)
		}

		for _, s := range out.LogStreams {
			streams = append(streams, toLogStream(s))
		}

		if aws.ToString(out.NextToken) == "" {
			break
		}
		nextToken = out.NextToken
	}

	return streams, nil
}

// LatestLogStream returns the most recently active stream in logGroup.
// The boolean is false when the group has no named streams.
func (c *Client) LatestLogStream(ctx context.Context, logGroup string) (LogStream, bool, error) {
	out, err := c.api.DescribeLogStreams(ctx, &cloudwatchlogs.DescribeLogStreamsInput{
		LogGroupName: aws.String(logGroup),
		OrderBy:      cwltypes.OrderByLastEventTime,
		Descending:   aws.Bool(true),
		Limit:        aws.Int32(1),
	})
	if err != nil {
		return LogStream{}, false, fmt.Errorf("DescribeLogStreams: %w", err)
	}
	if len(out.LogStreams) == 0 || aws.ToString(out.LogStreams[0].LogStreamName) == "" {
		return LogStream{}, false, nil
	}
	return toLogStream(out.LogStreams[0]), true, nil
}

// DeleteLogStream deletes a single stream from logGroup.
func (c *Client) DeleteLogStream(ctx context.Context, logGroup, logStream string) error {
	_, err := c.api.DeleteLogStream(ctx, &cloudwatchlogs.DeleteLogStreamInput{
		LogGroupName:  aws.String(logGroup),
		LogStreamName: aws.String(logStream),
	})
	if err != nil {
		return fmt.Errorf("DeleteLogStream %s: %w", logStream, err)
	}
	return nil
}

// DeleteAllLogs deletes every named log stream of the function's log group and
// returns how many were deleted. Streams with an empty name are skipped.
func (c *Client) DeleteAllLogs(ctx context.Context, functionName string, opts DeleteOptions) (int, error) {
	logGroup := LogGroupName(functionName)

	streams, err := c.ListLogStreams(ctx, logGroup)
	if err != nil {
		return 0, err
	}
	names := make([]string, 0, len(streams))
	for _, s := range streams {
		names = append(names, s.Name)
	}
	return c.DeleteLogStreams(ctx, logGroup, names, opts)
}

// DeleteLogStreams deletes exactly the named streams of logGroup and returns
// how many were deleted. Empty names are skipped.
//
// By default the first failed delete cancels the rest and is returned as is.
// With opts.KeepGoing every delete is attempted and failures come back as a *CleanupError.
func (c *Client) DeleteLogStreams(ctx context.Context, logGroup string, names []string, opts DeleteOptions) (int, error) {
	var (
		deleted atomic.Int64
		mu      sync.Mutex
		failed  = make(map[string]error)
		pending int
	)

	var g *errgroup.Group
	runCtx := ctx
	if opts.KeepGoing {
		g = new(errgroup.Group)
	} else {
		g, runCtx = errgroup.WithContext(ctx)
	}
	g.SetLimit(opts.concurrency())

	for _, name := range names {
		if name == "" {
			continue
		}
		if runCtx.Err() != nil {
			break
		}
		pending++
		g.Go(func() error {
			if runCtx.Err() != nil {
				return nil
			}
			if err := c.DeleteLogStream(runCtx, logGroup, name); err != nil {
				if !opts.KeepGoing {
					return err
				}
				c.logger.Warn("delete failed", "log_group", logGroup, "log_stream", name, "error", err)
				mu.Lock()
				failed[name] = err
				mu.Unlock()
				return nil
			}
			deleted.Add(1)
			c.logger.Debug("deleted log stream", "log_group", logGroup, "log_stream", name)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return int(deleted.Load()), err
	}
	if err := ctx.Err(); err != nil {
		return int(deleted.Load()), err
	}
	if pending == 0 {
		c.logger.Info("no log streams to delete", "log_group", logGroup)
		return 0, nil
	}
	if len(failed) > 0 {
		return int(deleted.Load()), &CleanupError{LogGroup: logGroup, Failed: failed}
	}

	c.logger.Info("deleted log streams", "log_group", logGroup, "count", deleted.Load())
	return int(deleted.Load()), nil
}

// FilterLogEvents returns the latest event in the function's log group that
// matches filterPattern as a literal phrase.
func (c *Client) FilterLogEvents(ctx context.Context, functionName, filterPattern string) (*FilterResult, error) {
	out, err := c.api.FilterLogEvents(ctx, &cloudwatchlogs.FilterLogEventsInput{
		LogGroupName:  aws.String(LogGroupName(functionName)),
		FilterPattern: aws.String(`"` + filterPattern + `"`),
		Interleaved:   aws.Bool(true),
		Limit:         aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("FilterLogEvents: %w", err)
	}

	events := out.Events
	if events == nil {
		events = []cwltypes.FilteredLogEvent{}
	}
	return &FilterResult{Events: events}, nil
}

// GetLatestLogEvents retrieves the most recent log events from a stream.
func (c *Client) GetLatestLogEvents(ctx context.Context, logGroup, logStream string, limit int) ([]LogEvent, string, error) {
	out, err := c.api.GetLogEvents(ctx, &cloudwatchlogs.GetLogEventsInput{
		LogGroupName:  aws.String(logGroup),
		LogStreamName: aws.String(logStream),
		Limit:         aws.Int32(int32(limit)),
		StartFromHead: aws.Bool(false),
	})
	if err != nil {
		return nil, "", fmt.Errorf("GetLogEvents: %w", err)
	}
	return toLogEvents(out.Events), aws.ToString(out.NextForwardToken), nil
}

// GetLogEventsSince retrieves new log events using a forward token from a previous call.
func (c *Client) GetLogEventsSince(ctx context.Context, logGroup, logStream, forwardToken string) ([]LogEvent, string, error) {
	out, err := c.api.GetLogEvents(ctx, &cloudwatchlogs.GetLogEventsInput{
		LogGroupName:  aws.String(logGroup),
		LogStreamName: aws.String(logStream),
		NextToken:     aws.String(forwardToken),
		StartFromHead: aws.Bool(true),
	})
	if err != nil {
		return nil, "", fmt.Errorf("GetLogEvents: %w", err)
	}
	return toLogEvents(out.Events), aws.ToString(out.NextForwardToken), nil
}

func toLogEvents(in []cwltypes.OutputLogEvent) []LogEvent {
	events := make([]LogEvent, len(in))
	for i, e := range in {
		events[i] = LogEvent{
			Timestamp: time.UnixMilli(aws.ToInt64(e.Timestamp)),
			Message:   aws.ToString(e.Message),
		}
	}
	return events
}

func toLogStream(s cwltypes.LogStream) LogStream {
	return LogStream{
		Name:          aws.ToString(s.LogStreamName),
		CreationTime:  fromMillis(s.CreationTime),
		LastEventTime: fromMillis(s.LastEventTimestamp),
	}
}

func fromMillis(ms *int64) time.Time {
	if ms == nil {
		return time.Time{}
	}
	return time.UnixMilli(*ms)
}
