package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	cwltypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	awslogs "tasnim.dev/lambda-logs/internal/aws/logs"
	"tasnim.dev/lambda-logs/internal/config"
)

type fakeLogsAPI struct {
	streams    []string
	events     []cwltypes.FilteredLogEvent
	tail       []cwltypes.OutputLogEvent
	listErr    error
	deleteErrs map[string]error
	// appeared is added to every listing after the first.
	appeared []string

	mu          sync.Mutex
	listings    int
	deleted     []string
	groups      []string
	filterInput *cloudwatchlogs.FilterLogEventsInput
}

func (f *fakeLogsAPI) DescribeLogStreams(ctx context.Context, params *cloudwatchlogs.DescribeLogStreamsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.DescribeLogStreamsOutput, error) {
	f.mu.Lock()
	f.groups = append(f.groups, awssdk.ToString(params.LogGroupName))
	f.listings++
	names := append([]string(nil), f.streams...)
	if f.listings > 1 {
		names = append(names, f.appeared...)
	}
	f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := &cloudwatchlogs.DescribeLogStreamsOutput{}
	for _, s := range names {
		out.LogStreams = append(out.LogStreams, cwltypes.LogStream{LogStreamName: awssdk.String(s)})
	}
	if params.Limit != nil && len(out.LogStreams) > int(*params.Limit) {
		out.LogStreams = out.LogStreams[:*params.Limit]
	}
	return out, nil
}

func (f *fakeLogsAPI) DeleteLogStream(ctx context.Context, params *cloudwatchlogs.DeleteLogStreamInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.DeleteLogStreamOutput, error) {
	name := awssdk.ToString(params.LogStreamName)
	f.mu.Lock()
	f.deleted = append(f.deleted, name)
	f.mu.Unlock()
	if err := f.deleteErrs[name]; err != nil {
		return nil, err
	}
	return &cloudwatchlogs.DeleteLogStreamOutput{}, nil
}

func (f *fakeLogsAPI) FilterLogEvents(ctx context.Context, params *cloudwatchlogs.FilterLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.FilterLogEventsOutput, error) {
	f.mu.Lock()
	f.filterInput = params
	f.mu.Unlock()
	return &cloudwatchlogs.FilterLogEventsOutput{Events: f.events}, nil
}

func (f *fakeLogsAPI) GetLogEvents(ctx context.Context, params *cloudwatchlogs.GetLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.GetLogEventsOutput, error) {
	return &cloudwatchlogs.GetLogEventsOutput{Events: f.tail, NextForwardToken: awssdk.String("f/1")}, nil
}

func (f *fakeLogsAPI) deletedNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := append([]string(nil), f.deleted...)
	sort.Strings(names)
	return names
}

type fakeBackend struct {
	api     *fakeLogsAPI
	regions []string
	profile string
}

func (b *fakeBackend) Logs(ctx context.Context, region string) (*awslogs.Client, error) {
	b.regions = append(b.regions, region)
	return awslogs.NewClient(b.api), nil
}

func (b *fakeBackend) AccountID(ctx context.Context, region string) string {
	return "123456789012"
}

func newTestApp(t *testing.T, b *fakeBackend, cfg *config.Config) *App {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{}
	}
	return &App{
		LoadConfig: func() (*config.Config, error) { return cfg, nil },
		NewBackend: func(profile string, logger *slog.Logger) Backend {
			b.profile = profile
			return b
		},
		Confirm: func(title string, items []string) (bool, error) {
			t.Fatalf("unexpected confirmation prompt: %s", title)
			return false, nil
		},
		Stderr: io.Discard,
	}
}

func run(app *App, args ...string) (string, error) {
	root := NewRootCmd(app)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRoot_ProfileAndRegionPrecedence(t *testing.T) {
	cfg := &config.Config{DefaultProfile: "file-profile", DefaultRegion: "us-east-1"}

	b := &fakeBackend{api: &fakeLogsAPI{}}
	_, err := run(newTestApp(t, b, cfg), "streams", "fn")
	require.NoError(t, err)
	assert.Equal(t, "file-profile", b.profile)
	assert.Equal(t, []string{"us-east-1"}, b.regions)

	t.Setenv("LAMBDA_LOGS_REGION", "eu-central-1")
	b = &fakeBackend{api: &fakeLogsAPI{}}
	_, err = run(newTestApp(t, b, cfg), "streams", "fn")
	require.NoError(t, err)
	assert.Equal(t, []string{"eu-central-1"}, b.regions)

	b = &fakeBackend{api: &fakeLogsAPI{}}
	_, err = run(newTestApp(t, b, cfg), "streams", "fn", "--region", "ap-south-1", "-p", "cli")
	require.NoError(t, err)
	assert.Equal(t, "cli", b.profile)
	assert.Equal(t, []string{"ap-south-1"}, b.regions)
}

func TestRoot_ARNRegion(t *testing.T) {
	arn := "arn:aws:lambda:eu-west-1:123456789012:function:my-func:prod"

	b := &fakeBackend{api: &fakeLogsAPI{}}
	_, err := run(newTestApp(t, b, &config.Config{DefaultRegion: "us-east-1"}), "streams", arn)
	require.NoError(t, err)
	assert.Equal(t, []string{"eu-west-1"}, b.regions)
	assert.Equal(t, []string{"/aws/lambda/my-func"}, b.api.groups)

	b = &fakeBackend{api: &fakeLogsAPI{}}
	_, err = run(newTestApp(t, b, nil), "streams", arn, "-r", "us-west-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"us-west-2"}, b.regions)
}

func TestRoot_InvalidOutput(t *testing.T) {
	b := &fakeBackend{api: &fakeLogsAPI{}}
	_, err := run(newTestApp(t, b, nil), "streams", "fn", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestRoot_LogFormat(t *testing.T) {
	tests := []struct {
		name       string
		cfg        *config.Config
		args       []string
		wantSource bool
	}{
		{"flag", nil, []string{"--log-format", "json"}, false},
		{"config file", &config.Config{LogFormat: "json", LogSource: true}, nil, true},
		{"flag source", &config.Config{LogFormat: "json"}, []string{"--log-source"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			app := newTestApp(t, &fakeBackend{api: &fakeLogsAPI{streams: []string{"a"}}}, tt.cfg)
			app.Stderr = &stderr

			args := append([]string{"clean", "fn", "-y"}, tt.args...)
			_, err := run(app, args...)
			require.NoError(t, err)

			line, _, _ := bytes.Cut(stderr.Bytes(), []byte("\n"))
			var rec map[string]any
			require.NoError(t, json.Unmarshal(line, &rec), stderr.String())
			assert.Equal(t, "cleaning log group", rec["msg"])
			_, hasSource := rec["source"]
			assert.Equal(t, tt.wantSource, hasSource)
		})
	}
}

func TestRoot_InvalidLogFormat(t *testing.T) {
	_, err := run(newTestApp(t, &fakeBackend{api: &fakeLogsAPI{}}, nil), "streams", "fn", "--log-format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported log format")
}

func TestVersion(t *testing.T) {
	out, err := run(&App{Stderr: io.Discard}, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "lambda-logs ")
}
