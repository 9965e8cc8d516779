package logs

import (
	"fmt"
	"sort"
	"strings"
	"time"

	cwltypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
)

// LogEvent represents a single CloudWatch log event.
type LogEvent struct {
	Timestamp time.Time
	Message   string
}

// LogStream is a log stream inside a function's log group.
// An empty Name is treated as absent.
type LogStream struct {
	Name          string
	CreationTime  time.Time
	LastEventTime time.Time
}

// FilterResult holds the events returned by a filter query.
type FilterResult struct {
	Events []cwltypes.FilteredLogEvent
}

// DeleteOptions controls how DeleteAllLogs fans out.
type DeleteOptions struct {
	// Concurrency caps in-flight DeleteLogStream calls. Values below 1 mean DefaultConcurrency.
	Concurrency int
	// KeepGoing attempts every delete and reports failures as a *CleanupError
	// instead of stopping at the first one.
	KeepGoing bool
}

// DefaultConcurrency is used when DeleteOptions.Concurrency is unset.
const DefaultConcurrency = 4

func (o DeleteOptions) concurrency() int {
	if o.Concurrency < 1 {
		return DefaultConcurrency
	}
	return o.Concurrency
}

// CleanupError reports the streams that could not be deleted.
type CleanupError struct {
	LogGroup string
	Failed   map[string]error
}

func (e *CleanupError) Error() string {
	names := make([]string, 0, len(e.Failed))
	for name := range e.Failed {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("failed to delete %d log stream(s) in %s: %s", len(names), e.LogGroup, strings.Join(names, ", "))
}

func (e *CleanupError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, err := range e.Failed {
		errs = append(errs, err)
	}
	return errs
}
