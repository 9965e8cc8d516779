package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/aws/aws-sdk-go-v2/aws"
	cwltypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"gopkg.in/yaml.v3"

	awslogs "tasnim.dev/lambda-logs/internal/aws/logs"
	"tasnim.dev/lambda-logs/internal/tui/theme"
	"tasnim.dev/lambda-logs/internal/utils"
)

type streamView struct {
	Name          string    `json:"name" yaml:"name"`
	CreationTime  time.Time `json:"creationTime" yaml:"creationTime"`
	LastEventTime time.Time `json:"lastEventTime" yaml:"lastEventTime"`
}

type streamsView struct {
	LogGroup string       `json:"logGroup" yaml:"logGroup"`
	Streams  []streamView `json:"streams" yaml:"streams"`
}

type eventView struct {
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Stream    string    `json:"stream,omitempty" yaml:"stream,omitempty"`
	EventID   string    `json:"eventId,omitempty" yaml:"eventId,omitempty"`
	Message   string    `json:"message" yaml:"message"`
}

type eventsView struct {
	LogGroup string      `json:"logGroup" yaml:"logGroup"`
	Events   []eventView `json:"events" yaml:"events"`
}

type cleanView struct {
	LogGroup string `json:"logGroup" yaml:"logGroup"`
	Deleted  int    `json:"deleted" yaml:"deleted"`
}

func (e *env) writeStructured(v any) error {
	switch e.output {
	case "json":
		enc := json.NewEncoder(e.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(e.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported output format %q", e.output)
}

func (e *env) printStreams(logGroup string, streams []awslogs.LogStream) error {
	views := make([]streamView, 0, len(streams))
	for _, s := range streams {
		views = append(views, streamView{Name: s.Name, CreationTime: s.CreationTime, LastEventTime: s.LastEventTime})
	}
	if e.output != "text" {
		return e.writeStructured(streamsView{LogGroup: logGroup, Streams: views})
	}

	if len(views) == 0 {
		lipgloss.Fprintf(e.out, "No log streams in %s\n", logGroup)
		return nil
	}

	rows := make([][]string, 0, len(views))
	for _, s := range views {
		name := s.Name
		if name == "" {
			name = theme.MutedStyle.Render("(unnamed)")
		}
		rows = append(rows, []string{
			utils.TimeOrDash(s.LastEventTime, utils.DateTimeSec),
			utils.TimeOrDash(s.CreationTime, utils.DateTimeSec),
			name,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(theme.MutedStyle).
		Headers("LAST EVENT", "CREATED", "STREAM").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return theme.TitleStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	lipgloss.Fprintln(e.out, theme.TitleStyle.Render(logGroup)+theme.MutedStyle.Render(fmt.Sprintf("  %d stream(s)", len(views))))
	lipgloss.Fprintln(e.out, t.String())
	return nil
}

func filteredEventViews(events []cwltypes.FilteredLogEvent) []eventView {
	views := make([]eventView, 0, len(events))
	for _, ev := range events {
		views = append(views, eventView{
			Timestamp: utils.FromMillis(ev.Timestamp),
			Stream:    aws.ToString(ev.LogStreamName),
			EventID:   aws.ToString(ev.EventId),
			Message:   aws.ToString(ev.Message),
		})
	}
	return views
}

func (e *env) printFilterResult(logGroup, pattern string, res *awslogs.FilterResult) error {
	views := filteredEventViews(res.Events)
	if e.output != "text" {
		return e.writeStructured(eventsView{LogGroup: logGroup, Events: views})
	}

	if len(views) == 0 {
		lipgloss.Fprintf(e.out, "No events matching %q in %s\n", pattern, logGroup)
		return nil
	}

	db := utils.NewDetailBuilder(10, theme.MutedStyle)
	db.Section(logGroup)
	for i, ev := range views {
		if i > 0 {
			db.Blank()
		}
		db.Row("Time", utils.TimeOrDash(ev.Timestamp, utils.DateTimeSec))
		db.RowIf("Stream", ev.Stream)
		db.RowIf("Event ID", ev.EventID)
		db.Row("Message", theme.RenderMessage(utils.SingleLine(ev.Message)))
	}
	lipgloss.Fprint(e.out, db.String())
	return nil
}

func (e *env) printLogEvents(events []awslogs.LogEvent) error {
	if e.output != "text" {
		views := make([]eventView, 0, len(events))
		for _, ev := range events {
			views = append(views, eventView{Timestamp: ev.Timestamp, Message: ev.Message})
		}
		return e.writeStructured(views)
	}

	for _, ev := range events {
		lipgloss.Fprintf(e.out, "%s %s\n",
			theme.MutedStyle.Render(utils.TimeOrDash(ev.Timestamp, utils.DateTimeSec)),
			theme.RenderMessage(utils.SingleLine(ev.Message)),
		)
	}
	return nil
}

// printCleanResult reports how many streams were deleted. A failed run still
// reports its partial count, without the success styling.
func (e *env) printCleanResult(logGroup string, deleted int, runErr error) error {
	if e.output != "text" {
		return e.writeStructured(cleanView{LogGroup: logGroup, Deleted: deleted})
	}

	switch {
	case runErr != nil:
		lipgloss.Fprintf(e.out, "Deleted %d log stream(s) from %s\n", deleted, logGroup)
	case deleted == 0:
		lipgloss.Fprintf(e.out, "No log streams in %s\n", logGroup)
	default:
		lipgloss.Fprintln(e.out, theme.SuccessStyle.Render(fmt.Sprintf("Deleted %d log stream(s) from %s", deleted, logGroup)))
	}
	return nil
}
