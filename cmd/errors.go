package cmd

import (
	"errors"
	"fmt"
	"sort"

	"github.com/aws/smithy-go"

	awslogs "tasnim.dev/lambda-logs/internal/aws/logs"
	"tasnim.dev/lambda-logs/internal/tui/theme"
)

// FormatError renders a command error for the terminal, adding a hint for
// the AWS error codes users commonly hit.
func FormatError(err error) string {
	msg := theme.ErrorStyle.Render("Error:") + " " + err.Error()

	var cleanupErr *awslogs.CleanupError
	if errors.As(err, &cleanupErr) {
		names := make([]string, 0, len(cleanupErr.Failed))
		for name := range cleanupErr.Failed {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			msg += fmt.Sprintf("\n  %s: %v", name, cleanupErr.Failed[name])
		}
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if hint := errorHint(apiErr.ErrorCode()); hint != "" {
			msg += "\n" + theme.MutedStyle.Render(hint)
		}
	}
	return msg
}

func errorHint(code string) string {
	switch code {
	case "ResourceNotFoundException":
		return "The log group does not exist. Check the function name and region, or the function has never been invoked."
	case "AccessDeniedException", "UnrecognizedClientException":
		return "Check the AWS profile (--profile) and its logs:* permissions."
	case "ThrottlingException":
		return "CloudWatch Logs is throttling requests. Retry with a lower --concurrency."
	case "ExpiredTokenException", "ExpiredToken":
		return "The session token has expired. Refresh your credentials (aws sso login)."
	default:
		return ""
	}
}
