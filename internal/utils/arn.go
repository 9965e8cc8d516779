package utils

import "strings"

// FunctionName reduces a Lambda function ARN to the bare function name.
// Qualified ARNs (version or alias suffix) drop the qualifier.
// Anything that is not a Lambda function ARN is returned unchanged.
func FunctionName(nameOrARN string) string {
	parts := strings.Split(nameOrARN, ":")
	if len(parts) < 7 || parts[0] != "arn" || parts[2] != "lambda" || parts[5] != "function" {
		return nameOrARN
	}
	return parts[6]
}

// RegionFromARN extracts the region segment of an ARN, or "" if s is not an ARN.
func RegionFromARN(s string) string {
	parts := strings.Split(s, ":")
	if len(parts) < 6 || parts[0] != "arn" {
		return ""
	}
	return parts[3]
}
