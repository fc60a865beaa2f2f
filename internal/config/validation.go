package config

import "fmt"

// OutputFormat selects how command results are printed
type OutputFormat string

const (
	OutputPretty OutputFormat = "pretty"
	OutputJSON   OutputFormat = "json"
	OutputYAML   OutputFormat = "yaml"
	OutputText   OutputFormat = "text"
)

// ValidateOutput checks the --output flag. Empty means the command's default.
func ValidateOutput(format string, allowed ...OutputFormat) (OutputFormat, error) {
	if format == "" {
		if len(allowed) > 0 {
			return allowed[0], nil
		}
		return OutputPretty, nil
	}
	for _, f := range allowed {
		if OutputFormat(format) == f {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported output format %q: must be one of %v", format, allowed)
}
