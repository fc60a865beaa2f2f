package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bookkeeper/cli/internal/config"
	"github.com/bookkeeper/cli/internal/ui"
)

// printOutput prints data in the requested format
func printOutput(data interface{}, format config.OutputFormat) error {
	switch format {
	case config.OutputJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	case config.OutputYAML:
		encoder := yaml.NewEncoder(os.Stdout)
		encoder.SetIndent(2)
		if err := encoder.Encode(data); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		return encoder.Close()
	case config.OutputPretty:
		jsonBytes, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		if ui.IsTerminal(os.Stdout) {
			if err := ui.HighlightJSON(os.Stdout, string(jsonBytes)); err != nil {
				return err
			}
			fmt.Println()
			return nil
		}
		fmt.Println(string(jsonBytes))
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}
