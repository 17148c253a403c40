package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newClassifyCmd(deps Deps) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "classify <description>",
		Short: "Classify one incident description",
		Long: `Classify one incident description

Sends the text to the configured analyzer once and prints the result as JSON:
riskLevel, summary and exactly 3 recommendations. Pass "-" to read the
description from stdin.`,
		Example: `  medguardctl classify "Visitor threatened the night nurse at the ward entrance"
  echo "Patient threw a chair in triage" | medguardctl classify -`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			description, err := readInput(cmd, args)
			if err != nil {
				return fmt.Errorf("read description: %w", err)
			}
			description = strings.TrimSpace(description)
			if description == "" {
				return errors.New("description must not be empty")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			analyzer, provider, err := deps.Analyzer(ctx)
			if err != nil {
				return err
			}
			analysis, err := analyzer.Analyze(ctx, description)
			if err != nil {
				return fmt.Errorf("classify with %s: %w", provider, err)
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(analysis)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Give up after this long")
	return cmd
}
