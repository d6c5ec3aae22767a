package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/numsphere/callflow/model"
)

var checkCmd = &cobra.Command{
	Use:   "check <flow.json>...",
	Short: "Validate flow documents",
	Long: `check decodes each flow document and reports configuration issues:
dangling block references, missing gather targets, unknown block types,
unreachable blocks, and cycles. The interpreter degrades gracefully on all
of these at runtime, but callers of a broken flow hear apologies.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := false
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return errors.Wrapf(err, "read %q", path)
			}
			flow, err := model.DecodeFlow(data)
			if err != nil {
				return errors.Wrapf(err, "decode %q", path)
			}

			issues := flow.Validate()
			if len(issues) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d blocks)\n", path, len(flow.Blocks))
				continue
			}
			for _, issue := range issues {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", path, issue)
				if issue.Severity == model.SeverityError {
					failed = true
				}
			}
		}
		if failed {
			return errors.New("validation failed")
		}
		return nil
	},
}
