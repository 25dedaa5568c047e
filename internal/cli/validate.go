package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/strongbox/internal/config"
	"github.com/roach88/strongbox/internal/harness"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [scenario files...]",
		Short: "Validate configuration and scenario files",
		Long: `Validate the configuration file against its schema, plus any scenario
files given as arguments, without touching the store.

Examples:
  strongbox validate
  strongbox validate scenarios/*.yaml
  strongbox validate --config prod.cue`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, args []string, cmd *cobra.Command) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	type fileResult struct {
		File  string `json:"file"`
		Valid bool   `json:"valid"`
		Error string `json:"error,omitempty"`
	}
	results := []fileResult{}
	failed := 0

	check := func(file string, err error) {
		r := fileResult{File: file, Valid: err == nil}
		if err != nil {
			r.Error = err.Error()
			failed++
		}
		results = append(results, r)
	}

	_, cfgErr := config.Load(opts.Config)
	check(opts.Config, cfgErr)

	for _, file := range args {
		_, err := harness.LoadScenario(file)
		check(file, err)
	}

	if opts.Format == "json" {
		if err := out.Success(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Valid {
				fmt.Fprintf(cmd.OutOrStdout(), "ok    %s\n", r.File)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "error %s: %s\n", r.File, r.Error)
			}
		}
	}

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d files invalid", failed, len(results)))
	}
	return nil
}
