package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"curaframe/internal/candidate"
	"curaframe/internal/evaluation"
	"curaframe/internal/evaluation/service"
)

// rejectedError makes the process exit non-zero when --fail-on-reject is
// set and any candidate was not accepted.
type rejectedError struct {
	count int
}

func (e *rejectedError) Error() string {
	return fmt.Sprintf("%d candidate(s) not accepted", e.count)
}

func newEvaluateCmd(opts *options) *cobra.Command {
	var (
		bundle       string
		population   string
		strict       bool
		asJSON       bool
		failOnReject bool
	)
	cmd := &cobra.Command{
		Use:   "evaluate FILE...",
		Short: "Evaluate candidate files (YAML or JSON, - for stdin)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.catalog()
			if err != nil {
				return err
			}
			log := opts.logger(cmd)
			engine, err := cat.NewEngine(bundle, evaluation.WithLogger(log))
			if err != nil {
				return err
			}

			reqs := make([]service.Request, 0, len(args))
			for _, path := range args {
				c, err := readCandidate(cmd.InOrStdin(), path)
				if err != nil {
					return err
				}
				reqs = append(reqs, service.Request{Candidate: c, Population: population, Strict: strict})
			}

			svc := service.New(engine, service.WithLogger(log))
			results, err := svc.EvaluateBatch(cmd.Context(), reqs)
			if err != nil {
				return err
			}

			if err := printResults(cmd.OutOrStdout(), results, asJSON); err != nil {
				return err
			}
			if failOnReject {
				notAccepted := 0
				for _, r := range results {
					if !r.IsAccepted() {
						notAccepted++
					}
				}
				if notAccepted > 0 {
					return &rejectedError{count: notAccepted}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&bundle, "bundle", "b", "core_safety", "constraint bundle")
	cmd.Flags().StringVarP(&population, "population", "p", "", "population preset")
	cmd.Flags().BoolVar(&strict, "strict", true, "missing properties make the result indeterminate")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	cmd.Flags().BoolVar(&failOnReject, "fail-on-reject", false, "exit with status 2 unless every candidate is accepted")
	return cmd
}

func readCandidate(stdin io.Reader, path string) (*candidate.Candidate, error) {
	if path == "-" {
		return candidate.Decode(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open candidate: %w", err)
	}
	defer f.Close()
	c, err := candidate.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func printResults(w io.Writer, results []*evaluation.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(results) == 1 {
			return enc.Encode(results[0])
		}
		return enc.Encode(results)
	}
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, r.Summary())
	}
	return nil
}
