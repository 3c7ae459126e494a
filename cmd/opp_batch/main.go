package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/dewiedem/calcopp/internal/calcopp"
	"github.com/dewiedem/calcopp/internal/version"
)

func main() {
	app := &cli.Command{
		Name:      "opp_batch",
		Usage:     "Run a YAML batch of density→OPP conversions",
		Version:   version.String(),
		ArgsUsage: "JOBFILE",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one job file, got %d argument(s)", cmd.Args().Len())
			}
			jobs, err := calcopp.LoadJobs(cmd.Args().First())
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				return fmt.Errorf("job file %s contains no jobs", cmd.Args().First())
			}
			_ = ctx
			return calcopp.RunJobs(jobs, os.Stdout, nil)
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "opp_batch %s: %v\n", version.String(), err)
		os.Exit(1)
	}
}
