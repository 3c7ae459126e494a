package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/dewiedem/calcopp/internal/calcopp"
	"github.com/dewiedem/calcopp/internal/opp"
	"github.com/dewiedem/calcopp/internal/version"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "sd2opp %s: %v\n", version.String(), err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:      "sd2opp",
		Usage:     "Calculate 3D OPP from MEM-reconstructed electron/scattering-length density",
		Version:   version.String(),
		ArgsUsage: "INPUT OUTPUT TEMPERATURE",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "minimum",
				Aliases: []string{"min"},
				Usage:   "set extremal value to minimal negative input density",
			},
			&cli.BoolFlag{
				Name:    "maximum",
				Aliases: []string{"max"},
				Usage:   "set extremal value to maximal positive input density",
			},
			&cli.FloatFlag{
				Name:    "extremum",
				Aliases: []string{"ext"},
				Usage:   "set a custom extremal value in (fm) Å⁻³",
			},
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 3 {
		return fmt.Errorf("expected INPUT OUTPUT TEMPERATURE, got %d argument(s)", cmd.Args().Len())
	}

	temperature, err := strconv.ParseFloat(cmd.Args().Get(2), 64)
	if err != nil {
		return fmt.Errorf("temperature %q is not a decimal", cmd.Args().Get(2))
	}
	if temperature <= 0 {
		return fmt.Errorf("temperature %g is not positive", temperature)
	}

	policy, extremum, err := resolvePolicy(cmd)
	if err != nil {
		return err
	}

	_ = ctx
	return calcopp.Convert(calcopp.Options{
		InputPath:   cmd.Args().Get(0),
		OutputPath:  cmd.Args().Get(1),
		Temperature: temperature,
		Policy:      policy,
		Extremum:    extremum,
		Progress:    os.Stdout,
	})
}

// resolvePolicy enforces that exactly one extremum flag is present.
func resolvePolicy(cmd *cli.Command) (opp.ExtremumPolicy, float64, error) {
	set := 0
	for _, name := range []string{"minimum", "maximum", "extremum"} {
		if cmd.IsSet(name) {
			set++
		}
	}
	if set != 1 {
		return 0, 0, fmt.Errorf("exactly one of --minimum, --maximum or --extremum is required")
	}

	switch {
	case cmd.Bool("minimum"):
		return opp.MinimumPolicy, 0, nil
	case cmd.Bool("maximum"):
		return opp.MaximumPolicy, 0, nil
	default:
		extremum := cmd.Float("extremum")
		if extremum == 0 {
			return 0, 0, fmt.Errorf("custom extremal value must be non-zero")
		}
		return opp.CustomPolicy, extremum, nil
	}
}
