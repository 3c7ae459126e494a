// Package calcopp wires the grid codec and the OPP transform engine into
// one conversion call, the contract consumed by the CLI front ends.
package calcopp

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dewiedem/calcopp/internal/logger"
	"github.com/dewiedem/calcopp/internal/opp"
	"github.com/dewiedem/calcopp/internal/pgrid"
	"github.com/dewiedem/calcopp/internal/version"
)

// Options parameterizes one density→OPP conversion.
type Options struct {
	InputPath   string
	OutputPath  string
	Temperature float64            // in K, must be positive
	Policy      opp.ExtremumPolicy // reference-density selection
	Extremum    float64            // custom reference density, CustomPolicy only

	// Progress receives the human-readable progress stream. Defaults to
	// io.Discard; interactive callers pass os.Stdout.
	Progress io.Writer

	// Log receives codec warnings. Defaults to a line logger on Progress so
	// warnings appear inline with the progress text.
	Log logger.Logger
}

// Convert runs one conversion end to end: read grid, resolve the reference
// density, invert, retitle, write grid, emit the VESTA companion file.
// Errors from the codec and the engine propagate unmodified; only the
// best-effort VESTA stub is allowed to fail without aborting.
func Convert(opts Options) error {
	out := opts.Progress
	if out == nil {
		out = io.Discard
	}
	log := opts.Log
	if log == nil {
		log = logger.Lines(out)
	}

	if opts.Temperature <= 0 {
		return fmt.Errorf("temperature %g K is not positive: %w", opts.Temperature, opp.ErrInvalidArgument)
	}

	fmt.Fprintf(out, "SD2OPP %s - Calculation of 3D OPP from Scatterer Density (Dysnomia PGRID Format)\n\n", version.String())

	fmt.Fprint(out, "Opening input file and reading data ... ")
	hdr, field, err := pgrid.Read(opts.InputPath, log)
	if err != nil {
		fmt.Fprintln(out, "Failed.")
		return err
	}
	fmt.Fprintln(out, "Done.")
	printSummary(out, hdr, field)

	var extremum float64
	switch opts.Policy {
	case opp.CustomPolicy:
		extremum, err = opp.SelectExtremum(field.Values, opts.Policy, opts.Extremum)
		if err == nil {
			fmt.Fprintf(out, "Extremal density given: %g (fm) Å⁻³\n\n", extremum)
		}
	case opp.MinimumPolicy:
		extremum, err = opp.SelectExtremum(field.Values, opts.Policy, 0)
		if err == nil {
			fmt.Fprintf(out, "Minimum density found: %g (fm) Å⁻³\n\n", extremum)
		}
	default:
		extremum, err = opp.SelectExtremum(field.Values, opts.Policy, 0)
		if err == nil {
			fmt.Fprintf(out, "Maximum density found: %g (fm) Å⁻³\n\n", extremum)
		}
	}
	if err != nil {
		return err
	}

	fmt.Fprint(out, "Calculating OPP ... ")
	potentials, maxOPP, err := opp.Transform(field.Values, opts.Temperature, extremum)
	if err != nil {
		fmt.Fprintln(out, "Failed.")
		return err
	}
	field.Values = potentials
	fmt.Fprintln(out, "Done.")
	fmt.Fprintln(out)

	fmt.Fprint(out, "Opening output file and writing data ... ")
	hdr.Title = pgrid.TruncateTitle("OPP from " + hdr.Title)
	if err := pgrid.Write(opts.OutputPath, hdr, field); err != nil {
		fmt.Fprintln(out, "Failed.")
		return err
	}
	fmt.Fprintln(out, "Done.")
	fmt.Fprintln(out)

	fmt.Fprint(out, "Trying to build VESTA file ... ")
	err = opp.WriteVesta(vestaPath(opts.OutputPath), hdr.Title,
		filepath.Base(opts.OutputPath), maxOPP/2, hdr.RecordKind)
	if err != nil {
		fmt.Fprintln(out, "Failed. Please open in VESTA manually.")
		log.Warn("Could not write VESTA file.", "error", err)
	} else {
		fmt.Fprintln(out, "Done.")
	}

	return nil
}

func printSummary(out io.Writer, hdr *pgrid.Header, field *pgrid.Field) {
	fmt.Fprintf(out, "Title: %s\n", hdr.Title)
	fmt.Fprintf(out, "Grid: %s, %d × %d × %d voxels, %d records (%s)\n",
		hdr.GridKind, hdr.Shape[0], hdr.Shape[1], hdr.Shape[2], len(field.Values), hdr.RecordKind)
	fmt.Fprintf(out, "Cell: a = %g Å, b = %g Å, c = %g Å, α = %g°, β = %g°, γ = %g°\n",
		hdr.Cell[0], hdr.Cell[1], hdr.Cell[2], hdr.Cell[3], hdr.Cell[4], hdr.Cell[5])
	if sym := hdr.Symmetry; sym != nil {
		fmt.Fprintf(out, "Symmetry: %d operators, centrosymmetric = %d, %d centering operations\n",
			len(sym.Operators), sym.Centrosymmetric, sym.SubcellCount)
	}
	fmt.Fprintln(out)
}

// vestaPath derives the companion-descriptor name from the output grid
// path: same base name, .vesta extension, any .gz layer ignored.
func vestaPath(gridPath string) string {
	p := strings.TrimSuffix(gridPath, ".gz")
	return strings.TrimSuffix(p, filepath.Ext(p)) + ".vesta"
}
