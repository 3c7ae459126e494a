package opp

import (
	"bufio"
	"fmt"
	"os"

	"github.com/dewiedem/calcopp/internal/pgrid"
)

// vestaFormat is the descriptor version VESTA 3.x expects.
const vestaFormat = "#VESTA_FORMAT_VERSION 3.3.0"

// WriteVesta emits the companion descriptor that lets VESTA open the OPP
// grid directly: a format tag, the title, an import reference to the grid
// file, sections switched off (the high OPP over most of the cell would
// drown them out) and an isosurface at the suggested level.
//
// The descriptor is a best-effort companion artifact; callers report a
// failure but keep the already-written grid.
func WriteVesta(path, title, gridFile string, isovalue float64, kind pgrid.RecordKind) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "%s\n\n", vestaFormat)
	fmt.Fprintf(w, "CRYSTAL\n\n")
	fmt.Fprintf(w, "TITLE\n%s\n\n", title)
	fmt.Fprintf(w, "IMPORT_DENSITY 1\n+1.000000 %s\n\n", gridFile)
	fmt.Fprintf(w, "STYLE\n")
	fmt.Fprintf(w, "SECTS  96  0\n")
	fmt.Fprintf(w, "ISURF\n")
	fmt.Fprintf(w, "  %d  %g  255 255 255 127 255\n", isosurfaceCode(kind), isovalue)
	fmt.Fprintf(w, "  0   0   0   0\n")

	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// isosurfaceCode is the record-kind-dependent display code VESTA pairs
// with the isosurface level.
func isosurfaceCode(kind pgrid.RecordKind) int {
	if kind == pgrid.RecordIndexed {
		return 2
	}
	return 1
}
