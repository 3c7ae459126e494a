package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"gonum.org/v1/gonum/floats"

	"github.com/dewiedem/calcopp/internal/logger"
	"github.com/dewiedem/calcopp/internal/pgrid"
)

type summary struct {
	Path            string     `json:"path"`
	Version         [4]int32   `json:"version"`
	Title           string     `json:"title"`
	GridKind        string     `json:"grid_kind"`
	RecordKind      string     `json:"record_kind"`
	ValuesPerRecord int32      `json:"values_per_record"`
	Shape           [3]int32   `json:"shape"`
	DeclaredRecords int32      `json:"declared_records"`
	FoundRecords    int        `json:"found_records"`
	Cell            [6]float32 `json:"cell"`
	Operators       int        `json:"symmetry_operators,omitempty"`
	Centrosymmetric *int32     `json:"centrosymmetric,omitempty"`
	MinValue        float64    `json:"min_value"`
	MaxValue        float64    `json:"max_value"`
}

func main() {
	var (
		asJSON      = flag.Bool("json", false, "emit the summary as JSON")
		showRecords = flag.Int("records", 0, "number of records to list (-1 for all)")
	)
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: pgrid_inspect [--json] [--records N] <file.pgrid>")
		os.Exit(2)
	}

	path := flag.Arg(0)
	hdr, field, err := pgrid.Read(path, logger.Default())
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	s := summary{
		Path:            path,
		Version:         hdr.Version,
		Title:           hdr.Title,
		GridKind:        hdr.GridKind.String(),
		RecordKind:      hdr.RecordKind.String(),
		ValuesPerRecord: hdr.ValuesPerRecord,
		Shape:           hdr.Shape,
		DeclaredRecords: hdr.RecordCount,
		FoundRecords:    len(field.Values),
		Cell:            hdr.Cell,
	}
	if sym := hdr.Symmetry; sym != nil {
		s.Operators = len(sym.Operators)
		s.Centrosymmetric = &sym.Centrosymmetric
	}
	if len(field.Values) > 0 {
		s.MinValue = floats.Min(field.Values)
		s.MaxValue = floats.Max(field.Values)
	}

	if *asJSON {
		out, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
		return
	}

	fmt.Printf("File: %s\n", path)
	fmt.Printf("PGRID v%d.%d.%d.%d | %s | %s records | %d value(s)/record\n",
		hdr.Version[0], hdr.Version[1], hdr.Version[2], hdr.Version[3],
		hdr.GridKind, hdr.RecordKind, hdr.ValuesPerRecord)
	fmt.Printf("  %-18s %s\n", "title:", hdr.Title)
	fmt.Printf("  %-18s %d × %d × %d\n", "shape:", hdr.Shape[0], hdr.Shape[1], hdr.Shape[2])
	fmt.Printf("  %-18s %d declared, %d found\n", "records:", hdr.RecordCount, len(field.Values))
	fmt.Printf("  %-18s a=%g b=%g c=%g α=%g β=%g γ=%g\n", "cell:",
		hdr.Cell[0], hdr.Cell[1], hdr.Cell[2], hdr.Cell[3], hdr.Cell[4], hdr.Cell[5])
	if sym := hdr.Symmetry; sym != nil {
		fmt.Printf("  %-18s %d operators, centrosymmetric=%d, %d centerings\n", "symmetry:",
			len(sym.Operators), sym.Centrosymmetric, sym.SubcellCount)
	}
	if len(field.Values) > 0 {
		fmt.Printf("  %-18s [%g, %g]\n", "value range:", s.MinValue, s.MaxValue)
	}

	n := *showRecords
	if n != 0 && len(field.Values) > 0 {
		count := len(field.Values)
		if n < 0 || n > count {
			n = count
		}
		fmt.Println()
		fmt.Println("Records:")
		for i := 0; i < n; i++ {
			if field.Indices != nil {
				fmt.Printf("  %8d  %g\n", field.Indices[i], field.Values[i])
			} else {
				fmt.Printf("  %8d  %g\n", i, field.Values[i])
			}
		}
		if n < count {
			fmt.Printf("  ... (%d more)\n", count-n)
		}
	}
}
