package calcopp

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dewiedem/calcopp/internal/opp"
	"github.com/dewiedem/calcopp/internal/pgrid"
)

func writeInputGrid(t *testing.T, path string, values []float64) {
	t.Helper()
	hdr := &pgrid.Header{
		Version:         pgrid.FormatVersion,
		Title:           "test density",
		GridKind:        pgrid.GridPeriodic,
		RecordKind:      pgrid.RecordRaw,
		ValuesPerRecord: 1,
		Dimensionality:  3,
		Shape:           [3]int32{2, 2, 1},
		Cell:            [6]float32{8, 8, 8, 90, 90, 90},
	}
	if err := pgrid.Write(path, hdr, &pgrid.Field{Values: values}); err != nil {
		t.Fatal(err)
	}
}

func TestConvertEndToEnd(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.pgrid")
	output := filepath.Join(dir, "out_opp.pgrid")
	writeInputGrid(t, input, []float64{4, 2, 1, 0.5})

	var progress bytes.Buffer
	err := Convert(Options{
		InputPath:   input,
		OutputPath:  output,
		Temperature: 300,
		Policy:      opp.MaximumPolicy,
		Progress:    &progress,
	})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	hdr, field, err := pgrid.Read(output, nil)
	if err != nil {
		t.Fatalf("reading output grid: %v", err)
	}
	if hdr.Title != "OPP from test density" {
		t.Errorf("title: got %q", hdr.Title)
	}
	if len(field.Values) != 4 {
		t.Fatalf("got %d values, want 4", len(field.Values))
	}
	// Maximum density is the reference, so its voxel has zero potential and
	// every other voxel a positive one.
	if field.Values[0] != 0 {
		t.Errorf("reference voxel: got %v, want 0", field.Values[0])
	}
	for i, v := range field.Values[1:] {
		if v <= 0 {
			t.Errorf("voxel %d: got %v, want > 0", i+1, v)
		}
	}
	// Each halving of the density adds k_B·T·ln 2 of potential.
	step := opp.BoltzmannEV * 300 * math.Ln2
	for i := 1; i < 4; i++ {
		want := float64(i) * step
		if math.Abs(field.Values[i]-want) > 1e-6 {
			t.Errorf("voxel %d: got %v, want %v", i, field.Values[i], want)
		}
	}

	vesta := filepath.Join(dir, "out_opp.vesta")
	if _, err := os.Stat(vesta); err != nil {
		t.Errorf("VESTA companion file missing: %v", err)
	}

	text := progress.String()
	for _, want := range []string{"SD2OPP", "Maximum density found", "Calculating OPP", "Done."} {
		if !strings.Contains(text, want) {
			t.Errorf("progress stream missing %q:\n%s", want, text)
		}
	}
}

func TestConvertRejectsBadTemperature(t *testing.T) {
	for _, temperature := range []float64{0, -5} {
		err := Convert(Options{
			InputPath:   "ignored.pgrid",
			OutputPath:  "ignored_opp.pgrid",
			Temperature: temperature,
			Policy:      opp.MaximumPolicy,
		})
		if !errors.Is(err, opp.ErrInvalidArgument) {
			t.Errorf("T=%g: got %v, want ErrInvalidArgument", temperature, err)
		}
	}
}

func TestConvertPropagatesReadErrors(t *testing.T) {
	err := Convert(Options{
		InputPath:   filepath.Join(t.TempDir(), "absent.pgrid"),
		OutputPath:  filepath.Join(t.TempDir(), "out.pgrid"),
		Temperature: 300,
		Policy:      opp.MinimumPolicy,
	})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("got %v, want os.ErrNotExist", err)
	}
}

func TestConvertDegenerateField(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.pgrid")
	writeInputGrid(t, input, []float64{0, -1})

	err := Convert(Options{
		InputPath:   input,
		OutputPath:  filepath.Join(dir, "out.pgrid"),
		Temperature: 300,
		Policy:      opp.CustomPolicy,
		Extremum:    5,
	})
	if !errors.Is(err, opp.ErrDegenerateField) {
		t.Fatalf("got %v, want ErrDegenerateField", err)
	}
}

func TestVestaPath(t *testing.T) {
	cases := map[string]string{
		"out_opp.pgrid":    "out_opp.vesta",
		"out_opp.pgrid.gz": "out_opp.vesta",
		"dir/out.ggrid":    "dir/out.vesta",
	}
	for in, want := range cases {
		if got := vestaPath(in); got != want {
			t.Errorf("vestaPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadJobs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	content := `
- input: a.pgrid
  output: a_opp.pgrid
  temperature: 500
  policy: max
- input: b.pgrid
  output: b_opp.pgrid
  temperature: 295.5
  policy: custom
  extremum: -2.5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	jobs, err := LoadJobs(path)
	if err != nil {
		t.Fatalf("LoadJobs failed: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("got %d jobs, want 2", len(jobs))
	}
	if jobs[0].Policy != "max" || jobs[0].Temperature != 500 {
		t.Errorf("job 0 parsed as %+v", jobs[0])
	}
	if jobs[1].Extremum != -2.5 {
		t.Errorf("job 1 extremum: got %v", jobs[1].Extremum)
	}
}

func TestRunJobsEndToEnd(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.pgrid")
	output := filepath.Join(dir, "in_opp.pgrid")
	writeInputGrid(t, input, []float64{3, 1.5})

	jobs := []Job{{
		Input:       input,
		Output:      output,
		Temperature: 300,
		Policy:      "max",
	}}
	if err := RunJobs(jobs, nil, nil); err != nil {
		t.Fatalf("RunJobs failed: %v", err)
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("output grid missing: %v", err)
	}
}

func TestRunJobsUnknownPolicy(t *testing.T) {
	jobs := []Job{{Input: "x", Output: "y", Temperature: 300, Policy: "median"}}
	if err := RunJobs(jobs, nil, nil); !errors.Is(err, opp.ErrInvalidArgument) {
		t.Fatalf("got %v, want ErrInvalidArgument", err)
	}
}
