// Package pgrid reads and writes Dysnomia periodic-grid (PGRID) files, the
// binary volumetric format produced by maximum-entropy density
// reconstruction and consumed by VESTA.
//
// # File layout
//
// All integers and floats are little-endian; the format itself carries no
// endianness tag, and the reference producer/consumer ecosystem runs on
// little-endian platforms.
//
//	[version 4×int32][title 80 bytes][grid_kind int32][record_kind int32]
//	[values_per_record int32][dimensionality int32][grid_shape 3×int32]
//	[record_count int32][cell_parameters 6×float32]
//
// When record_kind is INDEXED, a symmetry block follows:
//
//	[operator_count int32][centrosymmetric int32][subcell_count int32]
//	[operators operator_count×12×int32][centering 3×int32]
//
// Records close the file: each is an optional int32 voxel index (INDEXED
// only) followed by one or two float32 values. DUAL records carry a
// positive and a negative component that are summed into one density value
// on read.
//
// Files whose name ends in ".gz" are read and written gzip-compressed.
package pgrid

import "errors"

// FormatVersion is the quadripartite version this codec is written
// against. Other versions are read best-effort with a warning.
var FormatVersion = [4]int32{3, 0, 0, 0}

// TitleFieldSize is the fixed on-disk size of the title slot; the title
// payload is at most TitleFieldSize-1 bytes, the rest is zero padding.
const TitleFieldSize = 80

var (
	// ErrUnsupportedFormat reports a record kind or values-per-record
	// outside the known enums.
	ErrUnsupportedFormat = errors.New("unsupported grid file layout")

	// ErrUnsupportedDimensionality reports a unit cell that is not
	// three-dimensional.
	ErrUnsupportedDimensionality = errors.New("unit cell must be three-dimensional")

	// ErrInvalidArgument reports malformed caller input, such as an
	// indices/values length mismatch on write.
	ErrInvalidArgument = errors.New("invalid argument")
)

// GridKind distinguishes general from periodic grids.
type GridKind int32

const (
	GridGeneral  GridKind = 0
	GridPeriodic GridKind = 1
)

func (k GridKind) String() string {
	switch k {
	case GridGeneral:
		return "general"
	case GridPeriodic:
		return "periodic"
	default:
		return "unknown"
	}
}

// RecordKind distinguishes raw raster records from indexed
// (symmetry-reduced) records.
type RecordKind int32

const (
	RecordRaw     RecordKind = 0
	RecordIndexed RecordKind = 1
)

func (k RecordKind) String() string {
	switch k {
	case RecordRaw:
		return "raw"
	case RecordIndexed:
		return "indexed"
	default:
		return "unknown"
	}
}

// SymmetryBlock holds the symmetry metadata stored with indexed grids.
// Operators are 3×3 rotation matrices followed by a translation vector,
// flattened to 12 integers each.
type SymmetryBlock struct {
	Centrosymmetric int32
	SubcellCount    int32
	Operators       [][12]int32
	Centering       [3]int32
}

// Header describes the physical and file-layout metadata of a grid.
// Symmetry is non-nil exactly when RecordKind is RecordIndexed.
type Header struct {
	Version         [4]int32
	Title           string
	GridKind        GridKind
	RecordKind      RecordKind
	ValuesPerRecord int32
	Dimensionality  int32
	Shape           [3]int32
	RecordCount     int32
	Cell            [6]float32 // a, b, c in Å; α, β, γ in degrees
	Symmetry        *SymmetryBlock
}

// Voxels returns the full-cell voxel count implied by the grid shape.
func (h *Header) Voxels() int {
	return int(h.Shape[0]) * int(h.Shape[1]) * int(h.Shape[2])
}

// Field holds the per-record data: Indices is nil for raw grids and
// parallel to Values for indexed ones. Values are densities on input and
// potentials on output.
type Field struct {
	Indices []int32
	Values  []float64
}
