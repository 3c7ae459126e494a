package pgrid

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/dewiedem/calcopp/internal/logger"
)

// Read parses the grid file at path into a header and its voxel field.
//
// Unknown format versions and a record tally that differs from the header's
// declared count are downgraded to warnings on log; the parse continues
// with the records actually present. Unknown record kinds, values-per-record
// counts and non-3D cells are fatal.
func Read(path string, log logger.Logger) (*Header, *Field, error) {
	if log == nil {
		log = logger.Discard()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var src io.Reader = f
	size := int64(-1)
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, nil, fmt.Errorf("open gzip stream: %w", err)
		}
		defer gz.Close()
		src = gz
	} else if st, err := f.Stat(); err == nil {
		size = st.Size()
	}

	r := newReader(src, size)

	hdr := &Header{}
	version, err := r.readI32s(4)
	if err != nil {
		return nil, nil, fmt.Errorf("read version: %w", err)
	}
	copy(hdr.Version[:], version)
	if hdr.Version != FormatVersion {
		log.Warn("Input file version not supported. Trying to read anyway ...",
			"version", fmt.Sprintf("%d.%d.%d.%d", version[0], version[1], version[2], version[3]))
	}

	titleRaw, err := r.readN(TitleFieldSize)
	if err != nil {
		return nil, nil, fmt.Errorf("read title: %w", err)
	}
	hdr.Title = decodeTitle(titleRaw)

	gtype, err := r.readI32()
	if err != nil {
		return nil, nil, fmt.Errorf("read grid kind: %w", err)
	}
	hdr.GridKind = GridKind(gtype)

	ftype, err := r.readI32()
	if err != nil {
		return nil, nil, fmt.Errorf("read record kind: %w", err)
	}
	hdr.RecordKind = RecordKind(ftype)
	if hdr.RecordKind != RecordRaw && hdr.RecordKind != RecordIndexed {
		return nil, nil, fmt.Errorf("record kind %d: %w", ftype, ErrUnsupportedFormat)
	}

	nval, err := r.readI32()
	if err != nil {
		return nil, nil, fmt.Errorf("read values per record: %w", err)
	}
	hdr.ValuesPerRecord = nval
	if nval != 1 && nval != 2 {
		return nil, nil, fmt.Errorf("%d values per record: %w", nval, ErrUnsupportedFormat)
	}

	ndim, err := r.readI32()
	if err != nil {
		return nil, nil, fmt.Errorf("read dimensionality: %w", err)
	}
	hdr.Dimensionality = ndim
	if ndim != 3 {
		return nil, nil, fmt.Errorf("dimensionality %d: %w", ndim, ErrUnsupportedDimensionality)
	}

	shape, err := r.readI32s(3)
	if err != nil {
		return nil, nil, fmt.Errorf("read grid shape: %w", err)
	}
	copy(hdr.Shape[:], shape)

	hdr.RecordCount, err = r.readI32()
	if err != nil {
		return nil, nil, fmt.Errorf("read record count: %w", err)
	}

	cell, err := r.readF32s(6)
	if err != nil {
		return nil, nil, fmt.Errorf("read cell parameters: %w", err)
	}
	copy(hdr.Cell[:], cell)

	if hdr.RecordKind == RecordIndexed {
		hdr.Symmetry, err = readSymmetry(r)
		if err != nil {
			return nil, nil, err
		}
	}

	field, err := readRecords(r, hdr)
	if err != nil {
		return nil, nil, err
	}
	if len(field.Values) != int(hdr.RecordCount) {
		log.Warn("Number of found records differs from statement in header. Continuing with found data ...",
			"declared", hdr.RecordCount, "found", len(field.Values))
	}

	return hdr, field, nil
}

func readSymmetry(r *reader) (*SymmetryBlock, error) {
	npos, err := r.readI32()
	if err != nil {
		return nil, fmt.Errorf("read operator count: %w", err)
	}
	if npos < 0 {
		return nil, fmt.Errorf("operator count %d: %w", npos, ErrUnsupportedFormat)
	}

	sym := &SymmetryBlock{}
	sym.Centrosymmetric, err = r.readI32()
	if err != nil {
		return nil, fmt.Errorf("read centrosymmetric flag: %w", err)
	}
	sym.SubcellCount, err = r.readI32()
	if err != nil {
		return nil, fmt.Errorf("read subcell count: %w", err)
	}

	sym.Operators = make([][12]int32, npos)
	for i := range sym.Operators {
		op, err := r.readI32s(12)
		if err != nil {
			return nil, fmt.Errorf("read symmetry operator %d: %w", i, err)
		}
		copy(sym.Operators[i][:], op)
	}

	centering, err := r.readI32s(3)
	if err != nil {
		return nil, fmt.Errorf("read centering vector: %w", err)
	}
	copy(sym.Centering[:], centering)

	return sym, nil
}

// readRecords consumes whole records until the data runs out. The declared
// record count is deliberately not trusted; a partial trailing record is
// dropped.
func readRecords(r *reader, hdr *Header) (*Field, error) {
	indexed := hdr.RecordKind == RecordIndexed
	recSize := 4 * int(hdr.ValuesPerRecord)
	if indexed {
		recSize += 4
	}

	field := &Field{}
	if n := int(hdr.RecordCount); n > 0 {
		field.Values = make([]float64, 0, n)
		if indexed {
			field.Indices = make([]int32, 0, n)
		}
	} else if indexed {
		field.Indices = []int32{}
	}
	if field.Values == nil {
		field.Values = []float64{}
	}

	for {
		buf, err := r.readN(recSize)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return field, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read record %d: %w", len(field.Values), err)
		}

		off := 0
		if indexed {
			field.Indices = append(field.Indices, int32(binary.LittleEndian.Uint32(buf)))
			off = 4
		}
		value := float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])))
		if hdr.ValuesPerRecord == 2 {
			// Positive and negative components combine into one density.
			neg := math.Float32frombits(binary.LittleEndian.Uint32(buf[off+4:]))
			value += float64(neg)
		}
		field.Values = append(field.Values, value)
	}
}

// decodeTitle interprets the fixed 80-byte title slot: the payload runs up
// to the first zero byte and decodes as UTF-8 with replacement of invalid
// sequences.
func decodeTitle(raw []byte) string {
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	return strings.ToValidUTF8(string(raw), "�")
}
