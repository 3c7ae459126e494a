package pgrid

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"
)

// Write serializes the header and field to path. Regardless of the input
// header, the output always declares one value per record and a record
// count matching the field length, so downstream consumers can trust both.
//
// Data is written to a temporary file in the target directory and renamed
// into place on success, so a failed write never leaves a truncated grid
// behind.
func Write(path string, hdr *Header, field *Field) error {
	if hdr.RecordKind == RecordIndexed {
		if len(field.Indices) != len(field.Values) {
			return fmt.Errorf("indices length %d does not match values length %d: %w",
				len(field.Indices), len(field.Values), ErrInvalidArgument)
		}
		if hdr.Symmetry == nil {
			return fmt.Errorf("indexed grid without symmetry block: %w", ErrInvalidArgument)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".pgrid-*")
	if err != nil {
		return err
	}
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	var dst io.Writer = tmp
	var gz *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		gz = gzip.NewWriter(tmp)
		dst = gz
	}

	bw := bufio.NewWriter(dst)
	if err := writeGrid(bw, hdr, field); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return err
		}
	}
	if err := tmp.Close(); err != nil {
		tmp = nil
		return err
	}

	name := tmp.Name()
	tmp = nil
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}

func writeGrid(w io.Writer, hdr *Header, field *Field) error {
	var err error
	put := func(v any) {
		if err == nil {
			err = binary.Write(w, binary.LittleEndian, v)
		}
	}

	put(hdr.Version)
	put(encodeTitle(hdr.Title))
	put(int32(hdr.GridKind))
	put(int32(hdr.RecordKind))
	put(int32(1)) // OPP output is a single value per record
	put(hdr.Dimensionality)
	put(hdr.Shape)
	put(int32(len(field.Values))) // authoritative count, not the input header's
	put(hdr.Cell)

	if hdr.RecordKind == RecordIndexed {
		sym := hdr.Symmetry
		put(int32(len(sym.Operators)))
		put(sym.Centrosymmetric)
		put(sym.SubcellCount)
		for i := range sym.Operators {
			put(sym.Operators[i])
		}
		put(sym.Centering)

		for i, v := range field.Values {
			put(field.Indices[i])
			put(float32(v))
		}
	} else {
		values := make([]float32, len(field.Values))
		for i, v := range field.Values {
			values[i] = float32(v)
		}
		put(values)
	}

	return err
}

// encodeTitle packs a title into the fixed 80-byte slot: UTF-8, truncated
// to at most 79 bytes, padded with zero bytes.
func encodeTitle(title string) [TitleFieldSize]byte {
	var slot [TitleFieldSize]byte
	copy(slot[:], TruncateTitle(title))
	return slot
}

// TruncateTitle shortens a title to the largest prefix that fits the
// on-disk title field (79 bytes of UTF-8) without splitting a multi-byte
// code point.
func TruncateTitle(title string) string {
	const max = TitleFieldSize - 1
	if len(title) <= max {
		return title
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(title[cut]) {
		cut--
	}
	return title[:cut]
}
