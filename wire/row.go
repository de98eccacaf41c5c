package wire

import (
	"encoding/binary"
	"math"
)

// Record is an ordered sequence of cells: one row, or one key. Cell
// order is the only identity a record has; there are no field names at
// this layer.
type Record []Cell

// Equal reports whether two records hold the same cells in the same
// order.
func (r Record) Equal(other Record) bool {
	if len(r) != len(other) {
		return false
	}
	for i := range r {
		if !r[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// EncodeRecord serializes one record blob: a u16 cell count followed by
// the cells in order.
func EncodeRecord(rec Record) ([]byte, error) {
	if len(rec) > math.MaxUint16 {
		return nil, encodingErrf("record has %d cells, max %d", len(rec), math.MaxUint16)
	}
	out := make([]byte, 2)
	binary.BigEndian.PutUint16(out, uint16(len(rec)))
	for _, c := range rec {
		var err error
		out, err = appendCell(out, c)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DecodeRecord parses one record blob. Trailing bytes are rejected.
func DecodeRecord(b []byte) (Record, error) {
	rec, off, err := decodeRecordAt(b, 0)
	if err != nil {
		return nil, err
	}
	if off != len(b) {
		return nil, decodingErrf("record blob has %d trailing bytes", len(b)-off)
	}
	return rec, nil
}

func decodeRecordAt(b []byte, off int) (Record, int, error) {
	if len(b)-off < 2 {
		return nil, 0, decodingErrf("short record blob: missing cell count")
	}
	n := int(binary.BigEndian.Uint16(b[off : off+2]))
	off += 2
	rec := make(Record, 0)
	for i := 0; i < n; i++ {
		c, next, err := decodeCell(b, off)
		if err != nil {
			return nil, 0, err
		}
		rec = append(rec, c)
		off = next
	}
	return rec, off, nil
}

// EncodeRows serializes a row-set blob: a u32 row count followed by the
// record blobs in order.
func EncodeRows(rows []Record) ([]byte, error) {
	if uint64(len(rows)) > math.MaxUint32 {
		return nil, encodingErrf("row set has %d rows, max %d", len(rows), uint32(math.MaxUint32))
	}
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, uint32(len(rows)))
	for _, rec := range rows {
		enc, err := EncodeRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, enc...)
	}
	return out, nil
}

// DecodeRows parses a row-set blob. Trailing bytes are rejected.
func DecodeRows(b []byte) ([]Record, error) {
	if len(b) < 4 {
		return nil, decodingErrf("short row-set blob: missing row count")
	}
	n := binary.BigEndian.Uint32(b[0:4])
	off := 4
	rows := make([]Record, 0)
	for i := uint32(0); i < n; i++ {
		rec, next, err := decodeRecordAt(b, off)
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
		off = next
	}
	if off != len(b) {
		return nil, decodingErrf("row-set blob has %d trailing bytes", len(b)-off)
	}
	return rows, nil
}

// EncodeColumns serializes a name-list blob: a u16 count followed by
// u16-length-prefixed UTF-8 names.
func EncodeColumns(names []string) ([]byte, error) {
	if len(names) > math.MaxUint16 {
		return nil, encodingErrf("name list has %d entries, max %d", len(names), math.MaxUint16)
	}
	out := make([]byte, 2)
	binary.BigEndian.PutUint16(out, uint16(len(names)))
	for _, name := range names {
		if len(name) > math.MaxUint16 {
			return nil, encodingErrf("name %q exceeds %d bytes", name[:32], math.MaxUint16)
		}
		var l [2]byte
		binary.BigEndian.PutUint16(l[:], uint16(len(name)))
		out = append(out, l[:]...)
		out = append(out, name...)
	}
	return out, nil
}

// DecodeColumns parses a name-list blob. Trailing bytes are rejected.
func DecodeColumns(b []byte) ([]string, error) {
	if len(b) < 2 {
		return nil, decodingErrf("short name-list blob: missing count")
	}
	n := int(binary.BigEndian.Uint16(b[0:2]))
	off := 2
	names := make([]string, 0)
	for i := 0; i < n; i++ {
		if len(b)-off < 2 {
			return nil, decodingErrf("short name-list blob: missing length for entry %d", i)
		}
		l := int(binary.BigEndian.Uint16(b[off : off+2]))
		off += 2
		if len(b)-off < l {
			return nil, decodingErrf("short name-list blob: entry %d wants %d bytes, have %d", i, l, len(b)-off)
		}
		names = append(names, string(b[off:off+l]))
		off += l
	}
	if off != len(b) {
		return nil, decodingErrf("name-list blob has %d trailing bytes", len(b)-off)
	}
	return names, nil
}
