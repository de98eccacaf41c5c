package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"time"
)

// CellType identifies the scalar variant held by a Cell. The numeric
// values are the wire tags.
type CellType uint8

const (
	CellNull      CellType = 0
	CellInt64     CellType = 1
	CellDouble    CellType = 2
	CellBool      CellType = 3
	CellTimestamp CellType = 4
	CellText      CellType = 5
	CellBlob      CellType = 6
)

func (t CellType) String() string {
	switch t {
	case CellNull:
		return "null"
	case CellInt64:
		return "int64"
	case CellDouble:
		return "double"
	case CellBool:
		return "bool"
	case CellTimestamp:
		return "timestamp"
	case CellText:
		return "text"
	case CellBlob:
		return "blob"
	default:
		return "celltype(" + strconv.Itoa(int(t)) + ")"
	}
}

// Cell is one typed scalar inside a record. The zero value is the null
// cell. Cells are immutable after construction.
type Cell struct {
	typ CellType
	num uint64
	str string
	raw []byte
}

// Null returns the null cell.
func Null() Cell {
	return Cell{}
}

// Int64 returns a signed integer cell.
func Int64(v int64) Cell {
	return Cell{typ: CellInt64, num: uint64(v)}
}

// Double returns a float cell.
func Double(v float64) Cell {
	return Cell{typ: CellDouble, num: math.Float64bits(v)}
}

// Bool returns a boolean cell.
func Bool(v bool) Cell {
	n := uint64(0)
	if v {
		n = 1
	}
	return Cell{typ: CellBool, num: n}
}

// Timestamp returns a timestamp cell. Precision beyond one millisecond
// is discarded; the instant is preserved regardless of t's location.
func Timestamp(t time.Time) Cell {
	return Cell{typ: CellTimestamp, num: uint64(t.UnixMilli())}
}

// Text returns a UTF-8 string cell.
func Text(s string) Cell {
	return Cell{typ: CellText, str: s}
}

// Blob returns an opaque bytes cell. The input is copied.
func Blob(b []byte) Cell {
	buf := make([]byte, len(b))
	copy(buf, b)
	return Cell{typ: CellBlob, raw: buf}
}

// NewCell coerces a Go value into a cell. Signed and unsigned integer
// types map to int64, float32 and float64 to double, string to text,
// []byte to blob, time.Time to timestamp, and nil to null. A uint or
// uint64 above math.MaxInt64, or any other type, is an EncodingError.
func NewCell(v any) (Cell, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Cell:
		return x, nil
	case bool:
		return Bool(x), nil
	case int:
		return Int64(int64(x)), nil
	case int8:
		return Int64(int64(x)), nil
	case int16:
		return Int64(int64(x)), nil
	case int32:
		return Int64(int64(x)), nil
	case int64:
		return Int64(x), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return Cell{}, encodingErrf("uint value %d overflows int64", x)
		}
		return Int64(int64(x)), nil
	case uint8:
		return Int64(int64(x)), nil
	case uint16:
		return Int64(int64(x)), nil
	case uint32:
		return Int64(int64(x)), nil
	case uint64:
		if x > math.MaxInt64 {
			return Cell{}, encodingErrf("uint64 value %d overflows int64", x)
		}
		return Int64(int64(x)), nil
	case float32:
		return Double(float64(x)), nil
	case float64:
		return Double(x), nil
	case string:
		return Text(x), nil
	case []byte:
		return Blob(x), nil
	case time.Time:
		return Timestamp(x), nil
	default:
		return Cell{}, encodingErrf("unsupported cell value type %T", v)
	}
}

// Type returns the cell's variant tag.
func (c Cell) Type() CellType {
	return c.typ
}

// IsNull reports whether the cell is null.
func (c Cell) IsNull() bool {
	return c.typ == CellNull
}

// Int64 returns the cell value as int64.
func (c Cell) Int64() (int64, error) {
	if c.typ != CellInt64 {
		return 0, ErrCellTypeMismatch
	}
	return int64(c.num), nil
}

// Double returns the cell value as float64.
func (c Cell) Double() (float64, error) {
	if c.typ != CellDouble {
		return 0, ErrCellTypeMismatch
	}
	return math.Float64frombits(c.num), nil
}

// Bool returns the cell value as bool.
func (c Cell) Bool() (bool, error) {
	if c.typ != CellBool {
		return false, ErrCellTypeMismatch
	}
	return c.num != 0, nil
}

// Timestamp returns the cell value as a UTC time with millisecond
// precision.
func (c Cell) Timestamp() (time.Time, error) {
	if c.typ != CellTimestamp {
		return time.Time{}, ErrCellTypeMismatch
	}
	return time.UnixMilli(int64(c.num)).UTC(), nil
}

// Text returns the cell value as string.
func (c Cell) Text() (string, error) {
	if c.typ != CellText {
		return "", ErrCellTypeMismatch
	}
	return c.str, nil
}

// Blob returns a copy of the cell value bytes.
func (c Cell) Blob() ([]byte, error) {
	if c.typ != CellBlob {
		return nil, ErrCellTypeMismatch
	}
	buf := make([]byte, len(c.raw))
	copy(buf, c.raw)
	return buf, nil
}

// Value returns the cell as a plain Go value: nil, int64, float64,
// bool, time.Time, string, or []byte.
func (c Cell) Value() any {
	switch c.typ {
	case CellInt64:
		return int64(c.num)
	case CellDouble:
		return math.Float64frombits(c.num)
	case CellBool:
		return c.num != 0
	case CellTimestamp:
		return time.UnixMilli(int64(c.num)).UTC()
	case CellText:
		return c.str
	case CellBlob:
		buf := make([]byte, len(c.raw))
		copy(buf, c.raw)
		return buf
	default:
		return nil
	}
}

// Equal reports whether two cells hold the same variant and value.
func (c Cell) Equal(other Cell) bool {
	if c.typ != other.typ {
		return false
	}
	switch c.typ {
	case CellText:
		return c.str == other.str
	case CellBlob:
		return bytes.Equal(c.raw, other.raw)
	default:
		return c.num == other.num
	}
}

func (c Cell) String() string {
	switch c.typ {
	case CellNull:
		return "null"
	case CellInt64:
		return fmt.Sprintf("int64(%d)", int64(c.num))
	case CellDouble:
		return fmt.Sprintf("double(%g)", math.Float64frombits(c.num))
	case CellBool:
		return fmt.Sprintf("bool(%t)", c.num != 0)
	case CellTimestamp:
		return fmt.Sprintf("timestamp(%s)", time.UnixMilli(int64(c.num)).UTC().Format(time.RFC3339Nano))
	case CellText:
		return fmt.Sprintf("text(%q)", c.str)
	case CellBlob:
		return fmt.Sprintf("blob(%d bytes)", len(c.raw))
	default:
		return fmt.Sprintf("cell(%d)", c.typ)
	}
}

// appendCell appends the wire form of c to dst.
func appendCell(dst []byte, c Cell) ([]byte, error) {
	dst = append(dst, byte(c.typ))
	switch c.typ {
	case CellNull:
		return dst, nil
	case CellInt64, CellDouble, CellTimestamp:
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], c.num)
		return append(dst, buf[:]...), nil
	case CellBool:
		b := byte(0)
		if c.num != 0 {
			b = 1
		}
		return append(dst, b), nil
	case CellText:
		if uint64(len(c.str)) > math.MaxUint32 {
			return nil, encodingErrf("text cell exceeds %d bytes", uint32(math.MaxUint32))
		}
		var l [4]byte
		binary.BigEndian.PutUint32(l[:], uint32(len(c.str)))
		dst = append(dst, l[:]...)
		return append(dst, c.str...), nil
	case CellBlob:
		if uint64(len(c.raw)) > math.MaxUint32 {
			return nil, encodingErrf("blob cell exceeds %d bytes", uint32(math.MaxUint32))
		}
		var l [4]byte
		binary.BigEndian.PutUint32(l[:], uint32(len(c.raw)))
		dst = append(dst, l[:]...)
		return append(dst, c.raw...), nil
	default:
		return nil, encodingErrf("invalid cell type %d", c.typ)
	}
}

// decodeCell parses one cell starting at off and returns the offset
// just past it.
func decodeCell(b []byte, off int) (Cell, int, error) {
	if off >= len(b) {
		return Cell{}, 0, decodingErrf("short cell: missing type tag")
	}
	tag := CellType(b[off])
	off++
	switch tag {
	case CellNull:
		return Cell{}, off, nil
	case CellInt64, CellDouble, CellTimestamp:
		if len(b)-off < 8 {
			return Cell{}, 0, decodingErrf("short %s cell: want 8 bytes, have %d", tag, len(b)-off)
		}
		num := binary.BigEndian.Uint64(b[off : off+8])
		return Cell{typ: tag, num: num}, off + 8, nil
	case CellBool:
		if len(b)-off < 1 {
			return Cell{}, 0, decodingErrf("short bool cell")
		}
		switch b[off] {
		case 0:
			return Cell{typ: CellBool, num: 0}, off + 1, nil
		case 1:
			return Cell{typ: CellBool, num: 1}, off + 1, nil
		default:
			return Cell{}, 0, decodingErrf("invalid bool cell value %d", b[off])
		}
	case CellText:
		if len(b)-off < 4 {
			return Cell{}, 0, decodingErrf("short text cell: missing length")
		}
		l := binary.BigEndian.Uint32(b[off : off+4])
		off += 4
		if uint64(len(b)-off) < uint64(l) {
			return Cell{}, 0, decodingErrf("short text cell: want %d bytes, have %d", l, len(b)-off)
		}
		s := string(b[off : off+int(l)])
		return Cell{typ: CellText, str: s}, off + int(l), nil
	case CellBlob:
		if len(b)-off < 4 {
			return Cell{}, 0, decodingErrf("short blob cell: missing length")
		}
		l := binary.BigEndian.Uint32(b[off : off+4])
		off += 4
		if uint64(len(b)-off) < uint64(l) {
			return Cell{}, 0, decodingErrf("short blob cell: want %d bytes, have %d", l, len(b)-off)
		}
		buf := make([]byte, l)
		copy(buf, b[off:off+int(l)])
		return Cell{typ: CellBlob, raw: buf}, off + int(l), nil
	default:
		return Cell{}, 0, decodingErrf("unknown cell type tag %d", uint8(tag))
	}
}
