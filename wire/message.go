package wire

import (
	"encoding/binary"
	"strconv"
)

// MessageType identifies a request or response kind on the wire.
type MessageType uint32

const (
	MsgQuery        MessageType = 1
	MsgQueryResp    MessageType = 2
	MsgPut          MessageType = 3
	MsgPutResp      MessageType = 4
	MsgGet          MessageType = 5
	MsgGetResp      MessageType = 6
	MsgDelete       MessageType = 7
	MsgDeleteResp   MessageType = 8
	MsgListKeys     MessageType = 9
	MsgListKeysResp MessageType = 10
	MsgError        MessageType = 11
)

func (t MessageType) String() string {
	switch t {
	case MsgQuery:
		return "query"
	case MsgQueryResp:
		return "query_resp"
	case MsgPut:
		return "put"
	case MsgPutResp:
		return "put_resp"
	case MsgGet:
		return "get"
	case MsgGetResp:
		return "get_resp"
	case MsgDelete:
		return "delete"
	case MsgDeleteResp:
		return "delete_resp"
	case MsgListKeys:
		return "list_keys"
	case MsgListKeysResp:
		return "list_keys_resp"
	case MsgError:
		return "error"
	default:
		return "message_type(" + strconv.FormatUint(uint64(t), 10) + ")"
	}
}

// FieldType identifies the TLV encoding of a field value.
type FieldType uint8

const (
	FieldUint8  FieldType = 1
	FieldUint16 FieldType = 2
	FieldUint32 FieldType = 3
	FieldUint64 FieldType = 4
	FieldBool   FieldType = 5
	FieldString FieldType = 6
	FieldBytes  FieldType = 7
)

// Field IDs from the wire contract. Request fields reuse IDs across
// message types; response-only fields get their own ranges.
const (
	FieldTable   uint16 = 1
	FieldTimeout uint16 = 2
	FieldVclock  uint16 = 3

	FieldQueryText   uint16 = 100
	FieldParamNames  uint16 = 101
	FieldParamValues uint16 = 102

	FieldColumns uint16 = 200
	FieldRows    uint16 = 201

	FieldKey uint16 = 300

	FieldKeys   uint16 = 400
	FieldDone   uint16 = 401
	FieldCursor uint16 = 402

	FieldErrCode    uint16 = 500
	FieldErrMessage uint16 = 501
)

// Server error codes carried in the error message ErrCode field.
const (
	CodeInternal      uint32 = 1
	CodeBadRequest    uint32 = 2
	CodeTableNotFound uint32 = 3
	CodeNotFound      uint32 = 4
	CodeTimeout       uint32 = 5
)

// Field is one TLV field of a message payload.
type Field struct {
	ID    uint16
	Type  FieldType
	Value []byte
}

// Message is one decoded protocol message: the frame's message type
// plus its payload fields in wire order.
type Message struct {
	Type   MessageType
	Fields []Field
}

// Field returns the first field with the given ID.
func (m *Message) Field(id uint16) (Field, bool) {
	for _, f := range m.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// SetField replaces the field sharing f's ID, or appends f when absent.
func (m *Message) SetField(f Field) {
	for i := range m.Fields {
		if m.Fields[i].ID == f.ID {
			m.Fields[i] = f
			return
		}
	}
	m.Fields = append(m.Fields, f)
}

// Uint32 returns field id as uint32. Missing or mistyped fields are a
// DecodingError; use Field first when the field is optional.
func (m *Message) Uint32(id uint16) (uint32, error) {
	f, ok := m.Field(id)
	if !ok {
		return 0, decodingErrf("%s: missing field %d", m.Type, id)
	}
	return f.Uint32()
}

// Bool returns field id as bool.
func (m *Message) Bool(id uint16) (bool, error) {
	f, ok := m.Field(id)
	if !ok {
		return false, decodingErrf("%s: missing field %d", m.Type, id)
	}
	return f.Bool()
}

// String returns field id as string.
func (m *Message) String(id uint16) (string, error) {
	f, ok := m.Field(id)
	if !ok {
		return "", decodingErrf("%s: missing field %d", m.Type, id)
	}
	return f.String()
}

// Bytes returns a copy of field id's value bytes.
func (m *Message) Bytes(id uint16) ([]byte, error) {
	f, ok := m.Field(id)
	if !ok {
		return nil, decodingErrf("%s: missing field %d", m.Type, id)
	}
	return f.Bytes()
}

// NewFieldUint8 creates a uint8 TLV field.
func NewFieldUint8(id uint16, v uint8) Field {
	return Field{ID: id, Type: FieldUint8, Value: []byte{v}}
}

// NewFieldUint16 creates a uint16 TLV field.
func NewFieldUint16(id uint16, v uint16) Field {
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, v)
	return Field{ID: id, Type: FieldUint16, Value: buf}
}

// NewFieldUint32 creates a uint32 TLV field.
func NewFieldUint32(id uint16, v uint32) Field {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, v)
	return Field{ID: id, Type: FieldUint32, Value: buf}
}

// NewFieldUint64 creates a uint64 TLV field.
func NewFieldUint64(id uint16, v uint64) Field {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return Field{ID: id, Type: FieldUint64, Value: buf}
}

// NewFieldBool creates a bool TLV field.
func NewFieldBool(id uint16, v bool) Field {
	b := byte(0)
	if v {
		b = 1
	}
	return Field{ID: id, Type: FieldBool, Value: []byte{b}}
}

// NewFieldString creates a string TLV field.
func NewFieldString(id uint16, v string) Field {
	return Field{ID: id, Type: FieldString, Value: []byte(v)}
}

// NewFieldBytes creates a bytes TLV field. The input is copied.
func NewFieldBytes(id uint16, v []byte) Field {
	buf := make([]byte, len(v))
	copy(buf, v)
	return Field{ID: id, Type: FieldBytes, Value: buf}
}

// Uint8 returns the field value as uint8.
func (f Field) Uint8() (uint8, error) {
	if f.Type != FieldUint8 {
		return 0, decodingErrf("field %d: type mismatch: got %d want %d", f.ID, f.Type, FieldUint8)
	}
	if len(f.Value) != 1 {
		return 0, decodingErrf("field %d: invalid u8 length %d", f.ID, len(f.Value))
	}
	return f.Value[0], nil
}

// Uint16 returns the field value as uint16.
func (f Field) Uint16() (uint16, error) {
	if f.Type != FieldUint16 {
		return 0, decodingErrf("field %d: type mismatch: got %d want %d", f.ID, f.Type, FieldUint16)
	}
	if len(f.Value) != 2 {
		return 0, decodingErrf("field %d: invalid u16 length %d", f.ID, len(f.Value))
	}
	return binary.BigEndian.Uint16(f.Value), nil
}

// Uint32 returns the field value as uint32.
func (f Field) Uint32() (uint32, error) {
	if f.Type != FieldUint32 {
		return 0, decodingErrf("field %d: type mismatch: got %d want %d", f.ID, f.Type, FieldUint32)
	}
	if len(f.Value) != 4 {
		return 0, decodingErrf("field %d: invalid u32 length %d", f.ID, len(f.Value))
	}
	return binary.BigEndian.Uint32(f.Value), nil
}

// Uint64 returns the field value as uint64.
func (f Field) Uint64() (uint64, error) {
	if f.Type != FieldUint64 {
		return 0, decodingErrf("field %d: type mismatch: got %d want %d", f.ID, f.Type, FieldUint64)
	}
	if len(f.Value) != 8 {
		return 0, decodingErrf("field %d: invalid u64 length %d", f.ID, len(f.Value))
	}
	return binary.BigEndian.Uint64(f.Value), nil
}

// Bool returns the field value as bool.
func (f Field) Bool() (bool, error) {
	if f.Type != FieldBool {
		return false, decodingErrf("field %d: type mismatch: got %d want %d", f.ID, f.Type, FieldBool)
	}
	if len(f.Value) != 1 {
		return false, decodingErrf("field %d: invalid bool length %d", f.ID, len(f.Value))
	}
	switch f.Value[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, decodingErrf("field %d: invalid bool value %d", f.ID, f.Value[0])
	}
}

// String returns the field value as string.
func (f Field) String() (string, error) {
	if f.Type != FieldString {
		return "", decodingErrf("field %d: type mismatch: got %d want %d", f.ID, f.Type, FieldString)
	}
	return string(f.Value), nil
}

// Bytes returns a copy of the field value bytes.
func (f Field) Bytes() ([]byte, error) {
	if f.Type != FieldBytes {
		return nil, decodingErrf("field %d: type mismatch: got %d want %d", f.ID, f.Type, FieldBytes)
	}
	buf := make([]byte, len(f.Value))
	copy(buf, f.Value)
	return buf, nil
}
