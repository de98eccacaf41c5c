package wire

import (
	"encoding/binary"
	"math"
)

// fieldHeaderLen is the fixed per-field header: id u16, type u8, length
// u32, big-endian.
const fieldHeaderLen = 7

// EncodePayload serializes fields into a TLV payload in slice order.
func EncodePayload(fields []Field) ([]byte, error) {
	out := make([]byte, 0)
	for _, f := range fields {
		if uint64(len(f.Value)) > math.MaxUint32 {
			return nil, encodingErrf("field %d: value exceeds u32 length", f.ID)
		}
		var hdr [fieldHeaderLen]byte
		binary.BigEndian.PutUint16(hdr[0:2], f.ID)
		hdr[2] = byte(f.Type)
		binary.BigEndian.PutUint32(hdr[3:7], uint32(len(f.Value)))
		out = append(out, hdr[:]...)
		out = append(out, f.Value...)
	}
	return out, nil
}

// DecodePayload parses a TLV payload. Fields with unknown IDs are kept;
// Validate decides what a given message type requires.
func DecodePayload(payload []byte) ([]Field, error) {
	fields := make([]Field, 0)
	i := 0
	for i < len(payload) {
		if len(payload)-i < fieldHeaderLen {
			return nil, decodingErrf("short field header at offset %d", i)
		}
		id := binary.BigEndian.Uint16(payload[i : i+2])
		typ := FieldType(payload[i+2])
		l := binary.BigEndian.Uint32(payload[i+3 : i+7])
		i += fieldHeaderLen
		if uint64(len(payload)-i) < uint64(l) {
			return nil, decodingErrf("field %d: short value: want %d bytes, have %d", id, l, len(payload)-i)
		}
		val := make([]byte, l)
		copy(val, payload[i:i+int(l)])
		i += int(l)
		fields = append(fields, Field{ID: id, Type: typ, Value: val})
	}
	return fields, nil
}
