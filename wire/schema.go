package wire

// FieldSpec names one required field and its TLV type.
type FieldSpec struct {
	ID   uint16
	Type FieldType
}

// required lists the fields every valid message of a type must carry.
// Optional fields are not listed; unknown fields pass through untouched.
var required = map[MessageType][]FieldSpec{
	MsgQuery: {
		{FieldQueryText, FieldString},
	},
	MsgQueryResp: {},
	MsgPut: {
		{FieldTable, FieldString},
		{FieldRows, FieldBytes},
	},
	MsgPutResp: {},
	MsgGet: {
		{FieldTable, FieldString},
		{FieldKey, FieldBytes},
	},
	MsgGetResp: {},
	MsgDelete: {
		{FieldTable, FieldString},
		{FieldKey, FieldBytes},
	},
	MsgDeleteResp: {},
	MsgListKeys: {
		{FieldTable, FieldString},
	},
	MsgListKeysResp: {
		{FieldDone, FieldBool},
	},
	MsgError: {
		{FieldErrCode, FieldUint32},
		{FieldErrMessage, FieldString},
	},
}

// Validate enforces required fields and their types for m. An unknown
// message type is rejected; extra fields are tolerated.
func Validate(m *Message) error {
	reqs, ok := required[m.Type]
	if !ok {
		return decodingErrf("unknown message type %d", uint32(m.Type))
	}
	for _, req := range reqs {
		f, found := m.Field(req.ID)
		if !found {
			return decodingErrf("%s: missing required field %d", m.Type, req.ID)
		}
		if f.Type != req.Type {
			return decodingErrf("%s: field %d type mismatch: got %d want %d", m.Type, req.ID, f.Type, req.Type)
		}
	}
	return nil
}
