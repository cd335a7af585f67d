package keysetpager

import (
	"bytes"
	"database/sql/driver"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	// ErrMalformedCursor is returned for any token the cursor codec did not produce.
	ErrMalformedCursor = errors.New("malformed cursor")
	// ErrUnsupportedCursorValue is returned when a sort key value has no cursor representation.
	ErrUnsupportedCursorValue = errors.New("unsupported cursor value")
)

var (
	_encoder      = base64.RawURLEncoding.Strict()
	_bytesEncoder = base64.StdEncoding.Strict()
)

// cursorVersion is bumped whenever the token layout changes. Tokens issued
// with another version are rejected as malformed.
const cursorVersion = 1

const (
	keyTypeNull      = "null"
	keyTypeBool      = "bool"
	keyTypeString    = "string"
	keyTypeRawString = "rawstring"
	keyTypeBytes     = "bytes"
	keyTypeInt       = "int"
	keyTypeInt8      = "int8"
	keyTypeInt16     = "int16"
	keyTypeInt32     = "int32"
	keyTypeInt64     = "int64"
	keyTypeUint      = "uint"
	keyTypeUint8     = "uint8"
	keyTypeUint16    = "uint16"
	keyTypeUint32    = "uint32"
	keyTypeUint64    = "uint64"
	keyTypeFloat32   = "float32"
	keyTypeFloat64   = "float64"
	keyTypeTime      = "time"
	keyTypeUUID      = "uuid"
)

type (
	cursorPayload struct {
		Version int         `json:"v"`
		Keys    []cursorKey `json:"k"`
	}

	// cursorKey carries one sort key value as text together with its type,
	// so that decoding restores exactly the value that was encoded.
	cursorKey struct {
		Type  string `json:"t"`
		Value string `json:"v,omitempty"`
	}
)

// EncodeCursor serializes the sort key values of a single row into an opaque,
// URL-safe token. Keys must be given in sort order.
//
// Supported values: nil, bool, string, []byte, every integer width, float32,
// float64, time.Time and uuid.UUID. Other driver.Valuer implementations are
// encoded through their driver value.
func EncodeCursor(keys []any) (string, error) {
	payload := cursorPayload{
		Version: cursorVersion,
		Keys:    make([]cursorKey, 0, len(keys)),
	}

	for i, key := range keys {
		encoded, err := encodeCursorKey(key)
		if err != nil {
			return "", fmt.Errorf("cannot encode cursor key #%d: %w", i, err)
		}

		payload.Keys = append(payload.Keys, encoded)
	}

	jTok, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("cannot marshal cursor value: %w", err)
	}

	return _encoder.EncodeToString(jTok), nil
}

// DecodeCursor parses a token produced by EncodeCursor back into the ordered
// sort key values. Every failure wraps ErrMalformedCursor.
func DecodeCursor(token string) ([]any, error) {
	if len(token) == 0 {
		return nil, fmt.Errorf("%w: empty token", ErrMalformedCursor)
	}

	jsonData, err := _encoder.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode base64 encoded cursor: %v", ErrMalformedCursor, err)
	}

	dec := json.NewDecoder(bytes.NewReader(jsonData))
	dec.DisallowUnknownFields()

	var payload cursorPayload
	if err = dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal json encoded cursor: %v", ErrMalformedCursor, err)
	}

	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after cursor payload", ErrMalformedCursor)
	}

	if payload.Version != cursorVersion {
		return nil, fmt.Errorf("%w: unsupported cursor version %d", ErrMalformedCursor, payload.Version)
	}

	if payload.Keys == nil {
		return nil, fmt.Errorf("%w: missing cursor keys", ErrMalformedCursor)
	}

	keys := make([]any, 0, len(payload.Keys))
	for i, encoded := range payload.Keys {
		key, err := decodeCursorKey(encoded)
		if err != nil {
			return nil, fmt.Errorf("%w: cursor key #%d: %v", ErrMalformedCursor, i, err)
		}

		keys = append(keys, key)
	}

	// Only canonical tokens are accepted: whatever decodes must encode back
	// to the very same token.
	canonical, err := EncodeCursor(keys)
	if err != nil || canonical != token {
		return nil, fmt.Errorf("%w: non-canonical cursor token", ErrMalformedCursor)
	}

	return keys, nil
}

func encodeCursorKey(v any) (cursorKey, error) {
	switch vt := v.(type) {
	case nil:
		return cursorKey{Type: keyTypeNull}, nil
	case bool:
		return cursorKey{Type: keyTypeBool, Value: strconv.FormatBool(vt)}, nil
	case string:
		if !utf8.ValidString(vt) {
			return cursorKey{Type: keyTypeRawString, Value: _bytesEncoder.EncodeToString([]byte(vt))}, nil
		}

		return cursorKey{Type: keyTypeString, Value: vt}, nil
	case []byte:
		return cursorKey{Type: keyTypeBytes, Value: _bytesEncoder.EncodeToString(vt)}, nil
	case int:
		return cursorKey{Type: keyTypeInt, Value: strconv.FormatInt(int64(vt), 10)}, nil
	case int8:
		return cursorKey{Type: keyTypeInt8, Value: strconv.FormatInt(int64(vt), 10)}, nil
	case int16:
		return cursorKey{Type: keyTypeInt16, Value: strconv.FormatInt(int64(vt), 10)}, nil
	case int32:
		return cursorKey{Type: keyTypeInt32, Value: strconv.FormatInt(int64(vt), 10)}, nil
	case int64:
		return cursorKey{Type: keyTypeInt64, Value: strconv.FormatInt(vt, 10)}, nil
	case uint:
		return cursorKey{Type: keyTypeUint, Value: strconv.FormatUint(uint64(vt), 10)}, nil
	case uint8:
		return cursorKey{Type: keyTypeUint8, Value: strconv.FormatUint(uint64(vt), 10)}, nil
	case uint16:
		return cursorKey{Type: keyTypeUint16, Value: strconv.FormatUint(uint64(vt), 10)}, nil
	case uint32:
		return cursorKey{Type: keyTypeUint32, Value: strconv.FormatUint(uint64(vt), 10)}, nil
	case uint64:
		return cursorKey{Type: keyTypeUint64, Value: strconv.FormatUint(vt, 10)}, nil
	case float32:
		return cursorKey{Type: keyTypeFloat32, Value: strconv.FormatFloat(float64(vt), 'g', -1, 32)}, nil
	case float64:
		return cursorKey{Type: keyTypeFloat64, Value: strconv.FormatFloat(vt, 'g', -1, 64)}, nil
	case time.Time:
		text, err := vt.MarshalText()
		if err != nil {
			return cursorKey{}, fmt.Errorf("%w: %v", ErrUnsupportedCursorValue, err)
		}

		return cursorKey{Type: keyTypeTime, Value: string(text)}, nil
	case uuid.UUID:
		return cursorKey{Type: keyTypeUUID, Value: vt.String()}, nil
	case driver.Valuer:
		dv, err := vt.Value()
		if err != nil {
			return cursorKey{}, fmt.Errorf("%w: %v", ErrUnsupportedCursorValue, err)
		}

		if _, nested := dv.(driver.Valuer); nested {
			return cursorKey{}, fmt.Errorf("%w: %T", ErrUnsupportedCursorValue, v)
		}

		return encodeCursorKey(dv)
	default:
		return cursorKey{}, fmt.Errorf("%w: %T", ErrUnsupportedCursorValue, v)
	}
}

func decodeCursorKey(k cursorKey) (any, error) {
	switch k.Type {
	case keyTypeNull:
		if k.Value != "" {
			return nil, fmt.Errorf("null key carries a value")
		}

		return nil, nil
	case keyTypeBool:
		return strconv.ParseBool(k.Value)
	case keyTypeString:
		return k.Value, nil
	case keyTypeRawString:
		b, err := _bytesEncoder.DecodeString(k.Value)
		return string(b), err
	case keyTypeBytes:
		return _bytesEncoder.DecodeString(k.Value)
	case keyTypeInt:
		n, err := strconv.ParseInt(k.Value, 10, strconv.IntSize)
		return int(n), err
	case keyTypeInt8:
		n, err := strconv.ParseInt(k.Value, 10, 8)
		return int8(n), err
	case keyTypeInt16:
		n, err := strconv.ParseInt(k.Value, 10, 16)
		return int16(n), err
	case keyTypeInt32:
		n, err := strconv.ParseInt(k.Value, 10, 32)
		return int32(n), err
	case keyTypeInt64:
		return strconv.ParseInt(k.Value, 10, 64)
	case keyTypeUint:
		n, err := strconv.ParseUint(k.Value, 10, strconv.IntSize)
		return uint(n), err
	case keyTypeUint8:
		n, err := strconv.ParseUint(k.Value, 10, 8)
		return uint8(n), err
	case keyTypeUint16:
		n, err := strconv.ParseUint(k.Value, 10, 16)
		return uint16(n), err
	case keyTypeUint32:
		n, err := strconv.ParseUint(k.Value, 10, 32)
		return uint32(n), err
	case keyTypeUint64:
		return strconv.ParseUint(k.Value, 10, 64)
	case keyTypeFloat32:
		f, err := strconv.ParseFloat(k.Value, 32)
		return float32(f), err
	case keyTypeFloat64:
		return strconv.ParseFloat(k.Value, 64)
	case keyTypeTime:
		var t time.Time
		err := t.UnmarshalText([]byte(k.Value))
		return t, err
	case keyTypeUUID:
		return uuid.Parse(k.Value)
	default:
		return nil, fmt.Errorf("unknown key type '%s'", k.Type)
	}
}
