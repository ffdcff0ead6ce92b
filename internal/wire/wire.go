package wire

import (
	"bytes"
	"encoding/json"
	"strings"

	"graphseal/internal/domain"
)

// Prefix marks a string value as a packed signed or encrypted payload.
const Prefix = "SEA"

// IsPacked reports whether v is a string of the form "SEA{...}".
func IsPacked(v any) bool {
	s, ok := v.(string)
	return ok && strings.HasPrefix(s, Prefix+"{")
}

// Marshal encodes v as compact JSON. HTML characters are not escaped and no
// trailing newline is written. Object keys come out sorted, so a decoded
// and re-encoded value yields the same bytes.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Pack returns the marker-prefixed JSON form of v.
func Pack(v any) (string, error) {
	b, err := Marshal(v)
	if err != nil {
		return "", err
	}
	return Prefix + string(b), nil
}

// Parse decodes v when it is a string holding JSON, stripping the marker
// first. Strings that are not JSON and non-string values are returned as is.
func Parse(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	t := s
	if IsPacked(t) {
		t = t[len(Prefix):]
	}
	if t == "" {
		return s
	}
	var out any
	if err := json.Unmarshal([]byte(t), &out); err != nil {
		return s
	}
	return out
}

// Normalize converts v into its generic JSON shape (map[string]any, []any,
// float64, string, bool or nil). Strings are returned unchanged.
func Normalize(v any) (any, error) {
	switch v.(type) {
	case nil, string, bool, float64:
		return v, nil
	}
	b, err := Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Decode converts a generic value (or a JSON string) into out.
func Decode(v any, out any) error {
	if s, ok := v.(string); ok {
		if IsPacked(s) {
			s = s[len(Prefix):]
		}
		return json.Unmarshal([]byte(s), out)
	}
	b, err := Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

// Digestible returns the bytes that are hashed for v: a string's own UTF-8
// bytes, otherwise its JSON encoding.
func Digestible(v any) ([]byte, error) {
	if s, ok := v.(string); ok {
		return []byte(s), nil
	}
	return Marshal(v)
}

// SignedEnvelope extracts {m, s} from v, which may be the struct, a generic
// map or a packed string.
func SignedEnvelope(v any) (domain.SignedEnvelope, bool) {
	switch t := Parse(v).(type) {
	case domain.SignedEnvelope:
		return t, t.S != ""
	case *domain.SignedEnvelope:
		if t == nil {
			return domain.SignedEnvelope{}, false
		}
		return *t, t.S != ""
	case map[string]any:
		s, ok := t["s"].(string)
		m, has := t["m"]
		if !ok || s == "" || !has || m == nil {
			return domain.SignedEnvelope{}, false
		}
		return domain.SignedEnvelope{M: m, S: s}, true
	}
	return domain.SignedEnvelope{}, false
}

// EncryptedEnvelope extracts {ct, iv, s} from v.
func EncryptedEnvelope(v any) (domain.EncryptedEnvelope, bool) {
	switch t := Parse(v).(type) {
	case domain.EncryptedEnvelope:
		return t, t.CT != ""
	case *domain.EncryptedEnvelope:
		if t == nil {
			return domain.EncryptedEnvelope{}, false
		}
		return *t, t.CT != ""
	case map[string]any:
		ct, _ := t["ct"].(string)
		iv, _ := t["iv"].(string)
		s, _ := t["s"].(string)
		if ct == "" || iv == "" || s == "" {
			return domain.EncryptedEnvelope{}, false
		}
		return domain.EncryptedEnvelope{CT: ct, IV: iv, S: s}, true
	}
	return domain.EncryptedEnvelope{}, false
}
