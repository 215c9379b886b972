package recovery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Redact replaces the values of sensitive keys (matched
// case-insensitively at any depth) with replacement. The rewrite
// streams tokens from the source bytes, so key order and number
// representations survive. With no fields configured the input is
// returned as-is.
func Redact(raw json.RawMessage, fields []string, replacement string) (json.RawMessage, error) {
	set := toLowerSet(fields)
	if len(set) == 0 {
		return raw, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var buf bytes.Buffer
	if err := redactValue(dec, &buf, set, replacement); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toLowerSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, v := range items {
		v = strings.TrimSpace(strings.ToLower(v))
		if v == "" {
			continue
		}
		set[v] = struct{}{}
	}
	return set
}

func redactValue(dec *json.Decoder, buf *bytes.Buffer, set map[string]struct{}, replacement string) error {
	t, err := dec.Token()
	if err != nil {
		return err
	}
	switch v := t.(type) {
	case json.Delim:
		switch v {
		case '{':
			buf.WriteByte('{')
			first := true
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return err
				}
				key, ok := kt.(string)
				if !ok {
					return fmt.Errorf("unexpected object key token %v", kt)
				}
				if !first {
					buf.WriteByte(',')
				}
				first = false
				buf.Write(marshalString(key))
				buf.WriteByte(':')
				if _, hit := set[strings.ToLower(key)]; hit {
					if err := skipValue(dec); err != nil {
						return err
					}
					buf.Write(marshalString(replacement))
					continue
				}
				if err := redactValue(dec, buf, set, replacement); err != nil {
					return err
				}
			}
			if _, err := dec.Token(); err != nil {
				return err
			}
			buf.WriteByte('}')
		case '[':
			buf.WriteByte('[')
			first := true
			for dec.More() {
				if !first {
					buf.WriteByte(',')
				}
				first = false
				if err := redactValue(dec, buf, set, replacement); err != nil {
					return err
				}
			}
			if _, err := dec.Token(); err != nil {
				return err
			}
			buf.WriteByte(']')
		}
	case json.Number:
		buf.WriteString(v.String())
	case string:
		buf.Write(marshalString(v))
	case bool:
		if v {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case nil:
		buf.WriteString("null")
	}
	return nil
}

func skipValue(dec *json.Decoder) error {
	t, err := dec.Token()
	if err != nil {
		return err
	}
	d, ok := t.(json.Delim)
	if !ok || (d != '{' && d != '[') {
		return nil
	}
	for dec.More() {
		if d == '{' {
			if _, err := dec.Token(); err != nil {
				return err
			}
		}
		if err := skipValue(dec); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}
