// Package payload decodes bus message payloads into typed values.
package payload

import "encoding/json"

// Decode fills dst from src. Values already of type T (or *T) are copied;
// bytes and strings are parsed as JSON; anything else (maps from a JSON
// config, foreign structs) is re-encoded and decoded into T.
func Decode[T any](src any, dst *T) error {
	switch v := src.(type) {
	case T:
		*dst = v
		return nil
	case *T:
		if v != nil {
			*dst = *v
			return nil
		}
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	}
	b, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}
