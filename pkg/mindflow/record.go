package mindflow

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Record is an untyped backend record.
type Record map[string]interface{}

// ID returns the record's generated id, or "" if it has none.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// String returns a string field, or "" if missing or not a string.
func (r Record) String(field string) string {
	s, _ := r[field].(string)
	return s
}

// Decode copies the record into out, a pointer to a struct with json tags.
// Embedded structs are flattened the way encoding/json does. Numbers are
// converted to the target field type and RFC 3339 strings to time.Time.
func (r Record) Decode(out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Squash:           true,
		Result:           out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to create record decoder: %w", err)
	}
	if err := decoder.Decode(map[string]interface{}(r)); err != nil {
		return fmt.Errorf("failed to decode record: %w", err)
	}
	return nil
}
