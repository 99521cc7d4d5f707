package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// It is the most portable option; use it when tokens must be decoded by
// tooling outside this module. Time, complex numbers, funcs, channels,
// etc may not be supported.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the default codec used by the library.
//
// NOTE: This affects newly-minted tokens. Existing tokens are
// self-describing (they carry the codec name) and are decoded by selecting
// the appropriate codec by name.
var Default Codec = GoJSON{}
