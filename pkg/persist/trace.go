package persist

import (
	"encoding/json"
)

// Trace captures how each layer answered a fallback lookup for a key.
type Trace struct {
	Key string `json:"key"`
	// Value and Source describe the winning layer. Found is false when no
	// layer answered.
	Value  string       `json:"value,omitempty"`
	Source string       `json:"source,omitempty"`
	Found  bool         `json:"found"`
	Layers []Provenance `json:"layers"`
}

// Provenance details what a single layer reported for the traced key.
type Provenance struct {
	Layer string `json:"layer"`
	Value string `json:"value,omitempty"`
	Found bool   `json:"found"`
}

// ToJSON serialises the trace for logging or transport.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON decodes a payload produced by ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
