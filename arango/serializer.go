package arango

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// Serializer converts request/response bodies to and from their wire representation.
type Serializer interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSONSerializer is the default serializer.
type JSONSerializer struct {
	api jsoniter.API
}

var _ Serializer = (*JSONSerializer)(nil)

// NewJSONSerializer returns a serializer which behaves like 'encoding/json'.
func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{api: jsoniter.ConfigCompatibleWithStandardLibrary}
}

func (j *JSONSerializer) Marshal(v any) ([]byte, error) {
	return j.api.Marshal(v)
}

func (j *JSONSerializer) Unmarshal(data []byte, v any) error {
	return j.api.Unmarshal(data, v)
}

// encodeBody returns the wire form of the given request data, strings, byte slices and raw bodies are sent as is.
func encodeBody(serializer Serializer, data any) ([]byte, error) {
	switch v := data.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case RawBody:
		return v, nil
	case jsoniter.RawMessage:
		return v, nil
	}

	body, err := serializer.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize request body: %w", err)
	}

	return body, nil
}
