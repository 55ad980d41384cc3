// Package codec provides the JSON wire codec used by the gRPC services.
package codec

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// Name is the content subtype: requests arrive as application/grpc+json.
const Name = "json"

func init() {
	encoding.RegisterCodec(JSON{})
}

// JSON marshals gRPC messages with encoding/json.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", v, err)
	}
	return data, nil
}

func (JSON) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %T: %w", v, err)
	}
	return nil
}

func (JSON) Name() string {
	return Name
}
