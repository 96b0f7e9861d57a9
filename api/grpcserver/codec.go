package grpcserver

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// Codec marshals the Matching messages as JSON.
type Codec struct{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (Codec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func init() {
	encoding.RegisterCodec(Codec{})
}
