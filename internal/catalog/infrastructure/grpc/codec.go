package grpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// The stock service exchanges JSON documents so the messages can reuse
// the domain types directly. Clients select it with the "json" content
// subtype.
const codecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return codecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
