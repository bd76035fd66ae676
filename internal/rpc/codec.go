// Package rpc holds the Connect wiring shared by the server and its clients:
// procedure names, message types, and a JSON codec for plain Go structs.
package rpc

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// JSONCodec marshals messages with encoding/json. It registers under the
// name "json", so requests carry Content-Type application/json and any
// endpoint speaking plain JSON can serve them.
type JSONCodec struct{}

var _ connect.Codec = JSONCodec{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (JSONCodec) Unmarshal(data []byte, msg any) error {
	return json.Unmarshal(data, msg)
}

// WithJSON is the codec option every handler and client in this module uses.
func WithJSON() connect.Option {
	return connect.WithCodec(JSONCodec{})
}
