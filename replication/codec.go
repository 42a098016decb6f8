package replication

import (
	"fmt"

	"github.com/hashicorp/go-msgpack/v2/codec"
)

var msgpackHandle codec.MsgpackHandle

// Marshal encodes a field value with msgpack.
func Marshal(v any) ([]byte, error) {
	var out []byte
	if err := codec.NewEncoderBytes(&out, &msgpackHandle).Encode(v); err != nil {
		return nil, fmt.Errorf("encode field value: %w", err)
	}
	return out, nil
}

// Unmarshal decodes a field value produced by Marshal into out.
func Unmarshal(data []byte, out any) error {
	if err := codec.NewDecoderBytes(data, &msgpackHandle).Decode(out); err != nil {
		return fmt.Errorf("decode field value: %w", err)
	}
	return nil
}
