package credstore

import (
	"encoding/base64"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

const encodingZstd = "zstd"

// Encoder and decoder are safe for concurrent use and reused across calls.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("credstore: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("credstore: zstd decoder initialization failed: " + err.Error())
	}
}

// encodeFile returns the base64 payload for data, zstd-compressed when that is smaller.
func encodeFile(data []byte) (payload, encoding string) {
	compressed := zstdEncoder.EncodeAll(data, nil)
	if len(compressed) < len(data) {
		return base64.StdEncoding.EncodeToString(compressed), encodingZstd
	}
	return base64.StdEncoding.EncodeToString(data), ""
}

func decodeFile(payload, encoding string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("base64: %w", err)
	}

	switch encoding {
	case "":
		return raw, nil
	case encodingZstd:
		out, err := zstdDecoder.DecodeAll(raw, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown encoding %q", encoding)
	}
}
