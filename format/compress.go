package format

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/wippyai/codablejson/errors"
)

// Compression names a byte-level compression applied to marshaled wire
// data for storage or transfer. It is not part of the wire grammar.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionZstd
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return "unknown"
	}
}

// ParseCompression parses a compression name.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, errors.NotFound(errors.PhaseFormat, "compression", name)
	}
}

// Frame magic numbers, little-endian on disk.
var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// zstd.Encoder and zstd.Decoder are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("format: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("format: zstd decoder initialization failed: " + err.Error())
	}
}

// Compress wraps data in a zstd or lz4 frame.
func Compress(c Compression, data []byte) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZstd:
		return zstdEncoder.EncodeAll(data, nil), nil
	case CompressionLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, errors.Wrap(errors.PhaseFormat, errors.KindInvalidData, err, "lz4 compress")
		}
		if err := w.Close(); err != nil {
			return nil, errors.Wrap(errors.PhaseFormat, errors.KindInvalidData, err, "lz4 compress")
		}
		return buf.Bytes(), nil
	default:
		return nil, errors.Unsupported(errors.PhaseFormat, "compression "+c.String())
	}
}

// Detect reports the compression of data by its frame magic.
func Detect(data []byte) Compression {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		return CompressionZstd
	case bytes.HasPrefix(data, lz4Magic):
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// Decompress undoes Compress. Data without a known frame magic is
// returned unchanged.
func Decompress(data []byte) ([]byte, error) {
	switch Detect(data) {
	case CompressionZstd:
		out, err := zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseFormat, errors.KindInvalidData, err, "zstd decompress")
		}
		return out, nil
	case CompressionLZ4:
		out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, errors.Wrap(errors.PhaseFormat, errors.KindInvalidData, err, "lz4 decompress")
		}
		return out, nil
	default:
		return data, nil
	}
}
