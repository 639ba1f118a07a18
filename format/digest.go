package format

import (
	"encoding/hex"

	"github.com/zeebo/blake3"

	"github.com/wippyai/codablejson/errors"
	"github.com/wippyai/codablejson/internal/coerce"
)

// Hash is a 32-byte BLAKE3 digest of a wire tree.
type Hash [32]byte

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// The key is the ASCII domain name zero-padded to 32 bytes, so digests
// of wire trees never collide with BLAKE3 digests of other data.
var digestKey = [32]byte{
	'c', 'o', 'd', 'a', 'b', 'l', 'e', 'j', 's', 'o', 'n', '.',
	'w', 'i', 'r', 'e',
}

// Digest fingerprints a wire tree. Numbers are compared by value, so the
// same tree read from JSON, CBOR or YAML digests the same.
func Digest(wire any) (Hash, error) {
	data, err := cborEnc.Marshal(canonical(wire))
	if err != nil {
		return Hash{}, errors.Wrap(errors.PhaseFormat, errors.KindInvalidData, err, "digest")
	}

	hasher, err := blake3.NewKeyed(digestKey[:])
	if err != nil {
		panic("format: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)

	var h Hash
	copy(h[:], hasher.Sum(nil))
	return h, nil
}

// canonical rewrites numbers so that integral values share one
// representation regardless of the decoder that produced them.
func canonical(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = canonical(item)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = canonical(item)
		}
		return out
	case nil, bool, string:
		return v
	}

	if n, ok := coerce.ToInt64(v); ok {
		return n
	}
	if u, ok := coerce.ToUint64(v); ok {
		return u
	}
	if f, ok := coerce.ToFloat64(v); ok {
		return f
	}
	return v
}
