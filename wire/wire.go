package wire

import (
	"math"
	"strconv"
	"strings"

	"github.com/wippyai/codablejson/internal/escape"
)

// Tag key prefix and reserved names.
const (
	TagPrefix = "$$"
	IDKey     = "$$id"
	RefName   = "ref"
	RefKey    = "$$ref"
)

// Sentinel strings. They are only interpreted as bare string values,
// never as record keys.
const (
	UndefinedString        = "$$undefined"
	NaNString              = "$$NaN"
	NegativeZeroString     = "$$-0"
	InfinityString         = "$$Infinity"
	NegativeInfinityString = "$$-Infinity"
	EmptyString            = "$$empty"
)

// ArrayIDPrefix starts the first element of a referenced array.
const ArrayIDPrefix = "$$id:"

var (
	// Strings escapes string values that look like sentinels or tag keys.
	Strings = escape.New(`^\$\$.+$`)
	// RecordKeys escapes record keys that look like tag keys or the
	// discriminator key of the rival "json"/"meta" wire format.
	RecordKeys = escape.New(`^json$|^\$\$.+$`)
	// ArrayIDs escapes a leading array string that looks like an id marker.
	ArrayIDs = escape.New(`^\$\$id:\d+$`)
)

// IsTagKey reports whether key has the "$$Name" shape.
func IsTagKey(key string) bool {
	return len(key) > len(TagPrefix) && strings.HasPrefix(key, TagPrefix)
}

// TagKey returns the wire key for a type name.
func TagKey(name string) string {
	return TagPrefix + name
}

// NewTag builds {"$$name": payload}.
func NewTag(name string, payload any) map[string]any {
	return map[string]any{TagPrefix + name: payload}
}

// NewRef builds the alias {"$$ref": id}.
func NewRef(id int) map[string]any {
	return map[string]any{RefKey: id}
}

// Tag is a parsed tag node.
type Tag struct {
	Payload any
	Name    string
	// ID is the node's reference id, or -1 when absent.
	ID int
}

// Key returns the tag's wire key.
func (t Tag) Key() string {
	return TagPrefix + t.Name
}

// IsRef reports whether the tag is a reference alias.
func (t Tag) IsRef() bool {
	return t.Name == RefName
}

// ParseTag recognizes a tag: exactly one "$$Name" key other than "$$id",
// optionally accompanied by a numeric "$$id".
func ParseTag(m map[string]any) (Tag, bool) {
	if len(m) == 0 || len(m) > 2 {
		return Tag{}, false
	}

	tag := Tag{ID: -1}
	found := false
	for key, value := range m {
		if key == IDKey {
			id, ok := ID(value)
			if !ok {
				return Tag{}, false
			}
			tag.ID = id
			continue
		}
		if !IsTagKey(key) || found {
			return Tag{}, false
		}
		found = true
		tag.Name = key[len(TagPrefix):]
		tag.Payload = value
	}

	return tag, found
}

// RecordID returns the "$$id" carried by a record, or -1.
func RecordID(m map[string]any) int {
	raw, ok := m[IDKey]
	if !ok {
		return -1
	}
	id, ok := ID(raw)
	if !ok {
		return -1
	}
	return id
}

// ArrayIDMarker returns the "$$id:n" first element for a referenced array.
func ArrayIDMarker(id int) string {
	return ArrayIDPrefix + strconv.Itoa(id)
}

// ArrayID parses a "$$id:n" marker.
func ArrayID(s string) (int, bool) {
	if !ArrayIDs.IsMatching(s) {
		return 0, false
	}
	id, err := strconv.Atoi(s[len(ArrayIDPrefix):])
	if err != nil {
		return 0, false
	}
	return id, true
}

// ID coerces a wire number to a non-negative reference id. JSON decoders
// produce float64, CBOR and YAML produce integer kinds.
func ID(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, v >= 0
	case int64:
		if v >= 0 && v <= math.MaxInt32 {
			return int(v), true
		}
	case int32:
		return int(v), v >= 0
	case uint64:
		if v <= math.MaxInt32 {
			return int(v), true
		}
	case uint32:
		return int(v), true
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case float64:
		if v >= 0 && v <= math.MaxInt32 && v == math.Trunc(v) {
			return int(v), true
		}
	case float32:
		if v >= 0 && v <= math.MaxInt32 && v == float32(math.Trunc(float64(v))) {
			return int(v), true
		}
	}
	return 0, false
}
