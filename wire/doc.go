// Package wire defines the JSON-compatible wire grammar of codablejson.
//
// A wire tree contains only nil, bool, numbers, strings, []any and
// map[string]any. Everything the plain alphabet cannot express is spelled
// with reserved shapes:
//
//	{"$$Set": [1, 2, 3]}          tag: type name + payload
//	{"$$Set": [...], "$$id": 0}   tag that later aliases point to
//	{"a": 1, "$$id": 0}           record that later aliases point to
//	["$$id:0", 1, 2]              array that later aliases point to
//	{"$$ref": 0}                  alias: same identity as node 0
//	"$$NaN" "$$-0" "$$Infinity"   numeric sentinels
//	"$$-Infinity" "$$undefined"
//	"$$empty"                     sparse array gap (array elements only)
//
// User data that collides with these shapes is escaped with a leading "~".
// Escaping is cumulative: "~$$NaN" encodes as "~~$$NaN", and each decode
// removes exactly one marker.
package wire
