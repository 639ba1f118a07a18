// Package codablejson converts Go value graphs to a JSON-compatible wire
// tree and back, keeping what plain JSON loses: shared and cyclic
// references, NaN, infinities, negative zero, undefined, sparse array
// holes, and an open set of extended kinds.
//
// # Architecture Overview
//
//	codablejson/         Coder, type registry, encode and decode
//	├── wire/            Wire grammar: tags, aliases, sentinels, escaping
//	├── format/          Wire tree to bytes: JSON, JSONC, CBOR, YAML
//	├── errors/          Structured error types for debugging
//	├── internal/escape  Cumulative "~" escaping of reserved strings
//	├── internal/identity Allocation identity table
//	├── internal/coerce  Wire number conversion
//	└── cmd/codablejson  Command line converter and inspector
//
// # Quick Start
//
//	shared := map[string]any{"n": 1.0}
//	text, err := codablejson.Stringify(map[string]any{
//	    "set": codablejson.NewSet(1.0, 2.0),
//	    "a":   shared,
//	    "b":   shared,
//	})
//	// {"a":{"$$id":0,"n":1},"b":{"$$ref":0},"set":{"$$Set":[1,2]}}
//
//	v, err := codablejson.Parse(text)
//	m := v.(map[string]any)
//	// m["a"] and m["b"] are the same map again.
//
// # Extended Kinds
//
// The built-in types cover *Map, *Set, time.Time, typed numeric slices,
// errors, *big.Int, *Symbol, *regexp.Regexp, *url.URL, url.Values and
// *ExternalRef. Add your own with NewType:
//
//	type Point struct{ X, Y float64 }
//
//	pointType := codablejson.NewType[Point]("Point",
//	    func(p Point, _ *codablejson.EncodeContext) (any, error) {
//	        return []any{p.X, p.Y}, nil
//	    },
//	    func(payload any, _ *codablejson.DecodeContext) (Point, error) {
//	        xy := payload.([]any)
//	        return Point{xy[0].(float64), xy[1].(float64)}, nil
//	    },
//	)
//	coder, err := codablejson.New(codablejson.WithTypes(pointType))
//
// # References
//
// Maps, slices and pointers reached more than once are written in full at
// their first position and as {"$$ref": n} afterwards. Decoding restores
// the sharing; references to a node that is still being decoded (cycles)
// are patched once the whole tree has been built.
//
// # Thread Safety
//
// Coder and Registry are safe for concurrent use. Each Encode and Decode
// call owns its state. The Default coder is frozen.
package codablejson
