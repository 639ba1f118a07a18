// Package format turns codablejson wire trees into bytes and back.
//
// A wire tree is only made of nil, bool, numbers, strings, []any and
// map[string]any, so any self-describing data format can carry it. JSON
// is the native one; JSONC, CBOR and YAML are offered for configuration
// files and compact storage.
package format

import (
	"reflect"
	"slices"

	"github.com/fxamacker/cbor/v2"
	gojson "github.com/goccy/go-json"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/codablejson/errors"
)

// Format marshals wire trees.
type Format interface {
	Name() string
	Marshal(wire any) ([]byte, error)
	Unmarshal(data []byte) (any, error)
}

var (
	JSON  Format = jsonFormat{}
	JSONC Format = jsoncFormat{}
	CBOR  Format = cborFormat{}
	YAML  Format = yamlFormat{}
)

var formats = map[string]Format{
	"json":  JSON,
	"jsonc": JSONC,
	"cbor":  CBOR,
	"yaml":  YAML,
	"yml":   YAML,
}

// ByName returns the format registered under name.
func ByName(name string) (Format, error) {
	if f, ok := formats[name]; ok {
		return f, nil
	}
	return nil, errors.NotFound(errors.PhaseFormat, "format", name)
}

// Names returns the accepted format names in sorted order.
func Names() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

type jsonFormat struct {
	prefix string
	indent string
}

// JSONIndent returns a JSON format that indents its output.
func JSONIndent(prefix, indent string) Format {
	return jsonFormat{prefix: prefix, indent: indent}
}

func (jsonFormat) Name() string { return "json" }

func (f jsonFormat) Marshal(wire any) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if f.prefix != "" || f.indent != "" {
		data, err = gojson.MarshalIndent(wire, f.prefix, f.indent)
	} else {
		data, err = gojson.Marshal(wire)
	}
	if err != nil {
		return nil, errors.Wrap(errors.PhaseFormat, errors.KindInvalidData, err, "marshal json")
	}
	return data, nil
}

func (jsonFormat) Unmarshal(data []byte) (any, error) {
	var wire any
	if err := gojson.Unmarshal(data, &wire); err != nil {
		return nil, errors.ParseFailed("json", err)
	}
	return wire, nil
}

// jsoncFormat reads JSON with comments and trailing commas. It writes
// indented plain JSON.
type jsoncFormat struct{}

func (jsoncFormat) Name() string { return "jsonc" }

func (jsoncFormat) Marshal(wire any) ([]byte, error) {
	return JSONIndent("", "  ").Marshal(wire)
}

func (jsoncFormat) Unmarshal(data []byte) (any, error) {
	var wire any
	if err := gojson.Unmarshal(jsonc.ToJSON(data), &wire); err != nil {
		return nil, errors.ParseFailed("jsonc", err)
	}
	return wire, nil
}

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error

	// Core Deterministic Encoding: sorted keys and shortest numbers, so
	// equal trees give equal bytes.
	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("format: CBOR encoder initialization failed: " + err.Error())
	}

	cborDec, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("format: CBOR decoder initialization failed: " + err.Error())
	}
}

type cborFormat struct{}

func (cborFormat) Name() string { return "cbor" }

func (cborFormat) Marshal(wire any) ([]byte, error) {
	data, err := cborEnc.Marshal(wire)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseFormat, errors.KindInvalidData, err, "marshal cbor")
	}
	return data, nil
}

func (cborFormat) Unmarshal(data []byte) (any, error) {
	var wire any
	if err := cborDec.Unmarshal(data, &wire); err != nil {
		return nil, errors.ParseFailed("cbor", err)
	}
	return wire, nil
}

type yamlFormat struct{}

func (yamlFormat) Name() string { return "yaml" }

func (yamlFormat) Marshal(wire any) ([]byte, error) {
	data, err := yaml.Marshal(wire)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseFormat, errors.KindInvalidData, err, "marshal yaml")
	}
	return data, nil
}

func (yamlFormat) Unmarshal(data []byte) (any, error) {
	var wire any
	if err := yaml.Unmarshal(data, &wire); err != nil {
		return nil, errors.ParseFailed("yaml", err)
	}
	return normalizeYAML(wire), nil
}

// normalizeYAML converts the map[any]any that YAML produces for
// non-string keys into records, so every format yields the same shapes.
func normalizeYAML(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, item := range x {
			x[k] = normalizeYAML(item)
		}
		return x
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[toKey(k)] = normalizeYAML(item)
		}
		return out
	case []any:
		for i, item := range x {
			x[i] = normalizeYAML(item)
		}
		return x
	default:
		return v
	}
}

func toKey(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	data, err := gojson.Marshal(k)
	if err != nil {
		return ""
	}
	return string(data)
}
