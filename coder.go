package codablejson

import (
	"sync"

	gojson "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/wippyai/codablejson/errors"
)

// Coder encodes and decodes with its own type registry.
// Safe for concurrent use; registration may run alongside encode and decode.
type Coder struct {
	registry  *Registry
	logger    *zap.Logger
	isDefault bool
}

// Option configures a Coder.
type Option func(*coderConfig)

type coderConfig struct {
	logger *zap.Logger
	types  []TypeSource
}

// WithTypes registers additional types on creation.
func WithTypes(types ...TypeSource) Option {
	return func(c *coderConfig) { c.types = append(c.types, types...) }
}

// WithLogger sets the logger for diagnostics of this coder.
func WithLogger(l *zap.Logger) Option {
	return func(c *coderConfig) { c.logger = l }
}

// New creates a Coder that knows the built-in types plus any given with
// WithTypes.
func New(opts ...Option) (*Coder, error) {
	var cfg coderConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Coder{
		registry: NewRegistry(),
		logger:   cfg.logger,
	}
	c.registry.logger = cfg.logger

	for _, t := range Builtins() {
		if err := c.registry.Register(t); err != nil {
			return nil, err
		}
	}
	if err := c.Register(cfg.types...); err != nil {
		return nil, err
	}
	return c, nil
}

var (
	defaultCoder     *Coder
	defaultCoderOnce sync.Once
)

// Default returns the shared coder used by the package-level functions.
// Its registry is frozen: create a Coder with New to add types.
func Default() *Coder {
	defaultCoderOnce.Do(func() {
		c, err := New()
		if err != nil {
			panic("codablejson: built-in types failed to register: " + err.Error())
		}
		c.registry.Freeze()
		c.isDefault = true
		defaultCoder = c
	})
	return defaultCoder
}

// IsDefault reports whether c is the shared default coder.
func (c *Coder) IsDefault() bool {
	return c.isDefault
}

// Registry returns the coder's type registry.
func (c *Coder) Registry() *Registry {
	return c.registry
}

func (c *Coder) log() *zap.Logger {
	if c.logger != nil {
		return c.logger
	}
	return Logger()
}

// Register adds the descriptors supplied by each source.
func (c *Coder) Register(sources ...TypeSource) error {
	for _, src := range sources {
		if src == nil {
			return errors.InvalidInput(errors.PhaseRegister, "nil type source")
		}
		if err := c.registry.Register(src.CodableType()); err != nil {
			return err
		}
	}
	return nil
}

// AddType registers a single descriptor.
func (c *Coder) AddType(t *Type) error {
	return c.registry.Register(t)
}

// AddType builds a descriptor for values of type T with NewType and
// registers it on c.
func AddType[T any](
	c *Coder,
	name string,
	encode func(T, *EncodeContext) (any, error),
	decode func(any, *DecodeContext) (T, error),
	opts ...TypeOption,
) (*Type, error) {
	t := NewType(name, encode, decode, opts...)
	if err := c.AddType(t); err != nil {
		return nil, err
	}
	return t, nil
}

// MatchType returns the descriptor that would encode v, or nil.
func (c *Coder) MatchType(v any) *Type {
	return c.registry.Match(v)
}

// Encode converts v into a wire tree.
func (c *Coder) Encode(v any, opts ...EncodeOption) (any, error) {
	return encode(c.registry.snap.Load(), c.log(), v, buildEncodeOptions(opts))
}

// Decode rebuilds a value graph from a wire tree.
func (c *Coder) Decode(w any, opts ...DecodeOption) (any, error) {
	return decode(c.registry.snap.Load(), c.log(), w, buildDecodeOptions(opts))
}

// Stringify encodes v and renders the wire tree as JSON text.
func (c *Coder) Stringify(v any, opts ...EncodeOption) (string, error) {
	o := buildEncodeOptions(opts)
	w, err := encode(c.registry.snap.Load(), c.log(), v, o)
	if err != nil {
		return "", err
	}

	var data []byte
	if o.Indent != "" {
		data, err = gojson.MarshalIndent(w, "", o.Indent)
	} else {
		data, err = gojson.Marshal(w)
	}
	if err != nil {
		return "", errors.Wrap(errors.PhaseFormat, errors.KindInvalidData, err, "marshal wire tree")
	}
	return string(data), nil
}

// Parse reads JSON text and decodes the wire tree it holds.
func (c *Coder) Parse(text string, opts ...DecodeOption) (any, error) {
	var w any
	if err := gojson.Unmarshal([]byte(text), &w); err != nil {
		return nil, errors.ParseFailed("json", err)
	}
	return c.Decode(w, opts...)
}

// Clone deep-copies v through an encode/decode round trip, preserving
// shared and cyclic references.
func (c *Coder) Clone(v any) (any, error) {
	w, err := c.Encode(v)
	if err != nil {
		return nil, err
	}
	return c.Decode(w)
}

// Encode converts v with the default coder.
func Encode(v any, opts ...EncodeOption) (any, error) {
	return Default().Encode(v, opts...)
}

// Decode rebuilds a value graph with the default coder.
func Decode(w any, opts ...DecodeOption) (any, error) {
	return Default().Decode(w, opts...)
}

// Stringify renders v as JSON text with the default coder.
func Stringify(v any, opts ...EncodeOption) (string, error) {
	return Default().Stringify(v, opts...)
}

// Parse decodes JSON text with the default coder.
func Parse(text string, opts ...DecodeOption) (any, error) {
	return Default().Parse(text, opts...)
}

// Clone deep-copies v with the default coder.
func Clone(v any) (any, error) {
	return Default().Clone(v)
}
