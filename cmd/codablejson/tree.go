package main

import (
	"math"
	"math/big"
	"net/url"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"time"

	"github.com/wippyai/codablejson"
	"github.com/wippyai/codablejson/internal/coerce"
	"github.com/wippyai/codablejson/internal/identity"
)

// node is one value of a decoded graph laid out as a tree. A value
// reached more than once appears in full at its first position, marked
// with an anchor, and as a ref leaf everywhere else.
type node struct {
	target   *node
	label    string
	kind     string
	text     string
	children []*node
	size     int
	anchor   int
	ref      int
}

// container reports whether the node counts members.
func (n *node) container() bool {
	return n.size >= 0
}

type child struct {
	label string
	value any
}

// mapEntry is the synthetic node for one *codablejson.Map entry.
type mapEntry struct {
	key   any
	value any
}

// buildTree lays out v. Anchors are numbered in the order their values
// are first reached.
func buildTree(coder *codablejson.Coder, v any) *node {
	b := &treeBuilder{
		coder:   coder,
		counts:  make(map[identity.Key]int),
		anchors: make(map[identity.Key]*node),
	}
	b.count(v)
	return b.build("$", v)
}

type treeBuilder struct {
	coder   *codablejson.Coder
	counts  map[identity.Key]int
	anchors map[identity.Key]*node
	next    int
}

func (b *treeBuilder) count(v any) {
	if key, ok := identity.Of(v); ok {
		b.counts[key]++
		if b.counts[key] > 1 {
			return
		}
	}
	_, _, kids, _ := b.describe(v)
	for _, k := range kids {
		b.count(k.value)
	}
}

func (b *treeBuilder) build(label string, v any) *node {
	key, hasKey := identity.Of(v)
	shared := hasKey && b.counts[key] > 1
	if shared {
		if first, ok := b.anchors[key]; ok {
			return &node{label: label, ref: first.anchor, target: first, size: -1}
		}
	}

	kind, text, kids, size := b.describe(v)
	n := &node{label: label, kind: kind, text: text, size: size}
	if shared {
		b.next++
		n.anchor = b.next
		b.anchors[key] = n
	}
	for _, k := range kids {
		n.children = append(n.children, b.build(k.label, k.value))
	}
	return n
}

// describe returns the kind name, inline text, members and member count
// of v. Scalars have an empty kind and a size of -1.
func (b *treeBuilder) describe(v any) (kind, text string, kids []child, size int) {
	switch x := v.(type) {
	case nil:
		return "", "null", nil, -1
	case bool:
		return "", strconv.FormatBool(x), nil, -1
	case string:
		return "", strconv.Quote(x), nil, -1
	case float64:
		return "", formatNumber(x), nil, -1
	case []any:
		for i, item := range x {
			kids = append(kids, child{strconv.Itoa(i), item})
		}
		return "array", "", kids, len(x)
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			kids = append(kids, child{k, x[k]})
		}
		return "object", "", kids, len(x)
	case *codablejson.Map:
		i := 0
		for k, val := range x.All() {
			kids = append(kids, child{strconv.Itoa(i), mapEntry{k, val}})
			i++
		}
		return "Map", "", kids, x.Len()
	case mapEntry:
		return "entry", "", []child{{"key", x.key}, {"value", x.value}}, -1
	case *codablejson.Set:
		i := 0
		for item := range x.All() {
			kids = append(kids, child{strconv.Itoa(i), item})
			i++
		}
		return "Set", "", kids, x.Len()
	case *codablejson.Error:
		if x.Cause != nil {
			kids = append(kids, child{"cause", x.Cause})
		}
		if x.Properties != nil {
			kids = append(kids, child{"properties", x.Properties})
		}
		return "Error", strconv.Quote(x.Error()), kids, -1
	case time.Time:
		return "Date", x.UTC().Format(time.RFC3339Nano), nil, -1
	case *big.Int:
		return "BigInt", x.String(), nil, -1
	case *regexp.Regexp:
		return "RegExp", "/" + x.String() + "/", nil, -1
	case *url.URL:
		return "URL", x.String(), nil, -1
	case url.Values:
		return "URLSearchParams", strconv.Quote(x.Encode()), nil, -1
	case *codablejson.Symbol:
		return "", x.String(), nil, -1
	case *codablejson.ExternalRef:
		return "External", strconv.Quote(x.Key), nil, -1
	case *codablejson.UnresolvedRef:
		return "", x.String(), nil, -1
	}

	if codablejson.IsUndefined(v) {
		return "", "undefined", nil, -1
	}
	if codablejson.IsHole(v) {
		return "", "<empty>", nil, -1
	}
	if f, ok := coerce.ToFloat64(v); ok {
		return "", formatNumber(f), nil, -1
	}

	kind = coerce.TypeName(v)
	if t := b.coder.MatchType(v); t != nil {
		kind = t.Name
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		for i := range rv.Len() {
			kids = append(kids, child{strconv.Itoa(i), rv.Index(i).Interface()})
		}
		return kind, "", kids, rv.Len()
	}
	return kind, "", nil, -1
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0 && math.Signbit(f):
		return "-0"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// find follows a slash-separated path of labels from n. Refs along the
// way are followed to their anchors.
func (n *node) find(path []string) *node {
	cur := n
	for _, label := range path {
		if cur.target != nil {
			cur = cur.target
		}
		var next *node
		for _, c := range cur.children {
			if c.label == label {
				next = c
				break
			}
		}
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}
