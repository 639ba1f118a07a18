package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wippyai/codablejson"
	"github.com/wippyai/codablejson/errors"
	"github.com/wippyai/codablejson/format"
)

// input is a wire tree read from a file or stdin.
type input struct {
	wire any
	name string
}

func (c *cli) read(args []string) (*input, error) {
	var (
		data []byte
		err  error
		name = "<stdin>"
	)
	if len(args) > 0 && args[0] != "-" {
		name = args[0]
		data, err = os.ReadFile(name)
	} else {
		data, err = io.ReadAll(c.stdin)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	data, err = format.Decompress(data)
	if err != nil {
		return nil, err
	}

	f, err := format.ByName(inputFormat(c.from, name))
	if err != nil {
		return nil, err
	}
	wire, err := f.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &input{wire: wire, name: name}, nil
}

// inputFormat picks the format named by flag, else the one matching the
// file extension, else JSON. Compression suffixes are skipped.
func inputFormat(flag, filename string) string {
	if flag != "" {
		return flag
	}
	for _, ext := range []string{".zst", ".zstd", ".lz4"} {
		filename = strings.TrimSuffix(filename, ext)
	}
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	if _, err := format.ByName(ext); err == nil {
		return ext
	}
	return "json"
}

func (c *cli) convert(args []string) error {
	in, err := c.read(args)
	if err != nil {
		return err
	}

	wire := in.wire
	if c.normalize {
		v, err := c.coder.Decode(wire)
		if err != nil {
			return err
		}
		wire, err = c.coder.Encode(v, codablejson.WithIncludeErrorStack(c.stack))
		if err != nil {
			return err
		}
	}

	var out format.Format
	if c.to == "json" && c.indent != "" {
		out = format.JSONIndent("", c.indent)
	} else if out, err = format.ByName(c.to); err != nil {
		return err
	}
	data, err := out.Marshal(wire)
	if err != nil {
		return err
	}

	algo, err := format.ParseCompression(c.compress)
	if err != nil {
		return err
	}
	if data, err = format.Compress(algo, data); err != nil {
		return err
	}

	if c.output != "" {
		return os.WriteFile(c.output, data, 0o644)
	}

	text := string(data)
	if c.colorOn && algo == format.CompressionNone && (out.Name() == "json" || out.Name() == "jsonc") {
		text = highlightJSON(text)
	}
	_, err = io.WriteString(c.stdout, text)
	if err == nil && !strings.HasSuffix(text, "\n") && algo == format.CompressionNone && out.Name() != "cbor" {
		_, err = io.WriteString(c.stdout, "\n")
	}
	return err
}

func (c *cli) inspect(args []string) error {
	in, err := c.read(args)
	if err != nil {
		return err
	}
	v, err := c.coder.Decode(in.wire)
	if err != nil {
		return err
	}

	root := buildTree(c.coder, v)
	if c.interactive {
		return runInteractive(in.name, root)
	}
	_, err = io.WriteString(c.stdout, renderTree(root, painter{plain: !c.colorOn}))
	return err
}

func (c *cli) validate(args []string) error {
	in, err := c.read(args)
	if err != nil {
		return err
	}
	if _, err := c.coder.Decode(in.wire, codablejson.WithStrictReferences()); err != nil {
		return errors.Wrap(errors.PhaseCLI, errors.KindInvalidData, err, in.name)
	}
	_, err = fmt.Fprintf(c.stdout, "%s: ok\n", in.name)
	return err
}

func (c *cli) digest(args []string) error {
	in, err := c.read(args)
	if err != nil {
		return err
	}
	h, err := format.Digest(in.wire)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.stdout, "%s  %s\n", h, in.name)
	return err
}
