package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

const usage = `Usage: codablejson <command> [flags] [file]

Commands:
  convert   translate a wire tree between formats
  inspect   render the decoded value graph (-i for the interactive browser)
  validate  decode strictly and report the first error
  digest    print the BLAKE3 fingerprint of a wire tree

Reads stdin when no file is given. Run "codablejson <command> --help"
for the flags of a command.
`

type command struct {
	run   func(*cli, []string) error
	flags func(*cli) *pflag.FlagSet
}

var commands = map[string]command{
	"convert":  {run: (*cli).convert, flags: (*cli).convertFlags},
	"inspect":  {run: (*cli).inspect, flags: (*cli).inspectFlags},
	"validate": {run: (*cli).validate, flags: (*cli).commonFlags},
	"digest":   {run: (*cli).digest, flags: (*cli).commonFlags},
}

func main() {
	c := &cli{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	if err := c.main(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (c *cli) main(args []string) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		fmt.Fprint(c.stderr, usage)
		return nil
	}

	// "codablejson -i file" is short for "codablejson inspect -i file".
	name := args[0]
	if name == "-i" || name == "--interactive" {
		name = "inspect"
	} else {
		args = args[1:]
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprint(c.stderr, usage)
		return fmt.Errorf("unknown command %q", name)
	}

	flagSet := cmd.flags(c)
	flagSet.SetOutput(c.stderr)
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if flagSet.NArg() > 1 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(1))
	}

	if err := c.setup(); err != nil {
		return err
	}
	defer c.logger.Sync() //nolint:errcheck

	return cmd.run(c, flagSet.Args())
}

// cli carries the parsed flags and the streams of one invocation.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	environment

	from        string
	to          string
	output      string
	compress    string
	indent      string
	color       string
	logLevel    string
	normalize   bool
	stack       bool
	interactive bool
}

func (c *cli) commonFlags() *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("codablejson", pflag.ContinueOnError)
	flagSet.StringVarP(&c.from, "from", "f", "", "input format: json, jsonc, cbor, yaml (default: from file extension, else json)")
	flagSet.StringVar(&c.color, "color", "auto", "colorize output: auto, always, never")
	flagSet.StringVar(&c.logLevel, "log-level", "warn", "log level: debug, info, warn, error, off")
	return flagSet
}

func (c *cli) convertFlags() *pflag.FlagSet {
	flagSet := c.commonFlags()
	flagSet.StringVarP(&c.to, "to", "t", "json", "output format")
	flagSet.StringVarP(&c.output, "output", "o", "", "write to file instead of stdout")
	flagSet.StringVar(&c.compress, "compress", "none", "compress output: none, zstd, lz4")
	flagSet.StringVar(&c.indent, "indent", "", "indentation for JSON output")
	flagSet.BoolVar(&c.normalize, "normalize", false, "decode and re-encode instead of copying the tree")
	flagSet.BoolVar(&c.stack, "stack", false, "keep error stacks when normalizing")
	return flagSet
}

func (c *cli) inspectFlags() *pflag.FlagSet {
	flagSet := c.commonFlags()
	flagSet.BoolVarP(&c.interactive, "interactive", "i", false, "browse the graph in a terminal UI")
	return flagSet
}
