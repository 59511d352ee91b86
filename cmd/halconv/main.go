// halconv converts HAL documents between application/hal+json and
// application/hal+xml.
//
//	halconv --to xml --pretty order.json
//	curl -s https://api.example.com/orders | halconv --to xml --depth 3
//
// The input format is taken from --from, or detected from the first
// non-space byte ('<' means XML). Output goes to stdout.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/reoring/hal"
	"github.com/reoring/hal/codec"
)

const (
	formatJSON = "json"
	formatXML  = "xml"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "halconv: %v\n", err)
		if code := hal.Code(err); code != hal.CodeUnknown {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

type options struct {
	from, to   string
	pretty     bool
	depth      int
	configPath string
	verbose    bool
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var opts options
	flagSet := pflag.NewFlagSet("halconv", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&opts.from, "from", "", "input format: json or xml (default: detect)")
	flagSet.StringVar(&opts.to, "to", "", "output format: json or xml (default: the other one)")
	flagSet.BoolVar(&opts.pretty, "pretty", false, "indent the output")
	flagSet.IntVar(&opts.depth, "depth", 8, "embedded resource levels to read")
	flagSet.StringVar(&opts.configPath, "config", "", "YAML codec configuration file")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "log debug events to stderr")
	flagSet.Usage = func() {
		fmt.Fprintln(stderr, "Usage: halconv [flags] [file]")
		flagSet.PrintDefaults()
	}
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if flagSet.NArg() > 1 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(1))
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg := codec.Config{}
	if opts.configPath != "" {
		var err error
		if cfg, err = codec.LoadConfigFile(opts.configPath); err != nil {
			return err
		}
	}
	cfg.JSON.Parse.Logger = logger
	cfg.XML.Parse.Logger = logger
	if flagSet.Changed("depth") || opts.configPath == "" {
		cfg.JSON.Parse.MaxEmbedDepth = opts.depth
		cfg.XML.Parse.MaxEmbedDepth = opts.depth
	}
	if opts.pretty {
		cfg.JSON.Pretty = true
		cfg.XML.Pretty = true
	}

	var input []byte
	var err error
	if name := flagSet.Arg(0); name != "" && name != "-" {
		input, err = os.ReadFile(name)
	} else {
		input, err = io.ReadAll(stdin)
	}
	if err != nil {
		return err
	}

	from := strings.ToLower(opts.from)
	if from == "" {
		from = detectFormat(input)
	}
	to := strings.ToLower(opts.to)
	if to == "" {
		to = formatJSON
		if from == formatJSON {
			to = formatXML
		}
	}
	in, err := codecFor(from, cfg)
	if err != nil {
		return err
	}
	out, err := codecFor(to, cfg)
	if err != nil {
		return err
	}
	logger.Debug("converting", "from", in.ContentType(), "to", out.ContentType(), "bytes", len(input))

	res, err := in.Parse(input)
	if err != nil {
		return err
	}
	text, err := out.Render(res)
	if err != nil {
		return err
	}
	if _, err := stdout.Write(text); err != nil {
		return err
	}
	if to == formatJSON {
		_, err = io.WriteString(stdout, "\n")
	}
	return err
}

// detectFormat reports xml when the first non-space byte opens a tag.
func detectFormat(input []byte) string {
	trimmed := bytes.TrimLeft(input, " \t\r\n\ufeff")
	if len(trimmed) > 0 && trimmed[0] == '<' {
		return formatXML
	}
	return formatJSON
}

func codecFor(format string, cfg codec.Config) (codec.Codec, error) {
	switch format {
	case formatJSON:
		return codec.ForContentType(codec.MediaTypeJSON, cfg)
	case formatXML:
		return codec.ForContentType(codec.MediaTypeXML, cfg)
	}
	return nil, fmt.Errorf("unknown format %q (want json or xml)", format)
}
