// Command showtool converts between share URLs and editable show documents
//
//	showtool decode [--format yaml|json] <url>
//	showtool encode [--base URL] [file|-]
//	showtool check <url>...
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/fireworks/codec"
)

const usage = `usage: showtool <command> [flags] [args]

commands:
  decode   print the show behind a share URL or query
  encode   build a share URL from a yaml or json show document
  check    report invalid tokens in share URLs
`

// Exit codes
const (
	exitOK      = 0
	exitInvalid = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	log := zerolog.New(zerolog.ConsoleWriter{Out: stderr, NoColor: true, PartsExclude: []string{zerolog.TimestampFieldName}})

	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}
	cmd, rest := args[0], args[1:]

	var err error
	switch cmd {
	case "decode":
		err = runDecode(rest, stdout, stderr, log)
	case "encode":
		err = runEncode(rest, stdin, stdout, stderr)
	case "check":
		err = runCheck(rest, stdout, stderr, log)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return exitOK
	default:
		fmt.Fprintf(stderr, "showtool: unknown command %q\n%s", cmd, usage)
		return exitUsage
	}

	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, pflag.ErrHelp):
		return exitOK
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, "showtool: %v\n", err)
		return exitUsage
	default:
		log.Error().Err(err).Str("command", cmd).Msg("failed")
		return exitInvalid
	}
}

var errUsage = errors.New("usage")

func usageErr(format string, a ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, a...))
}

func runDecode(args []string, stdout, stderr io.Writer, log zerolog.Logger) error {
	fs := pflag.NewFlagSet("decode", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	format := fs.StringP("format", "f", "yaml", "output format: yaml or json")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usageErr("decode takes one url")
	}

	show, present, err := codec.ParseURL(fs.Arg(0))
	var derr *codec.DecodeError
	switch {
	case errors.As(err, &derr):
		for _, c := range derr.Chunks {
			log.Warn().Int("chunk", c.Index).Err(c.Err).Msg("skipped token")
		}
	case err != nil:
		return err
	}
	if !present {
		log.Warn().Msg("no f parameter, showing an empty show")
	}
	return writeShow(stdout, show, *format)
}

func writeShow(w io.Writer, s codec.Show, format string) error {
	if s.Entries == nil {
		s.Entries = []codec.Entry{}
	}
	switch strings.ToLower(format) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	default:
		return usageErr("unknown format %q", format)
	}
}

func runEncode(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("encode", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	base := fs.StringP("base", "b", "", "base url, the bare query is printed when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return usageErr("encode takes at most one file")
	}

	in := stdin
	if name := fs.Arg(0); name != "" && name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	show, err := readShow(in)
	if err != nil {
		return err
	}

	if *base == "" {
		fmt.Fprintln(stdout, codec.EncodeQuery(show).Encode())
		return nil
	}
	u, err := codec.ShareURL(*base, show)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, u)
	return nil
}

// readShow decodes a yaml document; json is valid yaml so both are accepted
func readShow(r io.Reader) (codec.Show, error) {
	show := codec.NewShow()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&show); err != nil && !errors.Is(err, io.EOF) {
		return show, fmt.Errorf("read show: %w", err)
	}
	show.LengthSeconds = codec.ClampLengthSeconds(show.LengthSeconds)
	return show, nil
}

func runCheck(args []string, stdout, stderr io.Writer, log zerolog.Logger) error {
	fs := pflag.NewFlagSet("check", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return usageErr("check takes one or more urls")
	}

	bad := 0
	for _, raw := range fs.Args() {
		show, _, err := codec.ParseURL(raw)
		var derr *codec.DecodeError
		switch {
		case errors.As(err, &derr):
			bad++
			fmt.Fprintf(stdout, "INVALID %d/%d tokens rejected, %d kept: %s\n", len(derr.Chunks), derr.Total, len(show.Entries), raw)
			for _, c := range derr.Chunks {
				log.Warn().Int("chunk", c.Index).Err(c.Err).Msg("rejected")
			}
		case err != nil:
			bad++
			fmt.Fprintf(stdout, "INVALID %v: %s\n", err, raw)
		default:
			fmt.Fprintf(stdout, "OK %d fireworks, %ds: %s\n", len(show.Entries), show.LengthSeconds, raw)
		}
	}
	if bad > 0 {
		return fmt.Errorf("%d of %d urls invalid", bad, fs.NArg())
	}
	return nil
}
