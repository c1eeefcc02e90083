package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	neurarrow "github.com/neurarrow/neurarrow-go"
	"github.com/neurarrow/neurarrow-go/arrowtable"
	"github.com/neurarrow/neurarrow-go/formatdef"
	"github.com/neurarrow/neurarrow-go/formats"
	"github.com/neurarrow/neurarrow-go/i18n"
	"github.com/neurarrow/neurarrow-go/metacodec"
)

const (
	exitOK      = 0
	exitFailed  = 1
	exitUsage   = 2
	envMode     = "NEURARROW_MODE"
	envFormats  = "NEURARROW_FORMATS"
	envLang     = "NEURARROW_LANG"
	envDebug    = "NEURARROW_DEBUG"
	usageString = `neurarrow: check Arrow tables against neuron-morphology formats

Usage:
  neurarrow check -format NAME [-mode strict|lenient|skip] [-fail-fast] [-defs FILE] [-lang en|ja] [-v] FILE...
  neurarrow describe -format NAME [-mode strict|lenient] [-defs FILE]
  neurarrow metadata [-o json|yaml] FILE
  neurarrow formats [-defs FILE]

Files ending in .parquet or .pq are read as Parquet, .arrows as an Arrow IPC
stream, anything else as an Arrow IPC file.

Environment:
  NEURARROW_MODE     default for -mode
  NEURARROW_FORMATS  default for -defs
  NEURARROW_LANG     default for -lang
  NEURARROW_DEBUG    enable debug logging`
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprintln(stderr, usageString)
		return exitUsage
	}
	switch args[0] {
	case "check":
		return checkCmd(args[1:], stdout, stderr)
	case "describe":
		return describeCmd(args[1:], stdout, stderr)
	case "metadata":
		return metadataCmd(args[1:], stdout, stderr)
	case "formats":
		return formatsCmd(args[1:], stdout, stderr)
	case "help", "-h", "-help", "--help":
		fmt.Fprintln(stdout, usageString)
		return exitOK
	}
	fmt.Fprintln(stderr, usageString)
	return exitUsage
}

// common holds the flags shared by subcommands that resolve formats.
type common struct {
	defs    string
	verbose bool
}

func (c *common) bind(fs *flag.FlagSet) {
	fs.StringVar(&c.defs, "defs", os.Getenv(envFormats), "YAML file with additional format definitions")
	fs.BoolVar(&c.verbose, "v", envBool(envDebug), "enable debug logs")
}

func (c *common) registry() (*formats.Registry, error) {
	reg := formats.NewBuiltinRegistry()
	if c.defs == "" {
		return reg, nil
	}
	loaded, err := formatdef.LoadFile(c.defs, reg)
	if err != nil {
		return nil, err
	}
	zap.S().Debugw("loaded format definitions", "file", c.defs, "count", len(loaded))
	return reg, nil
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func checkCmd(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("check", stderr)
	var c common
	var format, mode, lang string
	var failFast bool
	c.bind(fs)
	fs.StringVar(&format, "format", "", "format name (see `neurarrow formats`)")
	fs.StringVar(&mode, "mode", os.Getenv(envMode), "strict, lenient or skip")
	fs.BoolVar(&failFast, "fail-fast", false, "stop at the first issue per file")
	fs.StringVar(&lang, "lang", envOr(envLang, "en"), "message language (en, ja)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if format == "" || fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}
	m, err := neurarrow.ParseMode(mode)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	logger := setupLogger(c.verbose, stderr)
	defer logger.Sync()
	i18n.SetLanguage(lang)

	reg, err := c.registry()
	if err != nil {
		logger.Error("loading format definitions", zap.Error(err))
		return exitFailed
	}
	target, err := reg.Get(format)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	code := exitOK
	for _, path := range fs.Args() {
		sc, err := arrowtable.ReadSchema(path)
		if err != nil {
			logger.Error("reading schema", zap.String("file", path), zap.Error(err))
			code = exitFailed
			continue
		}
		err = arrowtable.Check(sc, target, m, neurarrow.CheckOpt{FailFast: failFast})
		if err == nil {
			logger.Debug("conforms", zap.String("file", path), zap.String("format", target.Name()), zap.Stringer("mode", m))
			fmt.Fprintf(stdout, "%s: ok\n", path)
			continue
		}
		code = exitFailed
		iss, ok := neurarrow.AsIssues(err)
		if !ok {
			logger.Error("checking", zap.String("file", path), zap.Error(err))
			continue
		}
		logger.Debug("does not conform", zap.String("file", path), zap.Int("issues", len(iss)))
		for _, it := range iss {
			fmt.Fprintf(stdout, "%s: %s\n", path, formatIssue(it))
		}
	}
	return code
}

func formatIssue(it neurarrow.Issue) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s at %s: %s", it.Code, it.Path, it.Message)
	if it.Hint != "" {
		fmt.Fprintf(&b, " (%s)", it.Hint)
	}
	return b.String()
}

type formatDescription struct {
	Name     string              `json:"name"`
	Parent   string              `json:"parent,omitempty"`
	Fields   map[string][]string `json:"fields"`
	Metadata map[string][]string `json:"metadata"`
	Schema   any                 `json:"metadataSchema"`
}

func describeCmd(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("describe", stderr)
	var c common
	var format, mode string
	c.bind(fs)
	fs.StringVar(&format, "format", "", "format name")
	fs.StringVar(&mode, "mode", os.Getenv(envMode), "strict or lenient; strict closes the metadata schema")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if format == "" {
		fs.Usage()
		return exitUsage
	}
	m, err := neurarrow.ParseMode(mode)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	reg, err := c.registry()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailed
	}
	f, err := reg.Get(format)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	d := formatDescription{
		Name:   f.Name(),
		Parent: f.Parent(),
		Fields: map[string][]string{
			"required": columnStrings(f.RequiredFields()),
			"optional": columnStrings(f.OptionalFields()),
			"derived":  columnStrings(f.DerivedFields()),
		},
		Metadata: map[string][]string{
			"required": ruleKeys(f.RequiredMetadata()),
			"optional": ruleKeys(f.OptionalMetadata()),
		},
		Schema: f.MetadataJSONSchema(m),
	}
	out, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailed
	}
	fmt.Fprintln(stdout, string(out))
	return exitOK
}

func columnStrings(cols []neurarrow.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.String()
	}
	return out
}

func ruleKeys(rs []neurarrow.MetaRule) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Key
		if r.Namespace {
			out[i] += neurarrow.Delimiter + "*"
		}
	}
	return out
}

func metadataCmd(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("metadata", stderr)
	var output string
	fs.StringVar(&output, "o", "json", "output format: json or yaml")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitUsage
	}
	var render func(neurarrow.Metadata) ([]byte, error)
	switch output {
	case "json":
		render = metacodec.MarshalJSON
	case "yaml":
		render = metacodec.MarshalYAML
	default:
		fmt.Fprintf(stderr, "unknown output format %q\n", output)
		return exitUsage
	}
	sc, err := arrowtable.ReadSchema(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailed
	}
	out, err := render(arrowtable.View(sc).Metadata)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailed
	}
	fmt.Fprintln(stdout, strings.TrimRight(string(out), "\n"))
	return exitOK
}

func formatsCmd(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("formats", stderr)
	var c common
	c.bind(fs)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	reg, err := c.registry()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailed
	}
	for _, name := range reg.Names() {
		f := reg.MustLookup(name)
		if f.Parent() != "" {
			fmt.Fprintf(stdout, "%s (extends %s)\n", name, f.Parent())
			continue
		}
		fmt.Fprintln(stdout, name)
	}
	return exitOK
}

func setupLogger(debug bool, stderr io.Writer) *zap.Logger {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if debug {
		level.SetLevel(zap.DebugLevel)
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(stderr), level)
	logger := zap.New(core)
	zap.ReplaceGlobals(logger)
	return logger
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}
