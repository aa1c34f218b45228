package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/heartmarshall/wrdict/internal/app/harvest"
)

// cliFlags holds parsed command-line options.
type cliFlags struct {
	opts       harvest.Options
	get        string
	configPath string
	version    bool
}

// parseFlags parses args (without the program name). Long and short forms
// of a flag share one variable.
func parseFlags(args []string, output io.Writer) (cliFlags, error) {
	var f cliFlags
	fs := flag.NewFlagSet("wrdict", flag.ContinueOnError)
	fs.SetOutput(output)

	str := func(p *string, long, short, value, usage string) {
		fs.StringVar(p, long, value, usage)
		if short != "" {
			fs.StringVar(p, short, value, "shorthand for --"+long)
		}
	}
	num := func(p *int, long, short string, value int, usage string) {
		fs.IntVar(p, long, value, usage)
		fs.IntVar(p, short, value, "shorthand for --"+long)
	}

	str(&f.opts.From, "from", "f", "", "language to translate from (required)")
	str(&f.opts.To, "to", "t", "", "language to translate to (required)")
	str(&f.opts.Output, "output", "o", "", "output archive path (default from config)")
	num(&f.opts.ChunkSize, "chunk-size", "c", 0, "words looked up concurrently (default from config)")
	num(&f.opts.Offset, "offset", "e", 0, "offset into the frequency list")
	num(&f.opts.N, "nwords", "n", 0, "number of words to translate (0 = all)")
	str(&f.opts.Source, "words", "w", "", "frequency list path or URL")
	fs.BoolVar(&f.opts.Append, "append", false, "append frequency list or data to results")
	fs.BoolVar(&f.opts.Append, "a", false, "shorthand for --append")
	str(&f.get, "get", "g", "", "print the result for a single word and exit")
	str(&f.opts.DataPath, "data", "d", "", "load saved results instead of retrieving")
	str(&f.opts.SavePath, "save", "s", "", "save raw results to this JSON file")
	fs.BoolVar(&f.opts.ExcludeExamples, "no-examples", false, "do not append examples to definitions")
	str(&f.configPath, "config", "", "", "path to YAML config file")
	fs.BoolVar(&f.version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return f, err
	}
	f.opts.Words = fs.Args()

	if f.version {
		return f, nil
	}
	if f.opts.From == "" || f.opts.To == "" {
		return f, errors.New("--from and --to are required")
	}
	if f.opts.Offset < 0 || f.opts.N < 0 {
		return f, fmt.Errorf("--offset and --nwords must be >= 0")
	}
	return f, nil
}
