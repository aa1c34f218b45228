// Command wrdict builds a Migaku dictionary from WordReference lookups of a
// frequency-ranked word list.
//
// Usage:
//
//	wrdict -f es -t en [-n 1000] [-e 0] [-w list.txt] [-o spanish] [word ...]
//	wrdict -f es -t en -g casa
//
// Positional words replace the frequency list. Exit codes: 0 = success,
// 1 = error.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/heartmarshall/wrdict/internal/app"
	"github.com/heartmarshall/wrdict/internal/config"
	"github.com/heartmarshall/wrdict/internal/domain"
)

func main() {
	flags, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if flags.version {
		fmt.Println(app.BuildVersion())
		return
	}

	_ = godotenv.Load()

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, closeFn, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("setup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeFn()

	if flags.get != "" {
		res, err := pipeline.LookupWord(ctx, flags.get, flags.opts.From, flags.opts.To)
		if err != nil {
			logger.Error("lookup failed", slog.String("word", flags.get), slog.String("error", err.Error()))
			closeFn()
			os.Exit(1)
		}
		if err := printJSON(os.Stdout, res); err != nil {
			logger.Error("print result", slog.String("error", err.Error()))
			closeFn()
			os.Exit(1)
		}
		return
	}

	rep, err := pipeline.Run(ctx, flags.opts)
	if rep != nil {
		printErrors(os.Stdout, rep.Errors)
	}
	if err != nil {
		logger.Error("harvest failed", slog.String("error", err.Error()))
		closeFn()
		os.Exit(1)
	}

	fmt.Printf("Dictionary written to %s (%d entries, %d words, %d errors)\n",
		rep.Archive, rep.Entries, rep.Words, len(rep.Errors))
}

// printErrors lists every failed word, one per line.
func printErrors(w io.Writer, errs []*domain.LookupError) {
	for _, e := range errs {
		fmt.Fprintf(w, "Error processing word: %s - %s\n", e.Word, e.Reason())
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
