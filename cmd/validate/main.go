// Command validate parses a geomagnetic forecast bulletin against a reference
// date and prints the 24 hourly records as JSON. On failure it prints the
// error kind and exits non-zero, which makes it handy for checking fixtures
// and captured upstream bulletins.
//
// Usage:
//
//	go run ./cmd/validate -date 2026-10-19 internal/domain/testdata/geomag_forecast.txt
//	curl -s "$SWPC_URL" | go run ./cmd/validate -
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/illine/geomagnetic-forecast/internal/domain"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dateFlag := fs.String("date", "", "reference date, YYYY-MM-DD (default: today UTC)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: validate [-date YYYY-MM-DD] <bulletin-file|->")
		return 2
	}

	today := domain.Today()
	if *dateFlag != "" {
		d, err := time.Parse(domain.DateLayout, *dateFlag)
		if err != nil {
			fmt.Fprintf(stderr, "invalid -date: %v\n", err)
			return 2
		}
		today = d
	}

	in := stdin
	if path := fs.Arg(0); path != "-" {
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(stderr, "FATAL: %v\n", err)
			return 1
		}
		defer f.Close()
		in = f
	}

	forecasts, err := domain.ParseBulletinReader(in, today)
	if err != nil {
		kind := string(domain.KindOf(err))
		if kind == "" {
			kind = "invalid_argument"
		}
		fmt.Fprintf(stderr, "FAIL (%s): %v\n", kind, err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(domain.ToDTOs(forecasts)); err != nil {
		fmt.Fprintf(stderr, "FATAL: encode: %v\n", err)
		return 1
	}
	return 0
}
