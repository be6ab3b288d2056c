package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"git.sr.ht/~whereswaldon/emchart/sources"
	"github.com/rs/zerolog"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `%[1]s: emit a csv exposure trace, one row per slot
Usage:

 %[1]s > file

OR

 %[1]s | emchart -trace -

`, os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	dur := flag.Duration("sample-interval", time.Second, "Interval between slots")
	outputName := flag.String("output", "-", "Output file for CSV trace data")
	labels := flag.String("labels", "wifi,cellular,bluetooth", "Comma-separated labels of the synthetic sources")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Seed of the synthetic sources")
	dropout := flag.Float64("dropout", 0.05, "Probability that a source has no reading for a slot")
	count := flag.Int("count", 0, "Number of slots to emit; 0 runs until interrupted")
	level := flag.String("log-level", "info", "Log level")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
	if lvl, err := zerolog.ParseLevel(*level); err == nil {
		log = log.Level(lvl)
	} else {
		log.Warn().Err(err).Msg("ignoring bad log level")
	}

	srcs, err := sources.FromLabels(*labels, *seed, *dropout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed creating sources")
	}

	var output io.WriteCloser
	if *outputName == "-" {
		output = os.Stdout
	} else {
		f, err := os.Create(*outputName)
		if err != nil {
			log.Fatal().Err(err).Str("output", *outputName).Msg("failed opening output file")
		}
		output = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ticker := time.NewTicker(*dur)
	defer ticker.Stop()
	err = run(ctx, output, srcs, ticker.C, *count, log)
	if cerr := output.Close(); cerr != nil {
		log.Error().Err(cerr).Msg("failed closing output")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("feed failed")
	}
}

// run writes the header and then one row per tick until ctx is done or
// count rows were written. A source that fails leaves its cell empty.
func run(ctx context.Context, output io.Writer, srcs []sources.Source, ticks <-chan time.Time, count int, log zerolog.Logger) error {
	w := bufio.NewWriter(output)
	header := make([]string, 0, len(srcs)+1)
	header = append(header, "slot")
	for _, s := range srcs {
		header = append(header, s.Label())
	}
	if _, err := fmt.Fprintln(w, strings.Join(header, ", ")); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	row := make([]string, len(srcs)+1)
	for slot := 0; count == 0 || slot < count; slot++ {
		select {
		case <-ctx.Done():
			return nil
		case <-ticks:
		}
		row[0] = strconv.Itoa(slot)
		for i, s := range srcs {
			v, err := s.Read()
			if err != nil {
				log.Warn().Err(err).Str("label", s.Label()).Int("slot", slot).Msg("failed reading value")
				v = sources.NoValue
			}
			row[i+1] = ""
			if v != sources.NoValue {
				row[i+1] = strconv.Itoa(v)
			}
		}
		if _, err := fmt.Fprintln(w, strings.Join(row, ", ")); err != nil {
			return err
		}
		// Readers follow the trace live; every row goes out at once.
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}
