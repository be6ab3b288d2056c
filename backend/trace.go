package backend

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// NoValue marks a trace cell without a reading.
const NoValue = -1

type InputKind uint8

const (
	KindSample InputKind = iota
	KindHeadings
	// KindReset discards everything received so far.
	KindReset
)

type InputData struct {
	Kind InputKind
	Sample
	Headings []string
}

// Sample is one cell of a trace: the reading of Label at slot Index.
type Sample struct {
	Index int
	Label string
	Value int
}

// parseHeadings validates a trace header: "slot" followed by one column
// per label.
func parseHeadings(rec []string) ([]string, error) {
	if len(rec) < 2 {
		return nil, fmt.Errorf("trace header needs a slot column and at least one label, got %d columns", len(rec))
	}
	if !strings.EqualFold(strings.TrimSpace(rec[0]), "slot") {
		return nil, fmt.Errorf("trace header must start with %q, got %q", "slot", rec[0])
	}
	seen := make(map[string]bool, len(rec)-1)
	labels := make([]string, 0, len(rec)-1)
	for i, heading := range rec[1:] {
		label := strings.TrimSpace(heading)
		if label == "" {
			return nil, fmt.Errorf("trace header column %d is empty", i+1)
		}
		if seen[label] {
			return nil, fmt.Errorf("trace header repeats label %q", label)
		}
		seen[label] = true
		labels = append(labels, label)
	}
	return labels, nil
}

// parseRecord converts one trace row into samples, appending to dst. An
// empty cell becomes NoValue so the slot still exists.
func parseRecord(dst []Sample, rec []string, labels []string) ([]Sample, error) {
	if len(rec) != len(labels)+1 {
		return dst, fmt.Errorf("expected %d columns, got %d", len(labels)+1, len(rec))
	}
	index, err := strconv.Atoi(strings.TrimSpace(rec[0]))
	if err != nil {
		return dst, fmt.Errorf("failed parsing slot: %w", err)
	}
	if index < 0 {
		return dst, fmt.Errorf("negative slot %d", index)
	}
	for i, label := range labels {
		cell := strings.TrimSpace(rec[i+1])
		value := NoValue
		if len(cell) > 0 {
			value, err = strconv.Atoi(cell)
			if err != nil {
				return dst, fmt.Errorf("failed parsing %s[%d]=%q: %w", label, index, cell, err)
			}
			if value < NoValue || value > 100 {
				return dst, fmt.Errorf("%s[%d]=%d out of range", label, index, value)
			}
		}
		dst = append(dst, Sample{Index: index, Label: label, Value: value})
	}
	return dst, nil
}

// readTrace parses a CSV trace from source and pushes it to feed. When
// watcher is non-nil, EOF waits for the file to be written to instead of
// ending the trace. It returns the number of rows read.
func (d *Datasource) readTrace(ctx context.Context, source io.Reader, watcher *fsnotify.Watcher, feed *Feed) (int, error) {
	var in io.Reader = source
	if watcher != nil {
		in = NewLineReader(source)
	}
	csvReader := csv.NewReader(in)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1
	headings, err := csvReader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed reading trace header: %w", err)
	}
	labels, err := parseHeadings(headings)
	if err != nil {
		return 0, err
	}
	feed.Push(InputData{Kind: KindHeadings, Headings: labels})

	rows := 0
	samples := make([]Sample, 0, len(labels))
	batch := make([]InputData, 0, len(labels))
readLoop:
	for {
		if ctx.Err() != nil {
			return rows, nil
		}
		rec, err := csvReader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) && watcher != nil {
				for {
					select {
					case <-ctx.Done():
						return rows, nil
					case werr := <-watcher.Errors:
						return rows, fmt.Errorf("failed watching trace: %w", werr)
					case ev := <-watcher.Events:
						if ev.Has(fsnotify.Write) {
							continue readLoop
						}
					}
				}
			}
			if errors.Is(err, io.EOF) {
				return rows, nil
			}
			return rows, fmt.Errorf("could not read trace data: %w", err)
		}
		samples, err = parseRecord(samples[:0], rec, labels)
		if err != nil {
			d.log.Warn().Err(err).Int("row", rows+1).Msg("skipping trace row")
			continue
		}
		batch = batch[:0]
		for _, s := range samples {
			batch = append(batch, InputData{Kind: KindSample, Sample: s})
		}
		feed.Push(batch...)
		rows++
	}
}

// lineReader is a specialized reader that ensures only entire newline-delimited lines are
// read at a time. This is useful when attempting to parse a file that is being actively
// written to as a CSV, as you don't actually attempt to parse any partial lines.
type lineReader struct {
	r       *bufio.Reader
	partial []byte
}

var _ io.Reader = (*lineReader)(nil)

func NewLineReader(r io.Reader) *lineReader {
	return &lineReader{
		r: bufio.NewReader(r),
	}
}

func (l *lineReader) Read(b []byte) (int, error) {
	data, err := l.r.ReadBytes(byte('\n'))
	if err != nil {
		l.partial = append(l.partial, data...)
		return 0, io.EOF
	}
	var n int
	if len(l.partial) > 0 {
		n = copy(b, l.partial)
		l.partial = l.partial[:copy(l.partial, l.partial[n:])]
		b = b[n:]
	}
	return n + copy(b, data), nil
}
