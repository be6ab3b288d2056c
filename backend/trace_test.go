package backend

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestParseHeadings(t *testing.T) {
	labels, err := parseHeadings([]string{"Slot", " wifi", "cellular "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(labels, []string{"wifi", "cellular"}) {
		t.Errorf("expected [wifi cellular], got %v", labels)
	}
	for _, rec := range [][]string{
		{"slot"},
		{"time", "wifi"},
		{"slot", "wifi", ""},
		{"slot", "wifi", "wifi"},
	} {
		if _, err := parseHeadings(rec); err == nil {
			t.Errorf("expected header %q to be rejected", rec)
		}
	}
}

func TestParseRecord(t *testing.T) {
	labels := []string{"wifi", "cellular"}
	got, err := parseRecord(nil, []string{"3", "50", ""}, labels)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []Sample{
		{Index: 3, Label: "wifi", Value: 50},
		{Index: 3, Label: "cellular", Value: NoValue},
	}
	if !slices.Equal(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}
	for _, rec := range [][]string{
		{"3", "50"},
		{"x", "1", "2"},
		{"-1", "1", "2"},
		{"3", "101", "2"},
		{"3", "1", "two"},
	} {
		if _, err := parseRecord(nil, rec, labels); err == nil {
			t.Errorf("expected record %q to be rejected", rec)
		}
	}
}

// collect drains feed until want items arrived or the timeout passes.
func collect(t *testing.T, feed *Feed, want int) []InputData {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var out []InputData
	updates := feed.Updates(ctx)
	for len(out) < want {
		select {
		case <-ctx.Done():
			t.Fatalf("expected %d items, got %d", want, len(out))
		case <-updates:
			feed.Drain(func(in InputData) {
				out = append(out, in)
			})
		}
	}
	return out
}

func waitDone(t *testing.T, d *Datasource) Status {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for s := range d.Status(ctx) {
		if s.Done {
			return s
		}
	}
	t.Fatalf("trace did not finish")
	return Status{}
}

const testTrace = `slot, wifi, cellular
0, 50, 10
1, , 20
bad row
2, 70, 30
`

func TestLoadFromStream(t *testing.T) {
	d := NewDatasource(context.Background(), zerolog.Nop())
	d.LoadFromStream(ModeReplaying, "test", io.NopCloser(strings.NewReader(testTrace)))
	status := waitDone(t, d)
	if status.Err != nil || status.Rows != 3 {
		t.Errorf("expected 3 rows without error, got %d (%v)", status.Rows, status.Err)
	}
	items := collect(t, d.Feed(), 8)
	if items[0].Kind != KindReset {
		t.Errorf("expected a reset first, got %v", items[0].Kind)
	}
	if items[1].Kind != KindHeadings || !slices.Equal(items[1].Headings, []string{"wifi", "cellular"}) {
		t.Errorf("expected headings, got %+v", items[1])
	}
	var samples []Sample
	for _, it := range items[2:] {
		samples = append(samples, it.Sample)
	}
	expected := []Sample{
		{0, "wifi", 50}, {0, "cellular", 10},
		{1, "wifi", NoValue}, {1, "cellular", 20},
		{2, "wifi", 70}, {2, "cellular", 30},
	}
	if !slices.Equal(samples, expected) {
		t.Errorf("expected %v, got %v", expected, samples)
	}
}

func TestLoadFromStreamBadHeader(t *testing.T) {
	d := NewDatasource(context.Background(), zerolog.Nop())
	d.LoadFromStream(ModeReplaying, "test", io.NopCloser(strings.NewReader("time, wifi\n0, 1\n")))
	if status := waitDone(t, d); status.Err == nil {
		t.Errorf("expected a bad header to fail the trace")
	}
}

func TestFollowFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.csv")
	if err := os.WriteFile(path, []byte("slot, wifi\n0, 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d := NewDatasource(ctx, zerolog.Nop())
	if err := d.LoadFromPath(path, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	feed := d.Feed()
	if items := collect(t, feed, 3); items[2].Sample != (Sample{0, "wifi", 1}) {
		t.Errorf("expected the first row, got %+v", items[2])
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	// A partial line is held back until it is terminated.
	if _, err := f.WriteString("1, 2"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("5\n"); err != nil {
		t.Fatal(err)
	}
	if items := collect(t, feed, 1); items[0].Sample != (Sample{1, "wifi", 25}) {
		t.Errorf("expected the appended row, got %+v", items[0])
	}
	d.Stop()
}

func TestFeed(t *testing.T) {
	var f Feed
	if n := f.Drain(func(InputData) {}); n != 0 {
		t.Errorf("expected an empty feed, drained %d", n)
	}
	f.Push(InputData{Kind: KindReset}, InputData{Kind: KindSample, Sample: Sample{Index: 1}})
	f.Push()
	var kinds []InputKind
	if n := f.Drain(func(in InputData) { kinds = append(kinds, in.Kind) }); n != 2 {
		t.Errorf("expected 2 items, got %d", n)
	}
	if !slices.Equal(kinds, []InputKind{KindReset, KindSample}) {
		t.Errorf("expected reset then sample, got %v", kinds)
	}
	if got := f.count.Get(); got != 1 {
		t.Errorf("expected one update, got %d", got)
	}
	f.Push(InputData{Kind: KindHeadings})
	if n := f.Drain(func(InputData) {}); n != 1 {
		t.Errorf("expected the queue to be reusable, drained %d", n)
	}
}

func TestFeedProcessReaped(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("no shell available")
	}
	p, err := runFeedWithName(context.Background(), sh, "-c", "echo 'slot, wifi'")
	if err != nil {
		t.Fatalf("expected the process to start, got: %v", err)
	}
	out, err := io.ReadAll(p)
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	if string(out) != "slot, wifi\n" {
		t.Errorf("expected the header, got %q", out)
	}
	p.Close()
	p.Close()
	select {
	case <-p.done:
	case <-time.After(5 * time.Second):
		t.Fatalf("expected the process to be reaped")
	}
	if p.waitErr != nil {
		t.Errorf("expected a clean exit, got: %v", p.waitErr)
	}
	if p.cmd.ProcessState == nil || !p.cmd.ProcessState.Exited() {
		t.Errorf("expected an exited process state, got %v", p.cmd.ProcessState)
	}
}
