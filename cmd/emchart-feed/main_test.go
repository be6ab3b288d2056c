package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"git.sr.ht/~whereswaldon/emchart/sources"
	"github.com/rs/zerolog"
)

func TestRun(t *testing.T) {
	srcs := []sources.Source{
		sources.NewSequence("wifi", 50, sources.NoValue, 70),
		sources.NewSequence("cellular", 10, 20, 200),
	}
	ticks := make(chan time.Time, 3)
	for i := 0; i < 3; i++ {
		ticks <- time.Time{}
	}
	var out bytes.Buffer
	if err := run(context.Background(), &out, srcs, ticks, 3, zerolog.Nop()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := "slot, wifi, cellular\n0, 50, 10\n1, , 20\n2, 70, \n"
	if out.String() != expected {
		t.Errorf("expected %q, got %q", expected, out.String())
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	err := run(ctx, &out, []sources.Source{sources.NewSequence("wifi")}, make(chan time.Time), 0, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "slot, wifi\n" {
		t.Errorf("expected only the header, got %q", out.String())
	}
}
