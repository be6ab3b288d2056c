package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"gioui.org/x/explorer"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

type Mode uint8

const (
	ModeNone Mode = iota
	// ModeLive reads from a running feed process.
	ModeLive
	// ModeReplaying reads a trace file, following it if it grows.
	ModeReplaying
)

func (m Mode) String() string {
	switch m {
	case ModeLive:
		return "live"
	case ModeReplaying:
		return "replaying"
	default:
		return "none"
	}
}

// Status describes the trace currently being read.
type Status struct {
	Mode Mode
	// Trace names the file or process being read.
	Trace string
	// Recording is the file a live trace is copied to.
	Recording string
	Rows      int
	Done      bool
	Err       error
}

// Datasource reads one trace at a time into a Feed. Starting a new trace
// stops the previous one and tells the UI to reset.
type Datasource struct {
	appCtx context.Context
	log    zerolog.Logger
	feed   Feed
	status broadcast[Status]

	lock   sync.Mutex
	cancel context.CancelFunc
	// FeedArgs are passed to the feed binary by LaunchFeed.
	FeedArgs []string
	// RecordDir is where live traces are recorded. Empty disables
	// recording.
	RecordDir string
}

func NewDatasource(appCtx context.Context, logger zerolog.Logger) *Datasource {
	return &Datasource{
		appCtx: appCtx,
		log:    logger.With().Str("component", "datasource").Logger(),
	}
}

// Feed returns the queue the UI drains.
func (d *Datasource) Feed() *Feed {
	return &d.feed
}

// Status streams the state of the current trace.
func (d *Datasource) Status(ctx context.Context) <-chan Status {
	return d.status.Stream(ctx)
}

func generateTraceID() string {
	return strings.Replace(time.Now().UTC().Format("20060102150405.000000000"), ".", "", 1)
}

func recordingFileFor(traceID string) string {
	return "emchart-" + traceID + ".csv"
}

// begin stops any running trace and returns the context of the next one.
func (d *Datasource) begin() context.Context {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.cancel != nil {
		d.cancel()
	}
	ctx, cancel := context.WithCancel(d.appCtx)
	d.cancel = cancel
	return ctx
}

// start reads source in the background until ctx is done.
func (d *Datasource) start(ctx context.Context, mode Mode, name string, source io.ReadCloser, followPath string, recording string) {
	d.feed.Push(InputData{Kind: KindReset})
	d.status.Update(func(s *Status) {
		*s = Status{Mode: mode, Trace: name, Recording: recording}
	})
	d.log.Info().Stringer("mode", mode).Str("trace", name).Msg("reading trace")

	go func() {
		defer source.Close()
		var watcher *fsnotify.Watcher
		if followPath != "" {
			w, err := fsnotify.NewWatcher()
			if err != nil {
				d.finish(ctx, 0, fmt.Errorf("failed creating file watcher: %w", err))
				return
			}
			defer w.Close()
			if err := w.Add(followPath); err != nil {
				d.finish(ctx, 0, fmt.Errorf("failed watching %q: %w", followPath, err))
				return
			}
			watcher = w
		}
		rows, err := d.readTrace(ctx, source, watcher, &d.feed)
		d.finish(ctx, rows, err)
	}()
}

func (d *Datasource) finish(ctx context.Context, rows int, err error) {
	if ctx.Err() != nil {
		// Replaced by a newer trace.
		return
	}
	if err != nil {
		d.log.Error().Err(err).Msg("trace failed")
	} else {
		d.log.Info().Int("rows", rows).Msg("trace ended")
	}
	d.status.Update(func(s *Status) {
		s.Rows = rows
		s.Done = true
		s.Err = err
	})
}

// Stop ends the current trace, if any.
func (d *Datasource) Stop() {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

// LoadFromFile asks the user for a trace and replays it.
func (d *Datasource) LoadFromFile(expl *explorer.Explorer) error {
	file, err := expl.ChooseFile(".csv")
	if err != nil {
		return err
	}
	name := "trace"
	follow := ""
	if f, ok := file.(interface{ Name() string }); ok {
		name = f.Name()
		follow = f.Name()
	}
	d.start(d.begin(), ModeReplaying, name, file, follow, "")
	return nil
}

// LoadFromPath replays the trace at path. With follow set, rows appended
// to the file later are read as they arrive.
func (d *Datasource) LoadFromPath(path string, follow bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed opening trace: %w", err)
	}
	followPath := ""
	if follow {
		followPath = path
	}
	d.start(d.begin(), ModeReplaying, path, f, followPath, "")
	return nil
}

// LoadFromStream reads a trace from r until it ends.
func (d *Datasource) LoadFromStream(mode Mode, name string, r io.ReadCloser) {
	d.start(d.begin(), mode, name, r, "", "")
}

// LaunchFeed starts the feed binary and reads its output live. The output
// is also recorded to a file in RecordDir.
func (d *Datasource) LaunchFeed() error {
	ctx := d.begin()
	output, err := launchFeed(ctx, d.log, d.FeedArgs...)
	if err != nil {
		d.status.Update(func(s *Status) {
			*s = Status{Mode: ModeNone, Err: err}
		})
		return err
	}
	var (
		source    io.ReadCloser = output
		recording string
	)
	if d.RecordDir != "" {
		recording = filepath.Join(d.RecordDir, recordingFileFor(generateTraceID()))
		f, err := os.Create(recording)
		if err != nil {
			d.log.Warn().Err(err).Msg("not recording live trace")
			recording = ""
		} else {
			source = &teeReadCloser{Reader: io.TeeReader(output, f), closers: []io.Closer{output, f}}
		}
	}
	d.start(ctx, ModeLive, feedExeName, source, "", recording)
	return nil
}

type teeReadCloser struct {
	io.Reader
	closers []io.Closer
}

func (t *teeReadCloser) Close() error {
	var errs []error
	for _, c := range t.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

const feedExeName = "emchart-feed"

// feedProcess is the stdout of a running feed. Closing it reaps the
// process in the background; done is closed once it has exited.
type feedProcess struct {
	io.ReadCloser
	cmd     *exec.Cmd
	once    sync.Once
	done    chan struct{}
	waitErr error
}

func (p *feedProcess) Close() error {
	err := p.ReadCloser.Close()
	p.once.Do(func() {
		go func() {
			defer close(p.done)
			p.waitErr = p.cmd.Wait()
		}()
	})
	return err
}

func runFeedWithName(ctx context.Context, exeName string, args ...string) (*feedProcess, error) {
	cmd := exec.CommandContext(ctx, exeName, args...)
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed acquiring stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &feedProcess{ReadCloser: out, cmd: cmd, done: make(chan struct{})}, nil
}

func launchFeed(ctx context.Context, log zerolog.Logger, args ...string) (io.ReadCloser, error) {
	execPath, err := os.Executable()
	if err == nil {
		feedExe := filepath.Join(filepath.Dir(execPath), feedExeName)
		if runtime.GOOS == "windows" {
			feedExe += ".exe"
		}
		log.Debug().Str("path", feedExe).Msg("looking for feed")
		output, err := runFeedWithName(ctx, feedExe, args...)
		if err == nil {
			return output, nil
		}
	}

	log.Debug().Msg("searching path for feed")
	feedExe, err := exec.LookPath(feedExeName)
	if err != nil {
		return nil, fmt.Errorf("unable to locate %q in $PATH: %w", feedExeName, err)
	}

	output, err := runFeedWithName(ctx, feedExe, args...)
	if err != nil {
		return nil, fmt.Errorf("failed launching %q: %w", feedExe, err)
	}

	return output, nil
}
