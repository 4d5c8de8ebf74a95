// Package report writes benchmark timings in the Go benchmark format and
// summarizes them.
package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"golang.org/x/perf/benchfmt"
)

// Entry is one timed query execution.
type Entry struct {
	Query    int
	Cores    int
	Files    int
	Events   int
	Duration time.Duration
	Integral float64
}

const (
	unitSeconds  = "sec/op"
	unitIntegral = "integral"
	unitEvents   = "events"
)

// LogWriter appends one benchmark line per entry, e.g.
//
//	query: 6
//	cores: 4
//	files: 10
//	BenchmarkQuery6 1 1.52 sec/op 1.069e+08 integral 5.34e+07 events
//
// Config lines are only written when they change.
type LogWriter struct {
	mu     sync.Mutex
	w      *benchfmt.Writer
	closer io.Closer
}

// NewLogWriter writes entries to w.
func NewLogWriter(w io.Writer) *LogWriter {
	return &LogWriter{w: benchfmt.NewWriter(w)}
}

// OpenLog opens path for appending, creating it and its directory if needed.
func OpenLog(path string) (*LogWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open benchmark log: %w", err)
	}
	l := NewLogWriter(f)
	l.closer = f
	return l, nil
}

// Append writes e as one benchmark result.
func (l *LogWriter) Append(e Entry) error {
	res := &benchfmt.Result{
		Config: []benchfmt.Config{
			fileConfig("query", e.Query),
			fileConfig("cores", e.Cores),
			fileConfig("files", e.Files),
		},
		Name:  benchfmt.Name(fmt.Sprintf("Query%d", e.Query)),
		Iters: 1,
		Values: []benchfmt.Value{
			{Value: e.Duration.Seconds(), Unit: unitSeconds},
			{Value: e.Integral, Unit: unitIntegral},
			{Value: float64(e.Events), Unit: unitEvents},
		},
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(res)
}

func fileConfig(key string, v int) benchfmt.Config {
	return benchfmt.Config{Key: key, Value: []byte(strconv.Itoa(v)), File: true}
}

// Close closes the underlying file, if OpenLog opened one.
func (l *LogWriter) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// ReadLog parses entries written by LogWriter. Lines that are not benchmark
// results are skipped.
func ReadLog(r io.Reader) ([]Entry, error) {
	var entries []Entry
	br := benchfmt.NewReader(r, "log")
	for br.Scan() {
		res, ok := br.Result().(*benchfmt.Result)
		if !ok {
			continue
		}
		e, err := entryOf(res)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, br.Err()
}

func entryOf(res *benchfmt.Result) (Entry, error) {
	var e Entry
	var errs []error
	atoi := func(key string) int {
		n, err := strconv.Atoi(res.GetConfig(key))
		if err != nil {
			errs = append(errs, fmt.Errorf("config %s: %w", key, err))
		}
		return n
	}
	e.Query = atoi("query")
	e.Cores = atoi("cores")
	e.Files = atoi("files")

	for _, v := range res.Values {
		switch v.Unit {
		case unitSeconds:
			e.Duration = time.Duration(v.Value * float64(time.Second))
		case unitIntegral:
			e.Integral = v.Value
		case unitEvents:
			e.Events = int(v.Value)
		}
	}
	return e, errors.Join(errs...)
}
