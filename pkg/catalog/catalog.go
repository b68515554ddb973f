// Package catalog reads the labels of many VICAR files and summarises
// them as flat rows.
package catalog

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/araddon/dateparse"
	"github.com/gocarina/gocsv"
	"github.com/jpfielding/vicar.go/pkg/source"
	"github.com/jpfielding/vicar.go/pkg/util"
	"github.com/jpfielding/vicar.go/pkg/vicar"
)

// NoFilter buckets entries without a FILTER_NAME
const NoFilter = "NONE"

// Entry is one catalogued file
type Entry struct {
	Path       string    `csv:"path" json:"path"`
	ID         string    `csv:"id" json:"id"`
	Target     string    `csv:"target" json:"target,omitempty"`
	Instrument string    `csv:"instrument" json:"instrument,omitempty"`
	Filter     string    `csv:"filter" json:"filter,omitempty"`
	Exposure   float64   `csv:"exposure" json:"exposure,omitempty"`
	ImageTime  string    `csv:"image_time" json:"image_time,omitempty"`
	UTC        string    `csv:"utc" json:"utc,omitempty"`
	Bands      int       `csv:"bands" json:"bands"`
	Lines      int       `csv:"lines" json:"lines"`
	Samples    int       `csv:"samples" json:"samples"`
	Format     string    `csv:"format" json:"format"`
	Org        string    `csv:"org" json:"org"`
	Time       time.Time `csv:"-" json:"-"`
}

// NewEntry summarises labels read from path
func NewEntry(path string, l *vicar.Labels) Entry {
	e := Entry{
		Path:       path,
		ID:         util.HashUUID(l.System),
		Target:     vicar.TargetName(l),
		Instrument: vicar.InstrumentID(l),
		Filter:     strings.Join(vicar.FilterNames(l), "+"),
		ImageTime:  vicar.ImageTime(l),
		Bands:      vicar.GetBands(l),
		Lines:      vicar.GetLines(l),
		Samples:    vicar.GetSamples(l),
	}
	e.Exposure, _ = vicar.ExposureDuration(l)
	if f, ok := l.System.Format(); ok {
		e.Format = f.String()
	}
	if o, ok := l.System.Org(); ok {
		e.Org = o.String()
	}
	if e.ImageTime != "" {
		if t, err := ParseTime(e.ImageTime); err == nil {
			e.Time = t
			e.UTC = t.Format(time.RFC3339Nano)
		} else {
			slog.Debug("unparsed image time", "path", path, "value", e.ImageTime)
		}
	}
	return e
}

// day-of-year layouts used by most mission labels
var doyLayouts = []string{
	"2006-002T15:04:05.000",
	"2006-002T15:04:05",
	"2006-002T15:04",
	"2006-002",
}

// ParseTime reads a label time in either VICAR day-of-year form
// (2004-116T12:34:56.789) or any calendar form dateparse understands
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "Z")
	for _, layout := range doyLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing time %q: %w", s, err)
	}
	return t, nil
}

// Expand replaces every local directory in paths with the VICAR files
// (by extension, any case) found beneath it. Other paths pass through.
func Expand(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		st, err := os.Stat(p)
		if err != nil || !st.IsDir() {
			out = append(out, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(path), vicar.GetExtension()) {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", p, err)
		}
	}
	return out, nil
}

// Options controls a Scan
type Options struct {
	// Workers bounds concurrent reads; <= 0 means 4
	Workers int
	Source  source.Config
}

// Read opens uri and catalogues its beginning-of-file labels
func Read(ctx context.Context, uri string, cfg source.Config) (Entry, error) {
	src, err := source.Open(ctx, uri, cfg)
	if err != nil {
		return Entry{}, err
	}
	defer src.Close()
	l, err := vicar.ReadLabels(src)
	if err != nil {
		return Entry{}, err
	}
	return NewEntry(uri, l), nil
}

// Scan reads every path on a bounded pool of workers. Unreadable files are
// logged and skipped; the rest are returned in input order. A cancelled
// context stops dispatch and returns what finished along with ctx.Err().
func Scan(ctx context.Context, paths []string, opts Options) ([]Entry, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	results := make([]*Entry, len(paths))
	jobs := make(chan int)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				e, err := Read(ctx, paths[i], opts.Source)
				if err != nil {
					slog.WarnContext(ctx, "skipping file", "path", paths[i], "error", err)
					continue
				}
				results[i] = &e
			}
		}()
	}

dispatch:
	for i := range paths {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	entries := make([]Entry, 0, len(paths))
	for _, e := range results {
		if e != nil {
			entries = append(entries, *e)
		}
	}
	return entries, ctx.Err()
}

// GroupByFilter buckets entries by their joined filter names
func GroupByFilter(entries []Entry) map[string][]Entry {
	groups := map[string][]Entry{}
	for _, e := range entries {
		k := e.Filter
		if k == "" {
			k = NoFilter
		}
		groups[k] = append(groups[k], e)
	}
	return groups
}

// Filters returns the group keys in sorted order
func Filters(groups map[string][]Entry) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WriteCSV writes entries with a header row
func WriteCSV(w io.Writer, entries []Entry) error {
	return gocsv.Marshal(&entries, w)
}

// ReadCSV reads rows written by WriteCSV
func ReadCSV(r io.Reader) ([]Entry, error) {
	var entries []Entry
	if err := gocsv.Unmarshal(r, &entries); err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return entries, nil
}
