package data

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Location names where the runs of one sample are stored on disk and
// numbers them. The layout is Root/Sample/NNN with a zero-padded
// three-digit run counter, and every plot belonging to a run carries
// the "sample #NNN" title.
type Location struct {
	Root    string
	Sample  string
	Counter int
}

// NewLocation creates the sample directory under root and returns a
// location whose counter continues after the highest run already
// present, so restarting a session never overwrites old runs.
func NewLocation(root, sample string) (*Location, error) {
	if sample == "" {
		return nil, errors.New("location: empty sample name")
	}
	dir := filepath.Join(root, sample)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "location: create sample dir")
	}
	loc := &Location{Root: root, Sample: sample}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "location: scan sample dir")
	}
	for _, e := range entries {
		var n int
		if _, err := fmt.Sscanf(e.Name(), "%03d", &n); err == nil && n > loc.Counter {
			loc.Counter = n
		}
	}
	return loc, nil
}

// NextRun advances the counter and returns the new run directory,
// creating it.
func (l *Location) NextRun() (string, error) {
	l.Counter++
	dir := l.RunDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "location: create run %03d", l.Counter)
	}
	return dir, nil
}

// RunDir returns the directory of the current run.
func (l *Location) RunDir() string {
	return filepath.Join(l.Root, l.Sample, fmt.Sprintf("%03d", l.Counter))
}

// Title returns the plot title of the current run, "sample #NNN".
func (l *Location) Title() string {
	return fmt.Sprintf("%s #%03d", l.Sample, l.Counter)
}

// FilePath places name inside the current run directory. Names are
// sanitized so generated titles can be used directly.
func (l *Location) FilePath(name string) string {
	return filepath.Join(l.RunDir(), sanitize(name))
}

// sanitize replaces path separators in generated file names.
func sanitize(name string) string {
	out := []rune(name)
	for i, r := range out {
		if r == '/' || r == '\\' || r == ':' {
			out[i] = '-'
		}
	}
	return string(out)
}
