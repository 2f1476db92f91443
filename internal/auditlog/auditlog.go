// Package auditlog persists the per-run discovery, deployment, and
// uninstall logs.
//
// Every run gets one session number shared across all categories. Session
// numbers increase monotonically and wrap at 999; retention keeps the 10
// most recent files per category. Appends are serialized so concurrent
// writers never interleave mid-line.
package auditlog

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"sync"
	"time"
)

// Category names one persisted log stream.
type Category string

const (
	CategoryDiscovery Category = "discovery"
	CategoryDeploy    Category = "deploy"
	CategoryUninstall Category = "uninstall"
)

const (
	sessionWrap = 1000
	keepPerCat  = 10
	filePerm    = 0o644
	dirPerm     = 0o755
	timeFormat  = "2006-01-02T15:04:05Z07:00"
)

var fileNameRe = regexp.MustCompile(`^(discovery|deploy|uninstall)-(\d{3})\.log$`)

// Log owns the audit files of one run.
type Log struct {
	dir     string
	session int

	mu    sync.Mutex
	files map[Category]*os.File
	now   func() time.Time
}

// Open prepares the log directory for a new run: it computes the next
// session number from the files already present, prunes each category to
// its retention budget, and returns a Log writing under that session.
func Open(dir string) (*Log, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	session, err := nextSession(dir)
	if err != nil {
		return nil, err
	}

	l := &Log{
		dir:     dir,
		session: session,
		files:   make(map[Category]*os.File),
		now:     time.Now,
	}
	l.prune()
	return l, nil
}

// Session returns the run's session number.
func (l *Log) Session() int {
	return l.session
}

// Printf appends one line to the category's log file. Failures are
// swallowed; audit logging never fails the run.
func (l *Log) Printf(cat Category, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := l.file(cat)
	if err != nil {
		return
	}
	line := fmt.Sprintf("%s %s\n", l.now().Format(timeFormat), fmt.Sprintf(format, args...))
	_, _ = f.WriteString(line)
}

// Close closes all open log files.
func (l *Log) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, f := range l.files {
		_ = f.Close()
	}
	l.files = make(map[Category]*os.File)
}

// Path returns the file path a category writes to this run.
func (l *Log) Path(cat Category) string {
	return filepath.Join(l.dir, fmt.Sprintf("%s-%03d.log", cat, l.session))
}

func (l *Log) file(cat Category) (*os.File, error) {
	if f, ok := l.files[cat]; ok {
		return f, nil
	}
	f, err := os.OpenFile(l.Path(cat), os.O_CREATE|os.O_APPEND|os.O_WRONLY, filePerm)
	if err != nil {
		return nil, err
	}
	l.files[cat] = f
	return f, nil
}

// nextSession derives the run's session number from the most recently
// written log file: its session plus one, wrapping at 999. Modification
// time orders the files, not the numbers themselves, so numbering keeps
// advancing past files left over from before a wrap.
func nextSession(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read log directory: %w", err)
	}

	latest := -1
	var latestMod time.Time
	for _, e := range entries {
		m := fileNameRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		mod := info.ModTime()
		if latest == -1 || mod.After(latestMod) || (mod.Equal(latestMod) && n > latest) {
			latest = n
			latestMod = mod
		}
	}
	return (latest + 1) % sessionWrap, nil
}

// prune keeps the newest files per category, by modification time so the
// ordering survives a session-number wrap.
func (l *Log) prune() {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return
	}

	type file struct {
		name string
		mod  time.Time
	}
	byCat := make(map[string][]file)
	for _, e := range entries {
		m := fileNameRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		byCat[m[1]] = append(byCat[m[1]], file{name: e.Name(), mod: info.ModTime()})
	}

	for _, files := range byCat {
		sort.Slice(files, func(i, j int) bool {
			return files[i].mod.After(files[j].mod)
		})
		// The run about to start adds one more file per category.
		for i := keepPerCat - 1; i < len(files); i++ {
			_ = os.Remove(filepath.Join(l.dir, files[i].name))
		}
	}
}
