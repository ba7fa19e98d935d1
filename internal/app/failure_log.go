package app

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
)

// FailureLog durably records per-session restore failures. It is never read back.
type FailureLog interface {
	Append(sessionID, reason string) error
}

// FileFailureLog appends one line per failure to a file.
type FileFailureLog struct {
	fs    afero.Fs
	path  string
	clock clockwork.Clock
	mu    sync.Mutex
}

func NewFileFailureLog(fs afero.Fs, path string, clock clockwork.Clock) *FileFailureLog {
	return &FileFailureLog{fs: fs, path: path, clock: clock}
}

func (l *FileFailureLog) Append(sessionID, reason string) error {
	reason = strings.Join(strings.Fields(reason), " ")
	line := fmt.Sprintf("[%s] Session %s restore failed: %s\n", l.clock.Now().UTC().Format(time.RFC3339), sessionID, reason)

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := l.fs.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open failure log: %w", err)
	}
	if _, err := f.WriteString(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("append failure log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close failure log: %w", err)
	}
	return nil
}
