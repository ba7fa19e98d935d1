package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pscheid92/sessionhub/internal/domain"
	"github.com/spf13/afero"
)

// Snapshot builds a selected-files payload from the named files in the session directory.
// Missing optional files are skipped; creds.json is required.
func (s *Store) Snapshot(sessionID string, names []string, takenAt time.Time) (json.RawMessage, error) {
	if len(names) == 0 {
		names = []string{CredsFile}
	}

	selected := domain.SelectedFiles{Files: make(map[string]domain.SelectedFile, len(names)), TakenAt: takenAt.UTC()}
	for _, name := range names {
		if !validFileName(name) {
			return nil, fmt.Errorf("invalid file name %q", name)
		}
		data, err := afero.ReadFile(s.fs, filepath.Join(s.Dir(sessionID), name))
		if errors.Is(err, os.ErrNotExist) && name != CredsFile {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		payload, encoding := encodeFile(data)
		selected.Files[name] = domain.SelectedFile{Data: payload, Encoding: encoding}
	}

	blob, err := json.Marshal(map[string]domain.SelectedFiles{domain.SelectedFilesKey: selected})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return blob, nil
}
