package credstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pscheid92/sessionhub/internal/domain"
	"github.com/spf13/afero"
)

// CredsFile is the primary credential file of a session directory.
const CredsFile = "creds.json"

// RestoreResult reports whether a selected-files expansion succeeded.
type RestoreResult struct {
	OK     bool
	Reason string
}

// SelectedFilesRestorer expands the latest selected-files payload of a session into targetDir.
type SelectedFilesRestorer interface {
	Restore(ctx context.Context, sessionID, targetDir string, fetch domain.CredentialFetcher) RestoreResult
}

type Store struct {
	fs       afero.Fs
	base     string
	restorer SelectedFilesRestorer
	fetch    domain.CredentialFetcher
}

// NewStore creates a store rooted at base. restorer may be nil, in which case every
// selected-files expansion counts as failed.
func NewStore(fs afero.Fs, base string, restorer SelectedFilesRestorer, fetch domain.CredentialFetcher) *Store {
	return &Store{fs: fs, base: base, restorer: restorer, fetch: fetch}
}

func (s *Store) Base() string { return s.base }

// Dir returns the credential directory of a session.
func (s *Store) Dir(sessionID string) string {
	return filepath.Join(s.base, sessionID)
}

// EnsureDirectory creates the session directory if needed and returns its path.
func (s *Store) EnsureDirectory(sessionID string) (string, error) {
	if !validSessionID(sessionID) {
		return "", fmt.Errorf("invalid session id %q: %w", sessionID, domain.ErrInvalidIdentifier)
	}
	dir := s.Dir(sessionID)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %v: %w", dir, err, domain.ErrTransientIO)
	}
	return dir, nil
}

// Materialize brings the session directory in line with the record. Existing files are
// never overwritten except by a successful expansion.
func (s *Store) Materialize(ctx context.Context, rec domain.CredentialRecord) (Outcome, error) {
	log := slog.With("session_id", rec.SessionID)

	dir, err := s.EnsureDirectory(rec.SessionID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to ensure credential directory", "error", err)
		return OutcomeError, err
	}
	credsPath := filepath.Join(dir, CredsFile)

	f := facts{selected: rec.HasSelectedFiles()}
	stripped, hasContent := rec.StrippedBlob()
	f.content = hasContent

	if f.credsExists, err = s.exists(credsPath); err != nil {
		log.ErrorContext(ctx, "Failed to stat credential file", "error", err)
		return OutcomeError, err
	}

	for {
		switch decide(f) {
		case actionExpand:
			res := s.expand(ctx, rec.SessionID, dir)
			f.attempted, f.expanded = true, res.OK
			if !res.OK {
				log.WarnContext(ctx, "Selected files restore failed", "reason", res.Reason)
				if f.credsExists, err = s.exists(credsPath); err != nil {
					log.ErrorContext(ctx, "Failed to stat credential file", "error", err)
					return OutcomeError, err
				}
			}

		case actionFinishExpanded:
			log.InfoContext(ctx, "Restored selected credential files")
			return OutcomeExpanded, nil

		case actionKeepExisting:
			log.DebugContext(ctx, "Keeping existing credential file")
			return OutcomeKeptExisting, nil

		case actionWriteFallback:
			if err := s.writeAtomic(dir, CredsFile, stripped); err != nil {
				log.ErrorContext(ctx, "Failed to write fallback credentials", "error", err)
				return OutcomeError, err
			}
			log.InfoContext(ctx, "Wrote sanitized fallback credentials")
			return OutcomeWroteFallback, nil

		case actionWriteLegacy:
			if err := s.writeAtomic(dir, CredsFile, prettyJSON(rec.Blob)); err != nil {
				log.ErrorContext(ctx, "Failed to write credentials", "error", err)
				return OutcomeError, err
			}
			log.InfoContext(ctx, "Wrote credentials from database")
			return OutcomeWroteLegacy, nil

		case actionCorrupt:
			log.ErrorContext(ctx, "Credential record has no usable content")
			return OutcomeCorrupt, fmt.Errorf("session %s: %w", rec.SessionID, domain.ErrCorruptCredential)
		}
	}
}

func (s *Store) expand(ctx context.Context, sessionID, dir string) RestoreResult {
	if s.restorer == nil || s.fetch == nil {
		return RestoreResult{Reason: domain.ErrCapabilityUnavailable.Error()}
	}
	return s.restorer.Restore(ctx, sessionID, dir, s.fetch)
}

// DiscoverRestorable lists session ids whose creds.json is a plain credential object.
// A missing base directory yields an empty list.
func (s *Store) DiscoverRestorable() ([]string, error) {
	entries, err := afero.ReadDir(s.fs, s.base)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.base, err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := afero.ReadFile(s.fs, filepath.Join(s.base, name, CredsFile))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			slog.Warn("Skipping unreadable credential file", "session_id", name, "error", err)
			continue
		}

		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
			slog.Warn("Skipping malformed credential file", "session_id", name)
			continue
		}
		if _, marked := fields[domain.SelectedFilesKey]; marked {
			slog.Warn("Skipping unexpanded selected-files payload", "session_id", name)
			continue
		}
		ids = append(ids, name)
	}

	sort.Strings(ids)
	return ids, nil
}

// RemoveSession deletes the credential directory of a session. Only logout calls this.
func (s *Store) RemoveSession(sessionID string) error {
	if !validSessionID(sessionID) {
		return fmt.Errorf("invalid session id %q: %w", sessionID, domain.ErrInvalidIdentifier)
	}
	if err := s.fs.RemoveAll(s.Dir(sessionID)); err != nil {
		return fmt.Errorf("remove %s: %w", s.Dir(sessionID), err)
	}
	return nil
}

func (s *Store) exists(path string) (bool, error) {
	ok, err := afero.Exists(s.fs, path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %v: %w", path, err, domain.ErrTransientIO)
	}
	return ok, nil
}

// writeAtomic writes through a temp file and renames it into place.
func (s *Store) writeAtomic(dir, name string, data []byte) error {
	tmp := filepath.Join(dir, "."+name+".tmp")
	if err := afero.WriteFile(s.fs, tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %v: %w", tmp, err, domain.ErrTransientIO)
	}
	if err := s.fs.Rename(tmp, filepath.Join(dir, name)); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("rename %s: %v: %w", tmp, err, domain.ErrTransientIO)
	}
	return nil
}

func prettyJSON(blob []byte) []byte {
	var buf bytes.Buffer
	if err := json.Indent(&buf, blob, "", "  "); err != nil {
		return blob
	}
	return buf.Bytes()
}

// validSessionID accepts plain directory names only.
func validSessionID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`) && !strings.HasPrefix(id, ".")
}

// HasCredentials reports whether the session directory holds creds.json.
func (s *Store) HasCredentials(sessionID string) bool {
	if !validSessionID(sessionID) {
		return false
	}
	ok, err := afero.Exists(s.fs, filepath.Join(s.Dir(sessionID), CredsFile))
	return err == nil && ok
}
