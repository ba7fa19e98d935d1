package credstore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/pscheid92/sessionhub/internal/domain"
	"github.com/spf13/afero"
)

const stagingPrefix = ".staging-"

// FileRestorer expands selected-files payloads on an afero filesystem.
type FileRestorer struct {
	fs afero.Fs
}

func NewFileRestorer(fs afero.Fs) *FileRestorer {
	return &FileRestorer{fs: fs}
}

// Restore stages every file of the latest payload in a hidden directory inside targetDir
// and renames them into place. creds.json is written without the selected-files marker.
func (r *FileRestorer) Restore(ctx context.Context, sessionID, targetDir string, fetch domain.CredentialFetcher) RestoreResult {
	rec, err := fetch(ctx, sessionID)
	if err != nil {
		return failed("fetch record: %v", err)
	}
	if rec == nil {
		return failed("no record")
	}

	files, err := decodePayload(rec.Blob)
	if err != nil {
		return failed("%v", err)
	}

	staging := filepath.Join(targetDir, stagingPrefix+randomSuffix())
	if err := r.fs.MkdirAll(staging, 0o700); err != nil {
		return failed("create staging dir: %v", err)
	}
	defer func() {
		if err := r.fs.RemoveAll(staging); err != nil {
			slog.WarnContext(ctx, "Failed to remove staging dir", "session_id", sessionID, "path", staging, "error", err)
		}
	}()

	for name, data := range files {
		if err := afero.WriteFile(r.fs, filepath.Join(staging, name), data, 0o600); err != nil {
			return failed("stage %s: %v", name, err)
		}
	}

	// creds.json last so a partial rename never leaves new creds next to stale key files
	for _, name := range renameOrder(files) {
		if err := r.fs.Rename(filepath.Join(staging, name), filepath.Join(targetDir, name)); err != nil {
			return failed("move %s into place: %v", name, err)
		}
	}

	return RestoreResult{OK: true}
}

// decodePayload validates a selected-files payload and returns the decoded files.
func decodePayload(blob json.RawMessage) (map[string][]byte, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(blob, &envelope); err != nil {
		return nil, fmt.Errorf("record is not a JSON object: %w", err)
	}
	raw, ok := envelope[domain.SelectedFilesKey]
	if !ok {
		return nil, fmt.Errorf("record has no %s payload", domain.SelectedFilesKey)
	}

	var selected domain.SelectedFiles
	if err := json.Unmarshal(raw, &selected); err != nil {
		return nil, fmt.Errorf("malformed %s payload: %w", domain.SelectedFilesKey, err)
	}
	if _, ok := selected.Files[CredsFile]; !ok {
		return nil, fmt.Errorf("payload has no %s", CredsFile)
	}

	files := make(map[string][]byte, len(selected.Files))
	for name, file := range selected.Files {
		if !validFileName(name) {
			return nil, fmt.Errorf("invalid file name %q", name)
		}
		data, err := decodeFile(file.Data, file.Encoding)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		files[name] = data
	}

	creds, err := sanitizeCreds(files[CredsFile])
	if err != nil {
		return nil, err
	}
	files[CredsFile] = creds
	return files, nil
}

// sanitizeCreds drops a nested selected-files marker from creds.json.
func sanitizeCreds(data []byte) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil, fmt.Errorf("%s is not a JSON object", CredsFile)
	}
	if _, ok := fields[domain.SelectedFilesKey]; !ok {
		return data, nil
	}
	delete(fields, domain.SelectedFilesKey)
	out, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("re-encode %s: %w", CredsFile, err)
	}
	return out, nil
}

func renameOrder(files map[string][]byte) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		if name != CredsFile {
			names = append(names, name)
		}
	}
	return append(names, CredsFile)
}

func validFileName(name string) bool {
	return name != "" && !strings.HasPrefix(name, ".") && filepath.Base(name) == name && !strings.ContainsAny(name, `/\`)
}

func failed(format string, args ...any) RestoreResult {
	return RestoreResult{Reason: fmt.Sprintf(format, args...)}
}

func randomSuffix() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
