package credstore

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/pscheid92/sessionhub/internal/domain"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const testBase = "/auth"

// selectedPayload builds a record blob from plain file contents plus optional legacy fields.
func selectedPayload(t *testing.T, files map[string]string, legacy map[string]any) json.RawMessage {
	t.Helper()

	selected := domain.SelectedFiles{Files: map[string]domain.SelectedFile{}, TakenAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	for name, content := range files {
		selected.Files[name] = domain.SelectedFile{Data: base64.StdEncoding.EncodeToString([]byte(content))}
	}

	envelope := map[string]any{domain.SelectedFilesKey: selected}
	for k, v := range legacy {
		envelope[k] = v
	}
	blob, err := json.Marshal(envelope)
	require.NoError(t, err)
	return blob
}

// staticFetcher serves records from a map.
func staticFetcher(records ...domain.CredentialRecord) domain.CredentialFetcher {
	byID := make(map[string]domain.CredentialRecord, len(records))
	for _, r := range records {
		byID[r.SessionID] = r
	}
	return func(_ context.Context, id string) (*domain.CredentialRecord, error) {
		r, ok := byID[id]
		if !ok {
			return nil, domain.ErrCredentialNotFound
		}
		return &r, nil
	}
}

type failingRestorer struct{ calls int }

func (f *failingRestorer) Restore(context.Context, string, string, domain.CredentialFetcher) RestoreResult {
	f.calls++
	return RestoreResult{Reason: "gateway unreachable"}
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

func listDir(t *testing.T, fs afero.Fs, dir string) []string {
	t.Helper()
	entries, err := afero.ReadDir(fs, dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
