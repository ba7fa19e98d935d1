package domain

import (
	"context"
	"encoding/json"
	"time"
)

// SelectedFilesKey marks a credential blob as a partial snapshot of named files.
const SelectedFilesKey = "_selected_files"

// CredentialRecord is the persisted authentication material for one session.
// Blob is a JSON object; when it carries SelectedFilesKey it is a selected-files payload.
type CredentialRecord struct {
	SessionID string
	Blob      json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasSelectedFiles reports whether the blob is a selected-files payload.
func (r CredentialRecord) HasSelectedFiles() bool {
	fields, err := r.fields()
	if err != nil {
		return false
	}
	raw, ok := fields[SelectedFilesKey]
	return ok && len(raw) > 0 && string(raw) != "null"
}

// StrippedBlob returns the blob without the selected-files marker. The second return value
// is false when nothing usable remains.
func (r CredentialRecord) StrippedBlob() (json.RawMessage, bool) {
	fields, err := r.fields()
	if err != nil {
		return nil, false
	}
	delete(fields, SelectedFilesKey)
	if len(fields) == 0 {
		return nil, false
	}
	out, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return nil, false
	}
	return out, true
}

func (r CredentialRecord) fields() (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(r.Blob, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]json.RawMessage{}
	}
	return fields, nil
}

// SelectedFiles is the structured body stored under SelectedFilesKey.
type SelectedFiles struct {
	Files   map[string]SelectedFile `json:"files"`
	TakenAt time.Time               `json:"taken_at"`
}

type SelectedFile struct {
	Data     string `json:"data"`
	Encoding string `json:"encoding,omitempty"`
}

// CredentialRepository persists credential records.
type CredentialRepository interface {
	List(ctx context.Context) ([]CredentialRecord, error)
	Get(ctx context.Context, sessionID string) (*CredentialRecord, error)
	Upsert(ctx context.Context, sessionID string, blob json.RawMessage) error
	Delete(ctx context.Context, sessionID string) (bool, error)
}

// CredentialFetcher loads the latest record for a session.
type CredentialFetcher func(ctx context.Context, sessionID string) (*CredentialRecord, error)
