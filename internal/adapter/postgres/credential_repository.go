package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pscheid92/sessionhub/internal/adapter/postgres/sqlcgen"
	"github.com/pscheid92/sessionhub/internal/domain"
	"github.com/pscheid92/sessionhub/internal/platform/crypto"
)

// CredentialRepo stores credential blobs, encrypted at rest when a key is configured.
type CredentialRepo struct {
	q      *sqlcgen.Queries
	crypto crypto.Service
}

var _ domain.CredentialRepository = (*CredentialRepo)(nil)

func NewCredentialRepo(pool *pgxpool.Pool, cryptoSvc crypto.Service) *CredentialRepo {
	return &CredentialRepo{
		q:      sqlcgen.New(pool),
		crypto: cryptoSvc,
	}
}

func (r *CredentialRepo) toDomain(row sqlcgen.CredentialRecord) (domain.CredentialRecord, error) {
	blob, err := r.crypto.Decrypt(row.Creds)
	if err != nil {
		return domain.CredentialRecord{}, fmt.Errorf("failed to decrypt credentials: %w", err)
	}
	return domain.CredentialRecord{
		SessionID: row.SessionID,
		Blob:      blob,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// List returns every record. Rows that fail to decrypt are logged and skipped.
func (r *CredentialRepo) List(ctx context.Context) ([]domain.CredentialRecord, error) {
	rows, err := r.q.ListCredentialRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list credential records: %w", err)
	}

	records := make([]domain.CredentialRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := r.toDomain(row)
		if err != nil {
			slog.ErrorContext(ctx, "Skipping unreadable credential record", "session_id", row.SessionID, "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *CredentialRepo) Get(ctx context.Context, sessionID string) (*domain.CredentialRecord, error) {
	row, err := r.q.GetCredentialRecord(ctx, sessionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCredentialNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential record: %w", err)
	}

	rec, err := r.toDomain(row)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *CredentialRepo) Upsert(ctx context.Context, sessionID string, blob json.RawMessage) error {
	sealed, err := r.crypto.Encrypt(blob)
	if err != nil {
		return fmt.Errorf("failed to encrypt credentials: %w", err)
	}

	err = r.q.UpsertCredentialRecord(ctx, sqlcgen.UpsertCredentialRecordParams{
		SessionID: sessionID,
		Creds:     sealed,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert credential record: %w", err)
	}
	return nil
}

func (r *CredentialRepo) Delete(ctx context.Context, sessionID string) (bool, error) {
	n, err := r.q.DeleteCredentialRecord(ctx, sessionID)
	if err != nil {
		return false, fmt.Errorf("failed to delete credential record: %w", err)
	}
	return n > 0, nil
}
