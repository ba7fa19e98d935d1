package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/pscheid92/sessionhub/internal/domain"
)

// purger erases every trace of a session: record, credential tree and registry entry.
type purger struct {
	creds    domain.CredentialRepository
	store    CredentialStore
	sessions Sessions
}

// purge reports whether anything existed. All three steps run even if one fails.
func (p purger) purge(ctx context.Context, sessionID string) (bool, error) {
	var errs []error

	deleted, err := p.creds.Delete(ctx, sessionID)
	if err != nil {
		errs = append(errs, fmt.Errorf("delete credential record: %w", err))
	}

	hadFiles := p.store.HasCredentials(sessionID)
	if err := p.store.RemoveSession(sessionID); err != nil {
		errs = append(errs, fmt.Errorf("remove credential directory: %w", err))
	}

	removed := p.sessions.Remove(sessionID)
	return deleted || hadFiles || removed, errors.Join(errs...)
}
