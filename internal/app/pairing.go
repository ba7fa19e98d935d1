package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/pscheid92/sessionhub/internal/adapter/metrics"
	"github.com/pscheid92/sessionhub/internal/domain"
	"github.com/pscheid92/sessionhub/internal/platform/logging"
)

// PairingResult is returned to the caller after the gateway issued a linking code.
type PairingResult struct {
	SessionID      string
	Code           string
	Country        Country
	CountryWarning bool
}

type PairingService struct {
	store      CredentialStore
	sessions   Sessions
	supervisor domain.ConnectionSupervisor
	lock       domain.SessionLock
	metrics    *metrics.SessionMetrics
}

// NewPairingService wires pairing. lock and m may be nil.
func NewPairingService(store CredentialStore, sessions Sessions, supervisor domain.ConnectionSupervisor, lock domain.SessionLock, m *metrics.SessionMetrics) *PairingService {
	if lock == nil {
		lock = noLock{}
	}
	return &PairingService{store: store, sessions: sessions, supervisor: supervisor, lock: lock, metrics: m}
}

// Pair requests a linking code for the phone number in raw. The registry is only
// written when the gateway returned a code.
func (p *PairingService) Pair(ctx context.Context, raw string) (PairingResult, error) {
	sessionID := NormalizeIdentifier(raw)
	if sessionID == "" {
		p.record("invalid")
		return PairingResult{}, domain.ErrInvalidIdentifier
	}
	log := logging.WithSession(sessionID)

	result := PairingResult{SessionID: sessionID}
	if country, ok := DetectCountry(sessionID); ok {
		result.Country = country
	} else {
		result.CountryWarning = true
		log.WarnContext(ctx, "Country not detected, continuing with pairing")
	}

	if p.sessions.IsConnected(sessionID) {
		p.record("already_connected")
		return PairingResult{}, domain.ErrAlreadyConnected
	}

	release, err := p.sessions.Acquire(sessionID)
	if err != nil {
		p.record(rejectionLabel(err))
		return PairingResult{}, err
	}
	defer release()

	unlock, err := p.lock.Acquire(ctx, sessionID)
	if err != nil {
		p.record("busy")
		return PairingResult{}, err
	}
	defer unlock()

	dir, err := p.store.EnsureDirectory(sessionID)
	if err != nil {
		p.record("failed")
		return PairingResult{}, fmt.Errorf("prepare credential directory: %w", err)
	}

	dropStaleHandle(ctx, p.sessions, p.supervisor, sessionID)
	closes := p.sessions.Closes(sessionID)

	conn, code, err := pairConnection(ctx, p.supervisor, sessionID, sessionID)
	if err == nil && code == "" {
		err = errors.New("gateway returned an empty pairing code")
	}
	if err == nil {
		_, committed := p.sessions.CommitOpen(sessionID, closes, domain.SessionPatch{
			Status:        domain.StatusPtr(domain.StatusAwaitingPairing),
			Healthy:       domain.BoolPtr(false),
			CredentialDir: domain.StringPtr(dir),
			Conn:          conn,
			LastError:     domain.StringPtr(""),
		})
		if !committed {
			err = errClosedWhileOpening
		}
	}
	if err != nil {
		p.record("failed")
		log.ErrorContext(ctx, "Pairing failed", "error", err)
		return PairingResult{}, fmt.Errorf("%w: %v", domain.ErrPairingFailed, err)
	}
	p.record("ok")
	log.InfoContext(ctx, "Pairing code issued", "country", result.Country.ISO)

	result.Code = code
	return result, nil
}

func (p *PairingService) record(result string) {
	if p.metrics != nil {
		p.metrics.PairingRequests.WithLabelValues(result).Inc()
	}
}

func rejectionLabel(err error) string {
	if errors.Is(err, domain.ErrAlreadyConnected) {
		return "already_connected"
	}
	return "busy"
}
