package token

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/exmail-sync/internal/errs"
)

// DefaultThreshold is the grace window before real expiry in which a token is
// already treated as expired.
const DefaultThreshold = 10 * time.Minute

// Fetcher exchanges corp credentials for a token and its TTL.
type Fetcher interface {
	FetchToken(ctx context.Context, corpID, secret string) (string, time.Duration, error)
}

// Manager owns one Credential. Refreshes are serialized; all methods are safe for
// concurrent use.
type Manager struct {
	mu        sync.Mutex
	cred      Credential
	fetcher   Fetcher
	store     Store
	threshold time.Duration
	now       func() time.Time
	log       *zap.Logger
}

// NewManager constructs a Manager starting from cred.
func NewManager(cred Credential, f Fetcher, s Store, threshold time.Duration, log *zap.Logger) *Manager {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{cred: cred, fetcher: f, store: s, threshold: threshold, now: time.Now, log: log}
}

// Token returns a valid access token, refreshing it when needed.
func (m *Manager) Token(ctx context.Context) (string, error) {
	return m.RefreshIfNeeded(ctx, m.now())
}

// Valid reports whether the held token is usable at now: now + threshold < expiry.
func (m *Manager) Valid(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.validLocked(now)
}

func (m *Manager) validLocked(now time.Time) bool {
	if m.cred.AccessToken == "" || m.cred.AccessTokenExpiry == nil {
		return false
	}
	return now.Add(m.threshold).Before(*m.cred.AccessTokenExpiry)
}

// RefreshIfNeeded returns the held token when valid at now, otherwise fetches a new
// one. Every refresh attempt is persisted: success stores the new token and expiry,
// failure clears both so the next call retries.
func (m *Manager) RefreshIfNeeded(ctx context.Context, now time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.validLocked(now) {
		return m.cred.AccessToken, nil
	}

	tok, ttl, err := m.fetcher.FetchToken(ctx, m.cred.CorpID, m.cred.CorpSecret)
	if err != nil && ctx.Err() != nil {
		// the caller gave up; the held state says nothing new about the credential
		return "", fmt.Errorf("token refresh: %w", ctx.Err())
	}
	if err != nil {
		m.cred.AccessToken = ""
		m.cred.AccessTokenExpiry = nil
		m.persist()
		m.log.Error("token refresh failed", zap.String("corp_id", m.cred.CorpID), zap.Error(err))
		return "", fmt.Errorf("%w: %w", errs.ErrAuth, err)
	}

	exp := now.Add(ttl)
	m.cred.AccessToken = tok
	m.cred.AccessTokenExpiry = &exp
	m.persist()
	m.log.Info("token refreshed", zap.String("corp_id", m.cred.CorpID), zap.Time("expiry", exp))
	return tok, nil
}

// Credential returns a copy of the held state.
func (m *Manager) Credential() Credential {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.cred
	if c.AccessTokenExpiry != nil {
		exp := *c.AccessTokenExpiry
		c.AccessTokenExpiry = &exp
	}
	return c
}

// persist writes state; a write failure does not invalidate the in-memory token.
func (m *Manager) persist() {
	if m.store == nil {
		return
	}
	if err := m.store.Save(m.cred); err != nil {
		m.log.Warn("persist credential", zap.Error(err))
	}
}
