package token

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/and161185/exmail-sync/internal/errs"
)

type fakeFetcher struct {
	mu    sync.Mutex
	calls int
	tok   string
	ttl   time.Duration
	err   error
}

func (f *fakeFetcher) FetchToken(_ context.Context, corpID, secret string) (string, time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.tok, f.ttl, f.err
}

type memStore struct {
	saved []Credential
	err   error
}

func (s *memStore) Load() (Credential, error) {
	if len(s.saved) == 0 {
		return Credential{}, errs.ErrNotFound
	}
	return s.saved[len(s.saved)-1], nil
}

func (s *memStore) Save(c Credential) error {
	s.saved = append(s.saved, c)
	return s.err
}

func at(exp time.Time) *time.Time { return &exp }

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestRefreshIfNeeded_NoToken_Fetches(t *testing.T) {
	f := &fakeFetcher{tok: "new", ttl: 2 * time.Hour}
	st := &memStore{}
	m := NewManager(Credential{CorpID: "c", CorpSecret: "s"}, f, st, 0, nil)

	tok, err := m.RefreshIfNeeded(context.Background(), t0)
	require.NoError(t, err)
	require.Equal(t, "new", tok)
	require.Equal(t, 1, f.calls)

	require.Len(t, st.saved, 1)
	require.Equal(t, "new", st.saved[0].AccessToken)
	require.Equal(t, t0.Add(2*time.Hour), *st.saved[0].AccessTokenExpiry)
	require.True(t, m.Valid(t0))
}

func TestRefreshIfNeeded_ValidToken_NoFetch(t *testing.T) {
	f := &fakeFetcher{tok: "new", ttl: time.Hour}
	st := &memStore{}
	m := NewManager(Credential{AccessToken: "old", AccessTokenExpiry: at(t0.Add(11 * time.Minute))}, f, st, 10*time.Minute, nil)

	tok, err := m.RefreshIfNeeded(context.Background(), t0)
	require.NoError(t, err)
	require.Equal(t, "old", tok)
	require.Equal(t, 0, f.calls)
	require.Empty(t, st.saved)
}

func TestRefreshIfNeeded_Boundary(t *testing.T) {
	// refresh iff now + threshold >= expiry
	cases := []struct {
		name    string
		expiry  time.Time
		refresh bool
	}{
		{"well before", t0.Add(time.Hour), false},
		{"one second outside grace", t0.Add(10*time.Minute + time.Second), false},
		{"exactly at grace", t0.Add(10 * time.Minute), true},
		{"inside grace", t0.Add(5 * time.Minute), true},
		{"already expired", t0.Add(-time.Minute), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := &fakeFetcher{tok: "new", ttl: 2 * time.Hour}
			m := NewManager(Credential{AccessToken: "old", AccessTokenExpiry: at(tc.expiry)}, f, &memStore{}, 10*time.Minute, nil)

			tok, err := m.RefreshIfNeeded(context.Background(), t0)
			require.NoError(t, err)
			if tc.refresh {
				require.Equal(t, 1, f.calls)
				require.Equal(t, "new", tok)
			} else {
				require.Equal(t, 0, f.calls)
				require.Equal(t, "old", tok)
			}
			// after any successful call the token is valid at t0
			require.True(t, m.Valid(t0))
		})
	}
}

func TestRefreshIfNeeded_Failure_ClearsAndPersists(t *testing.T) {
	remote := &errs.RemoteError{Op: "gettoken", Code: 40001, Msg: "invalid secret"}
	f := &fakeFetcher{err: remote}
	st := &memStore{}
	m := NewManager(Credential{CorpID: "c", AccessToken: "old", AccessTokenExpiry: at(t0)}, f, st, 0, nil)

	tok, err := m.RefreshIfNeeded(context.Background(), t0)
	require.Equal(t, "", tok)
	require.ErrorIs(t, err, errs.ErrAuth)
	var re *errs.RemoteError
	require.True(t, errors.As(err, &re))
	require.Equal(t, 40001, re.Code)

	require.Len(t, st.saved, 1)
	require.Equal(t, "", st.saved[0].AccessToken)
	require.Nil(t, st.saved[0].AccessTokenExpiry)
	require.Equal(t, "c", st.saved[0].CorpID)

	// next call retries
	f.err = nil
	f.tok, f.ttl = "again", time.Hour
	tok, err = m.RefreshIfNeeded(context.Background(), t0)
	require.NoError(t, err)
	require.Equal(t, "again", tok)
	require.Equal(t, 2, f.calls)
}

func TestRefreshIfNeeded_PersistErrorKeepsToken(t *testing.T) {
	f := &fakeFetcher{tok: "new", ttl: time.Hour}
	st := &memStore{err: errors.New("disk full")}
	m := NewManager(Credential{}, f, st, 0, nil)

	tok, err := m.RefreshIfNeeded(context.Background(), t0)
	require.NoError(t, err)
	require.Equal(t, "new", tok)
}

func TestToken_ConcurrentCallersShareOneRefresh(t *testing.T) {
	f := &fakeFetcher{tok: "new", ttl: time.Hour}
	m := NewManager(Credential{}, f, nil, 0, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := m.Token(context.Background())
			require.NoError(t, err)
			require.Equal(t, "new", tok)
		}()
	}
	wg.Wait()
	require.Equal(t, 1, f.calls)
}

func TestCredential_ReturnsCopy(t *testing.T) {
	m := NewManager(Credential{AccessToken: "a", AccessTokenExpiry: at(t0)}, &fakeFetcher{}, nil, 0, nil)
	c := m.Credential()
	*c.AccessTokenExpiry = t0.Add(time.Hour)
	require.Equal(t, t0, *m.Credential().AccessTokenExpiry)
}

func TestRefreshIfNeeded_CancelledKeepsCredential(t *testing.T) {
	f := &fakeFetcher{err: context.Canceled}
	st := &memStore{}
	old := Credential{CorpID: "c", CorpSecret: "s", AccessToken: "old", AccessTokenExpiry: at(t0)}
	m := NewManager(old, f, st, 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.RefreshIfNeeded(ctx, t0)
	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, errs.ErrAuth)
	require.Empty(t, st.saved)
	require.Equal(t, "old", m.Credential().AccessToken)
}
