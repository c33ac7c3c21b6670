package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeSource hands out a scripted sequence of tokens.
type fakeSource struct {
	mu      sync.Mutex
	tokens  []*Token
	errs    []error
	fetches int
}

func (f *fakeSource) Fetch(ctx context.Context) (*Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.fetches
	f.fetches++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.tokens) {
		return f.tokens[i], nil
	}
	return f.tokens[len(f.tokens)-1], nil
}

func (f *fakeSource) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func freshToken(s string) *Token {
	return &Token{AccessToken: s, ExpiresAt: time.Now().Add(time.Hour)}
}

func TestStartFetchesInitialToken(t *testing.T) {
	src := &fakeSource{tokens: []*Token{freshToken("t1")}}

	m, err := StartTokenManager(context.Background(), src, ManagerOptions{})
	require.NoError(t, err)
	defer m.Stop()

	require.Equal(t, "t1", m.Token().AccessToken)
	require.Equal(t, 1, src.fetchCount())
}

func TestStartFailsWhenInitialFetchFails(t *testing.T) {
	src := &fakeSource{errs: []error{errors.New("endpoint down")}}

	_, err := StartTokenManager(context.Background(), src, ManagerOptions{})
	require.ErrorContains(t, err, "endpoint down")
}

func TestForceRefreshSwapsToken(t *testing.T) {
	src := &fakeSource{tokens: []*Token{freshToken("t1"), freshToken("t2")}}

	m, err := StartTokenManager(context.Background(), src, ManagerOptions{})
	require.NoError(t, err)
	defer m.Stop()

	m.ForceRefresh()
	require.Eventually(t, func() bool {
		return m.Token().AccessToken == "t2"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSchedulerRefreshesExpiringToken(t *testing.T) {
	// The initial token is already inside the refresh lead, so the very
	// first scheduler pass must request a refresh.
	expiring := &Token{AccessToken: "old", ExpiresAt: time.Now().Add(time.Second)}
	src := &fakeSource{tokens: []*Token{expiring, freshToken("new")}}

	m, err := StartTokenManager(context.Background(), src, ManagerOptions{
		CheckInterval: 10 * time.Millisecond,
	})
	require.NoError(t, err)
	defer m.Stop()

	require.Eventually(t, func() bool {
		return m.Token().AccessToken == "new"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRefreshFailureKeepsCurrentToken(t *testing.T) {
	src := &fakeSource{
		tokens: []*Token{freshToken("t1")},
		errs:   []error{nil, errors.New("transient")},
	}

	m, err := StartTokenManager(context.Background(), src, ManagerOptions{})
	require.NoError(t, err)
	defer m.Stop()

	m.ForceRefresh()
	require.Eventually(t, func() bool {
		return src.fetchCount() >= 2
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, "t1", m.Token().AccessToken)
}

func TestStopInterruptsFailureBackoff(t *testing.T) {
	src := &fakeSource{
		tokens: []*Token{freshToken("t1")},
		errs:   []error{nil, errors.New("transient")},
	}

	m, err := StartTokenManager(context.Background(), src, ManagerOptions{})
	require.NoError(t, err)

	m.ForceRefresh()
	require.Eventually(t, func() bool {
		return src.fetchCount() >= 2
	}, 2*time.Second, time.Millisecond)

	// The consumer is now in its failure backoff; Stop must not wait it out.
	start := time.Now()
	m.Stop()
	require.Less(t, time.Since(start), refreshFailureBackoff)
}

func TestStopIsIdempotent(t *testing.T) {
	src := &fakeSource{tokens: []*Token{freshToken("t1")}}

	m, err := StartTokenManager(context.Background(), src, ManagerOptions{})
	require.NoError(t, err)

	m.Stop()
	m.Stop()
}

func TestExpiresWithin(t *testing.T) {
	tok := &Token{ExpiresAt: time.Now().Add(2 * time.Minute)}
	require.True(t, tok.ExpiresWithin(5*time.Minute))
	require.False(t, tok.ExpiresWithin(time.Minute))
}
