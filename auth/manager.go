package auth

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/firedoc/internal/logging"
)

const (
	// DefaultRefreshLead is how long before expiry a token is refreshed.
	DefaultRefreshLead = 5 * time.Minute
	// DefaultCheckInterval is how often the scheduler inspects the token.
	DefaultCheckInterval = time.Minute

	refreshFailureBackoff = time.Second
)

// TokenSource produces access tokens. *Credentials is the production
// implementation.
type TokenSource interface {
	Fetch(ctx context.Context) (*Token, error)
}

// ManagerOptions tune the refresh schedule.
type ManagerOptions struct {
	// CheckInterval between expiry inspections. Defaults to DefaultCheckInterval.
	CheckInterval time.Duration
	// RefreshLead before expiry at which a refresh is requested.
	// Defaults to DefaultRefreshLead.
	RefreshLead time.Duration
	// Logger for refresh events. Defaults to a nop logger.
	Logger logging.Logger
}

// TokenManager keeps one shared access token continuously fresh.
//
// Two background goroutines run until Stop: a scheduler that periodically
// checks the current token's expiry and signals a refresh when it falls
// within the lead window, and a consumer that performs refreshes one at a
// time, swapping the shared token atomically on success. Token never blocks
// and never performs I/O, so request paths read the credential for free.
type TokenManager struct {
	source        TokenSource
	current       atomic.Pointer[Token]
	refreshCh     chan time.Time
	done          chan struct{}
	stopOnce      sync.Once
	wg            sync.WaitGroup
	checkInterval time.Duration
	refreshLead   time.Duration
	log           logging.Logger
}

// StartTokenManager fetches an initial token synchronously and starts the
// refresh machinery. The caller owns the manager and must Stop it.
func StartTokenManager(ctx context.Context, source TokenSource, opts ManagerOptions) (*TokenManager, error) {
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = DefaultCheckInterval
	}
	if opts.RefreshLead <= 0 {
		opts.RefreshLead = DefaultRefreshLead
	}
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger{}
	}

	tok, err := source.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	m := &TokenManager{
		source:        source,
		refreshCh:     make(chan time.Time, 1),
		done:          make(chan struct{}),
		checkInterval: opts.CheckInterval,
		refreshLead:   opts.RefreshLead,
		log:           opts.Logger,
	}
	m.current.Store(tok)

	m.wg.Add(2)
	go m.scheduleLoop()
	go m.refreshLoop()
	return m, nil
}

// Token returns the current access token. Lock-free; callers always observe
// either the previous or the next token, never a partial update.
func (m *TokenManager) Token() *Token {
	return m.current.Load()
}

// ForceRefresh requests an immediate out-of-schedule refresh. It never
// blocks; if a refresh is already pending the request coalesces with it.
func (m *TokenManager) ForceRefresh() {
	select {
	case m.refreshCh <- time.Now():
	default:
	}
}

// Stop shuts down the scheduler and the refresh consumer and waits for them
// to exit. An in-flight refresh is allowed to complete. Stop is idempotent.
func (m *TokenManager) Stop() {
	m.stopOnce.Do(func() { close(m.done) })
	m.wg.Wait()
}

func (m *TokenManager) scheduleLoop() {
	defer m.wg.Done()
	m.log.Debug(context.Background(), "token refresh scheduler started",
		"check_interval", m.checkInterval, "refresh_lead", m.refreshLead)

	timer := time.NewTimer(m.checkInterval)
	defer timer.Stop()

	for {
		if tok := m.current.Load(); tok.ExpiresWithin(m.refreshLead) {
			m.log.Debug(context.Background(), "token expires soon, requesting refresh",
				"expires_at", tok.ExpiresAt)
			m.ForceRefresh()
		}

		select {
		case <-timer.C:
			timer.Reset(m.checkInterval)
		case <-m.done:
			m.log.Info(context.Background(), "token refresh scheduler stopped")
			return
		}
	}
}

func (m *TokenManager) refreshLoop() {
	defer m.wg.Done()

	for {
		select {
		case <-m.done:
			m.log.Info(context.Background(), "token refresh loop stopped")
			return
		case requestedAt := <-m.refreshCh:
			ctx := context.Background()
			tok, err := m.source.Fetch(ctx)
			if err != nil {
				m.log.Error(ctx, "token refresh failed", "error", err)
				select {
				case <-time.After(refreshFailureBackoff):
				case <-m.done:
					m.log.Info(ctx, "token refresh loop stopped")
					return
				}
				continue
			}
			m.current.Store(tok)
			m.log.Info(ctx, "token refreshed",
				"requested_at", requestedAt, "expires_at", tok.ExpiresAt)
		}
	}
}
