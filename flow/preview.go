package flow

import (
	"context"
	"sync"
	"time"

	"github.com/kjcheon2024/shop-orders-sub000/client"
)

// PasswordPreview implements the login screen's live lookup: as the user
// types, the password resolves (after an idle debounce) to a company name
// and catalog. Each keystroke takes a monotonically increasing token;
// only the response carrying the newest token is applied, so a slow stale
// lookup can never overwrite a fresher one.
type PasswordPreview struct {
	backend Backend

	// Debounce is the idle delay before a lookup fires.
	Debounce time.Duration
	// OnResult receives the applied preview (nil result means the preview
	// should be hidden and login disabled).
	OnResult func(*client.LoginResult, error)

	mu       sync.Mutex
	token    uint64
	pending  *time.Timer
	password string
	cached   *client.LoginResult
	cachedPw string
}

func NewPasswordPreview(backend Backend) *PasswordPreview {
	return &PasswordPreview{
		backend:  backend,
		Debounce: 200 * time.Millisecond,
	}
}

// Type registers a keystroke. The previous pending lookup is superseded.
func (p *PasswordPreview) Type(password string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.token++
	p.password = password
	if p.pending != nil {
		p.pending.Stop()
		p.pending = nil
	}

	if password == "" {
		p.cached = nil
		p.cachedPw = ""
		if p.OnResult != nil {
			p.OnResult(nil, nil)
		}
		return
	}

	token := p.token
	if p.Debounce <= 0 {
		go p.lookup(token, password)
		return
	}
	p.pending = time.AfterFunc(p.Debounce, func() {
		p.lookup(token, password)
	})
}

// Flush runs the pending lookup immediately; tests and the CLI use it to
// avoid waiting out the debounce.
func (p *PasswordPreview) Flush() {
	p.mu.Lock()
	if p.pending != nil {
		p.pending.Stop()
		p.pending = nil
	}
	token := p.token
	password := p.password
	p.mu.Unlock()

	if password != "" {
		p.lookup(token, password)
	}
}

// Stop cancels any pending lookup (logout path).
func (p *PasswordPreview) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending != nil {
		p.pending.Stop()
		p.pending = nil
	}
	p.token++ // supersede anything in flight
	p.cached = nil
	p.cachedPw = ""
}

func (p *PasswordPreview) lookup(token uint64, password string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := p.backend.FindCompanyByPassword(ctx, password)
	p.apply(token, password, result, err)
}

// apply installs a lookup response unless a newer token superseded it.
func (p *PasswordPreview) apply(token uint64, password string, result *client.LoginResult, err error) {
	p.mu.Lock()
	if token != p.token {
		p.mu.Unlock()
		return // superseded; explicitly ignored
	}
	if err == nil && result != nil {
		p.cached = result
		p.cachedPw = password
	} else {
		p.cached = nil
		p.cachedPw = ""
	}
	callback := p.OnResult
	p.mu.Unlock()

	if callback != nil {
		if err != nil {
			callback(nil, err)
			return
		}
		callback(result, nil)
	}
}

// Login resolves the password into the session. If the preview already
// cached this exact password, the cache is used and no further request is
// made; otherwise one lookup fires.
func (p *PasswordPreview) Login(ctx context.Context, session *Session, password string) (View, error) {
	p.mu.Lock()
	cached := p.cached
	hit := cached != nil && p.cachedPw == password
	p.mu.Unlock()

	result := cached
	if !hit {
		var err error
		result, err = p.backend.FindCompanyByPassword(ctx, password)
		if err != nil {
			return ViewLogin, err
		}
	}

	session.ApplyLogin(result)
	return session.LandingView(), nil
}
