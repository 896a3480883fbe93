package flow

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kjcheon2024/shop-orders-sub000/client"
)

// collectResults wires OnResult into a slice the test can inspect.
func collectResults(p *PasswordPreview) func() []*client.LoginResult {
	var mu sync.Mutex
	var results []*client.LoginResult
	p.OnResult = func(res *client.LoginResult, err error) {
		mu.Lock()
		results = append(results, res)
		mu.Unlock()
	}
	return func() []*client.LoginResult {
		mu.Lock()
		defer mu.Unlock()
		out := make([]*client.LoginResult, len(results))
		copy(out, results)
		return out
	}
}

func TestPreviewResolvesAfterFlush(t *testing.T) {
	backend := newFakeBackend()
	preview := NewPasswordPreview(backend)
	results := collectResults(preview)

	preview.Type("alpha-secret-1")
	preview.Flush()

	got := results()
	assert.Len(t, got, 1)
	assert.NotNil(t, got[0])
	assert.Equal(t, "Alpha Foods", got[0].CompanyName)
	assert.Len(t, got[0].Items, 3)
}

func TestPreviewEmptyPasswordClearsWithoutLookup(t *testing.T) {
	backend := newFakeBackend()
	preview := NewPasswordPreview(backend)
	results := collectResults(preview)

	preview.Type("alpha")
	preview.Type("")
	preview.Flush()

	// The clear is reported immediately and nothing hits the network.
	got := results()
	assert.Len(t, got, 1)
	assert.Nil(t, got[0])
	assert.Equal(t, 0, backend.callCount("findCompanyByPassword"))
}

func TestPreviewStaleResponseIgnored(t *testing.T) {
	backend := newFakeBackend()
	preview := NewPasswordPreview(backend)
	results := collectResults(preview)

	// The first keystroke's lookup comes back after the second keystroke
	// already superseded it.
	preview.Type("alpha")
	staleToken := preview.token
	preview.Type("alpha-secret-1")
	preview.Flush()

	stale := &client.LoginResult{CompanyName: "Stale Co"}
	preview.apply(staleToken, "alpha", stale, nil)

	got := results()
	assert.Len(t, got, 1)
	assert.Equal(t, "Alpha Foods", got[0].CompanyName)

	// The cache still holds the fresh result.
	assert.Equal(t, "Alpha Foods", preview.cached.CompanyName)
}

func TestPreviewStopSupersedesInFlight(t *testing.T) {
	backend := newFakeBackend()
	preview := NewPasswordPreview(backend)
	results := collectResults(preview)

	preview.Type("alpha-secret-1")
	token := preview.token
	preview.Stop()

	preview.apply(token, "alpha-secret-1", &client.LoginResult{CompanyName: "Late Co"}, nil)
	assert.Empty(t, results())
	assert.Nil(t, preview.cached)
}

func TestLoginReusesCachedPreview(t *testing.T) {
	backend := newFakeBackend()
	preview := NewPasswordPreview(backend)
	session := NewSession(backend, nil)

	preview.Type("alpha-secret-1")
	preview.Flush()
	assert.Equal(t, 1, backend.callCount("findCompanyByPassword"))

	// Login with the previewed password: no second lookup.
	view, err := preview.Login(context.Background(), session, "alpha-secret-1")
	assert.NoError(t, err)
	assert.Equal(t, ViewOrder, view)
	assert.Equal(t, "Alpha Foods", session.CompanyName)
	assert.Equal(t, 1, backend.callCount("findCompanyByPassword"))
}

func TestLoginWithoutPreviewFiresOneLookup(t *testing.T) {
	backend := newFakeBackend()
	preview := NewPasswordPreview(backend)
	session := NewSession(backend, nil)

	view, err := preview.Login(context.Background(), session, "alpha-secret-1")
	assert.NoError(t, err)
	assert.Equal(t, ViewOrder, view)
	assert.Equal(t, 1, backend.callCount("findCompanyByPassword"))
}

func TestLoginWrongPassword(t *testing.T) {
	backend := newFakeBackend()
	preview := NewPasswordPreview(backend)
	session := NewSession(backend, nil)

	view, err := preview.Login(context.Background(), session, "wrong")
	assert.Error(t, err)
	assert.Equal(t, ViewLogin, view)
	assert.False(t, session.LoggedIn())
}

func TestLoginLandsOnBlockedView(t *testing.T) {
	backend := newFakeBackend()
	backend.blocked = true
	backend.blockReason = "under review"
	preview := NewPasswordPreview(backend)
	session := NewSession(backend, nil)

	view, err := preview.Login(context.Background(), session, "alpha-secret-1")
	assert.NoError(t, err)
	assert.Equal(t, ViewBlocked, view)
	assert.Equal(t, "under review", session.BlockReason)
}
