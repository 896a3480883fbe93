package flow

import (
	"context"
	"sync"
	"time"

	"github.com/kjcheon2024/shop-orders-sub000/client"
)

// View is the screen the session lands on after login or a status refresh.
type View int

const (
	ViewLogin View = iota
	ViewOrder
	ViewBlocked
	ViewRestricted
)

// NameCache persists the company name across a page reload. The portal
// only ever stored this one key.
type NameCache interface {
	Put(name string)
	Get() string
	Clear()
}

type memoryNameCache struct {
	mu   sync.Mutex
	name string
}

func (m *memoryNameCache) Put(name string) { m.mu.Lock(); m.name = name; m.mu.Unlock() }
func (m *memoryNameCache) Get() string     { m.mu.Lock(); defer m.mu.Unlock(); return m.name }
func (m *memoryNameCache) Clear()          { m.mu.Lock(); m.name = ""; m.mu.Unlock() }

// Session replaces the page-global login state: one explicit object handed
// to every flow component.
type Session struct {
	backend  Backend
	notifier Notifier

	// Now is the session clock; tests pin it.
	Now func() time.Time

	CompanyName      string
	Items            []client.Item
	Blocked          bool
	BlockReason      string
	OrderTimeAllowed bool

	cache NameCache
}

func NewSession(backend Backend, notifier Notifier) *Session {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Session{
		backend:  backend,
		notifier: notifier,
		Now:      time.Now,
		cache:    &memoryNameCache{},
	}
}

// SetNameCache swaps the reload cache (e.g. for a browser-storage backed one).
func (s *Session) SetNameCache(cache NameCache) {
	if cache != nil {
		s.cache = cache
	}
}

func (s *Session) LoggedIn() bool {
	return s.CompanyName != ""
}

// ApplyLogin installs a resolved company into the session.
func (s *Session) ApplyLogin(res *client.LoginResult) {
	s.CompanyName = res.CompanyName
	s.Items = res.Items
	s.Blocked = res.OrderBlocked
	s.BlockReason = res.BlockReason
	s.OrderTimeAllowed = res.OrderTimeAllowed
	s.cache.Put(res.CompanyName)
}

// LandingView decides the first screen after login. Block state wins over
// the time restriction when both apply.
func (s *Session) LandingView() View {
	if !s.LoggedIn() {
		return ViewLogin
	}
	if s.Blocked {
		return ViewBlocked
	}
	if !s.OrderTimeAllowed {
		return ViewRestricted
	}
	return ViewOrder
}

// HasItem reports whether the item is in the company's current catalog.
func (s *Session) HasItem(name string) bool {
	for _, it := range s.Items {
		if it.Name == name {
			return true
		}
	}
	return false
}

// RefreshBlock re-polls the block flag; every sensitive transition calls
// this because an admin may have flipped it mid-flow.
func (s *Session) RefreshBlock(ctx context.Context) error {
	status, err := s.backend.CheckOrderBlock(ctx, s.CompanyName)
	if err != nil {
		return err
	}
	s.Blocked = status.Blocked
	s.BlockReason = status.Reason
	return nil
}

// OrderingOpen applies the local clock gate. The server re-checks on every
// submit and its verdict wins.
func (s *Session) OrderingOpen() bool {
	h := s.Now().Hour()
	return h < restrictedStartHour || h >= restrictedEndHour
}

// Daily window during which order submission is refused client-side; must
// match the server's enforcement.
const (
	restrictedStartHour = 5
	restrictedEndHour   = 8
)

// Logout clears all session state and notifies the server without waiting
// on the answer.
func (s *Session) Logout() {
	name := s.CompanyName

	s.CompanyName = ""
	s.Items = nil
	s.Blocked = false
	s.BlockReason = ""
	s.OrderTimeAllowed = false
	s.cache.Clear()

	if name != "" {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.backend.Logout(ctx, name)
		}()
	}
}
