package flow

import (
	"context"
	"sync"
	"time"

	"github.com/kjcheon2024/shop-orders-sub000/client"
)

// fakeBackend is a scripted portal with per-call counters so tests can
// assert how many requests each flow fires.
type fakeBackend struct {
	mu sync.Mutex

	password string
	login    client.LoginResult

	blocked     bool
	blockReason string

	today   client.TodayOrder
	history []client.HistoryDay
	notices []client.Notice

	processErr error
	saved      [][]client.OrderLine
	readMarks  []string

	calls map[string]int

	// lookupDelay simulates a slow findCompanyByPassword response.
	lookupDelay time.Duration
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		password: "alpha-secret-1",
		login: client.LoginResult{
			CompanyName: "Alpha Foods",
			Items: []client.Item{
				{Name: "Milk", Description: "1L bottle"},
				{Name: "Bread", Description: "white loaf"},
				{Name: "Eggs", Description: "tray of 30"},
			},
			OrderTimeAllowed: true,
		},
		today: client.TodayOrder{CanModify: true},
		calls: map[string]int{},
	}
}

func (f *fakeBackend) count(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeBackend) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) FindCompanyByPassword(ctx context.Context, password string) (*client.LoginResult, error) {
	f.count("findCompanyByPassword")
	if f.lookupDelay > 0 {
		time.Sleep(f.lookupDelay)
	}
	if password != f.password {
		return nil, &client.APIError{Message: "no company found for this password"}
	}
	result := f.login
	result.OrderBlocked = f.blocked
	result.BlockReason = f.blockReason
	return &result, nil
}

func (f *fakeBackend) Logout(ctx context.Context, companyName string) error {
	f.count("logout")
	return nil
}

func (f *fakeBackend) CheckOrderBlock(ctx context.Context, companyName string) (*client.BlockStatus, error) {
	f.count("checkOrderBlock")
	return &client.BlockStatus{Blocked: f.blocked, Reason: f.blockReason}, nil
}

func (f *fakeBackend) GetTodayOrderStatus(ctx context.Context, companyName string) (*client.TodayOrder, error) {
	f.count("getTodayOrderStatus")
	today := f.today
	today.CanModify = !f.blocked
	return &today, nil
}

func (f *fakeBackend) ProcessOrder(ctx context.Context, companyName string, lines []client.OrderLine) error {
	f.count("processOrder")
	if f.processErr != nil {
		return f.processErr
	}
	f.mu.Lock()
	f.saved = append(f.saved, lines)
	f.mu.Unlock()

	// Mirror the server: the save becomes today's committed order.
	f.today = client.TodayOrder{
		HasOrder:  len(lines) > 0,
		OrderDate: "2025-03-10",
		Items:     lines,
		CanModify: true,
	}
	return nil
}

func (f *fakeBackend) GetRecentOrderHistory(ctx context.Context, companyName string, days int) ([]client.HistoryDay, error) {
	f.count("getRecentOrderHistory")
	return f.history, nil
}

func (f *fakeBackend) GetUnreadGlobalNotices(ctx context.Context, companyName string) ([]client.Notice, error) {
	f.count("getUnreadGlobalNotices")
	var unread []client.Notice
	for _, n := range f.notices {
		read := false
		for _, id := range f.readMarks {
			if id == n.ID {
				read = true
				break
			}
		}
		if !read {
			unread = append(unread, n)
		}
	}
	return unread, nil
}

func (f *fakeBackend) MarkNoticeAsRead(ctx context.Context, companyName, noticeID string) error {
	f.count("markNoticeAsRead")
	f.readMarks = append(f.readMarks, noticeID)
	return nil
}

func (f *fakeBackend) GetIndividualNotices(ctx context.Context, companyName string) ([]client.Notice, error) {
	f.count("getIndividualNotices")
	return nil, nil
}

func (f *fakeBackend) CheckCompanyName(ctx context.Context, companyName string) (bool, error) {
	f.count("checkCompanyName")
	return companyName != "Taken Name", nil
}

func (f *fakeBackend) lastSaved() []client.OrderLine {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.saved) == 0 {
		return nil
	}
	return f.saved[len(f.saved)-1]
}

// loggedInSession returns a session already resolved against the fake, with
// the clock pinned to mid-morning.
func loggedInSession(f *fakeBackend) *Session {
	s := NewSession(f, nil)
	s.Now = func() time.Time {
		return time.Date(2025, 3, 10, 10, 0, 0, 0, time.Local)
	}
	result := f.login
	result.OrderBlocked = f.blocked
	result.BlockReason = f.blockReason
	s.ApplyLogin(&result)
	return s
}
