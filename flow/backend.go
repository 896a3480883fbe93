package flow

import (
	"context"

	"github.com/kjcheon2024/shop-orders-sub000/client"
)

// Backend is the slice of the portal API the company-facing flows touch.
// *client.Client satisfies it; tests substitute a scripted fake.
type Backend interface {
	FindCompanyByPassword(ctx context.Context, password string) (*client.LoginResult, error)
	Logout(ctx context.Context, companyName string) error
	CheckOrderBlock(ctx context.Context, companyName string) (*client.BlockStatus, error)
	GetTodayOrderStatus(ctx context.Context, companyName string) (*client.TodayOrder, error)
	ProcessOrder(ctx context.Context, companyName string, lines []client.OrderLine) error
	GetRecentOrderHistory(ctx context.Context, companyName string, days int) ([]client.HistoryDay, error)
	GetUnreadGlobalNotices(ctx context.Context, companyName string) ([]client.Notice, error)
	MarkNoticeAsRead(ctx context.Context, companyName, noticeID string) error
	GetIndividualNotices(ctx context.Context, companyName string) ([]client.Notice, error)
	CheckCompanyName(ctx context.Context, companyName string) (bool, error)
}

var _ Backend = (*client.Client)(nil)
