package flow

import (
	"context"

	"github.com/kjcheon2024/shop-orders-sub000/client"
)

// NoticeSequence walks the post-login modal queue in server order. Only a
// confirm with "don't show again" checked reaches the server; plain
// confirm advances without marking, and dismissing ends the sequence so
// everything unconfirmed reappears next login. Nothing is persisted
// client-side on purpose: the observed portal re-reminds every session.
type NoticeSequence struct {
	backend Backend
	company string
	notices []client.Notice
	index   int
}

func NewNoticeSequence(backend Backend, companyName string) *NoticeSequence {
	return &NoticeSequence{backend: backend, company: companyName}
}

// Load fetches the unread global notices for the company.
func (ns *NoticeSequence) Load(ctx context.Context) error {
	notices, err := ns.backend.GetUnreadGlobalNotices(ctx, ns.company)
	if err != nil {
		return err
	}
	ns.notices = notices
	ns.index = 0
	return nil
}

// Current returns the notice the modal is showing, if any.
func (ns *NoticeSequence) Current() (*client.Notice, bool) {
	if ns.index >= len(ns.notices) {
		return nil, false
	}
	return &ns.notices[ns.index], true
}

// Remaining counts notices not yet confirmed or dismissed.
func (ns *NoticeSequence) Remaining() int {
	if ns.index >= len(ns.notices) {
		return 0
	}
	return len(ns.notices) - ns.index
}

// Confirm acknowledges the current notice and advances. With dontShowAgain
// the read mark is stored server-side; without it the notice stays unread
// and will be shown again next login.
func (ns *NoticeSequence) Confirm(ctx context.Context, dontShowAgain bool) error {
	current, ok := ns.Current()
	if !ok {
		return nil
	}
	if dontShowAgain {
		if err := ns.backend.MarkNoticeAsRead(ctx, ns.company, current.ID); err != nil {
			return err
		}
	}
	ns.index++
	return nil
}

// Dismiss closes the modal without marking anything read.
func (ns *NoticeSequence) Dismiss() {
	ns.index = len(ns.notices)
}

// LoadBanner fetches the per-company individual notices shown in-page on
// the item-selection screen.
func LoadBanner(ctx context.Context, backend Backend, companyName string) ([]client.Notice, error) {
	return backend.GetIndividualNotices(ctx, companyName)
}
