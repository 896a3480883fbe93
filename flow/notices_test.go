package flow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kjcheon2024/shop-orders-sub000/client"
)

func noticeFixture() []client.Notice {
	return []client.Notice{
		{ID: "n-1", Scope: "global", Title: "Holiday", Message: "closed on Friday"},
		{ID: "n-2", Scope: "global", Message: "new price list"},
	}
}

func TestNoticeSequenceWalksInOrder(t *testing.T) {
	backend := newFakeBackend()
	backend.notices = noticeFixture()
	seq := NewNoticeSequence(backend, "Alpha Foods")
	ctx := context.Background()

	assert.NoError(t, seq.Load(ctx))
	assert.Equal(t, 2, seq.Remaining())

	current, ok := seq.Current()
	assert.True(t, ok)
	assert.Equal(t, "n-1", current.ID)

	// Plain confirm advances without a read mark.
	assert.NoError(t, seq.Confirm(ctx, false))
	current, ok = seq.Current()
	assert.True(t, ok)
	assert.Equal(t, "n-2", current.ID)
	assert.Equal(t, 0, backend.callCount("markNoticeAsRead"))

	// "Don't show again" stores the mark server-side.
	assert.NoError(t, seq.Confirm(ctx, true))
	_, ok = seq.Current()
	assert.False(t, ok)
	assert.Equal(t, 1, backend.callCount("markNoticeAsRead"))
	assert.Equal(t, []string{"n-2"}, backend.readMarks)

	// Next login: the unmarked notice comes back, the marked one is gone.
	assert.NoError(t, seq.Load(ctx))
	assert.Equal(t, 1, seq.Remaining())
	current, _ = seq.Current()
	assert.Equal(t, "n-1", current.ID)
}

func TestNoticeSequenceDismissEndsWithoutMarks(t *testing.T) {
	backend := newFakeBackend()
	backend.notices = noticeFixture()
	seq := NewNoticeSequence(backend, "Alpha Foods")
	ctx := context.Background()

	assert.NoError(t, seq.Load(ctx))
	seq.Dismiss()

	_, ok := seq.Current()
	assert.False(t, ok)
	assert.Equal(t, 0, seq.Remaining())
	assert.Equal(t, 0, backend.callCount("markNoticeAsRead"))

	// Everything reappears next session.
	assert.NoError(t, seq.Load(ctx))
	assert.Equal(t, 2, seq.Remaining())
}

func TestNoticeSequenceConfirmPastEndIsNoop(t *testing.T) {
	backend := newFakeBackend()
	seq := NewNoticeSequence(backend, "Alpha Foods")

	assert.NoError(t, seq.Load(context.Background()))
	assert.NoError(t, seq.Confirm(context.Background(), true))
	assert.Equal(t, 0, backend.callCount("markNoticeAsRead"))
}
