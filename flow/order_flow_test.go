package flow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kjcheon2024/shop-orders-sub000/client"
)

func TestOrderFlowHappyPath(t *testing.T) {
	backend := newFakeBackend()
	session := loggedInSession(backend)
	flow := NewOrderFlow(session, backend, nil)
	flow.SuccessDelay = 0
	ctx := context.Background()

	assert.NoError(t, flow.Begin(ctx))
	assert.Equal(t, StateSelecting, flow.State())

	assert.NoError(t, flow.ToggleItem("Milk"))
	assert.NoError(t, flow.ToggleItem("Bread"))
	assert.NoError(t, flow.ProceedToQuantities(ctx))
	assert.Equal(t, StateQuantityEntry, flow.State())

	assert.NoError(t, flow.SetQuantity("Milk", "3"))
	assert.NoError(t, flow.SetQuantity("Bread", "1"))
	assert.NoError(t, flow.ProceedToConfirm(ctx))
	assert.Equal(t, StateConfirming, flow.State())

	draft := flow.Draft()
	assert.NoError(t, flow.Submit(ctx))
	assert.Equal(t, StateSucceeded, flow.State())

	// What was confirmed is exactly what went over the wire.
	assert.Equal(t, draft, backend.lastSaved())
	assert.Equal(t, []client.OrderLine{
		{ItemName: "Milk", Quantity: 3},
		{ItemName: "Bread", Quantity: 1},
	}, backend.lastSaved())
}

func TestOrderFlowAfterSuccessRunsOnceDelayZero(t *testing.T) {
	backend := newFakeBackend()
	session := loggedInSession(backend)
	flow := NewOrderFlow(session, backend, nil)
	flow.SuccessDelay = 0

	ran := 0
	flow.AfterSuccess = func() { ran++ }

	ctx := context.Background()
	assert.NoError(t, flow.Begin(ctx))
	assert.NoError(t, flow.ToggleItem("Milk"))
	assert.NoError(t, flow.ProceedToQuantities(ctx))
	assert.NoError(t, flow.SetQuantity("Milk", "2"))
	assert.NoError(t, flow.ProceedToConfirm(ctx))
	assert.NoError(t, flow.Submit(ctx))
	assert.Equal(t, 1, ran)
}

func TestOrderFlowQuantityValidationAggregates(t *testing.T) {
	backend := newFakeBackend()
	session := loggedInSession(backend)
	flow := NewOrderFlow(session, backend, nil)
	ctx := context.Background()

	assert.NoError(t, flow.Begin(ctx))
	assert.NoError(t, flow.ToggleItem("Milk"))
	assert.NoError(t, flow.ToggleItem("Bread"))
	assert.NoError(t, flow.ProceedToQuantities(ctx))

	// One valid, one empty, one would-be-zero: a single aggregate error.
	assert.NoError(t, flow.SetQuantity("Milk", "3"))
	assert.ErrorIs(t, flow.ProceedToConfirm(ctx), ErrQuantityRequired)
	assert.Equal(t, StateQuantityEntry, flow.State())

	assert.NoError(t, flow.SetQuantity("Bread", "0"))
	assert.ErrorIs(t, flow.ProceedToConfirm(ctx), ErrQuantityRequired)

	assert.NoError(t, flow.SetQuantity("Bread", "abc"))
	assert.ErrorIs(t, flow.ProceedToConfirm(ctx), ErrQuantityRequired)

	// Nothing reached the server during any of that.
	assert.Equal(t, 0, backend.callCount("processOrder"))
}

func TestOrderFlowDuplicateGuard(t *testing.T) {
	backend := newFakeBackend()
	backend.today = client.TodayOrder{
		HasOrder:  true,
		Items:     []client.OrderLine{{ItemName: "Milk", Quantity: 2}},
		CanModify: true,
	}
	session := loggedInSession(backend)
	flow := NewOrderFlow(session, backend, nil)

	assert.ErrorIs(t, flow.Begin(context.Background()), ErrAlreadyOrdered)
	assert.Equal(t, StateIdle, flow.State())
}

func TestOrderFlowRestrictedHoursGate(t *testing.T) {
	for _, tc := range []struct {
		hour int
		open bool
	}{
		{4, true},
		{5, false},
		{6, false},
		{7, false},
		{8, true},
	} {
		backend := newFakeBackend()
		session := loggedInSession(backend)
		session.Now = func() time.Time {
			return time.Date(2025, 3, 10, tc.hour, 0, 0, 0, time.Local)
		}
		flow := NewOrderFlow(session, backend, nil)

		err := flow.Begin(context.Background())
		if tc.open {
			assert.NoError(t, err, "hour %d", tc.hour)
		} else {
			assert.ErrorIs(t, err, ErrRestrictedHours, "hour %d", tc.hour)
			// The clock gate fires before any network traffic.
			assert.Equal(t, 0, backend.callCount("checkOrderBlock"))
		}
	}
}

func TestOrderFlowBlockPolledBeforeTransitions(t *testing.T) {
	backend := newFakeBackend()
	session := loggedInSession(backend)
	flow := NewOrderFlow(session, backend, nil)
	ctx := context.Background()

	assert.NoError(t, flow.Begin(ctx))
	assert.NoError(t, flow.ToggleItem("Milk"))

	// Admin flips the block between screens.
	backend.blocked = true
	backend.blockReason = "late payments"

	assert.ErrorIs(t, flow.ProceedToQuantities(ctx), ErrOrderBlocked)
	assert.True(t, session.Blocked)
	assert.Equal(t, "late payments", session.BlockReason)
}

func TestOrderFlowServerBlockVerdictWins(t *testing.T) {
	backend := newFakeBackend()
	session := loggedInSession(backend)
	flow := NewOrderFlow(session, backend, nil)
	ctx := context.Background()

	assert.NoError(t, flow.Begin(ctx))
	assert.NoError(t, flow.ToggleItem("Milk"))
	assert.NoError(t, flow.ProceedToQuantities(ctx))
	assert.NoError(t, flow.SetQuantity("Milk", "1"))
	assert.NoError(t, flow.ProceedToConfirm(ctx))

	// Client-side checks passed, but the server refuses the submit.
	backend.processErr = &client.APIError{
		Message:     "ordering is blocked for this company",
		Blocked:     true,
		BlockReason: "contract expired",
	}

	assert.ErrorIs(t, flow.Submit(ctx), ErrOrderBlocked)
	assert.Equal(t, StateConfirming, flow.State())
	assert.True(t, session.Blocked)
	assert.Equal(t, "contract expired", session.BlockReason)
}

func TestOrderFlowServerTimeVerdictWins(t *testing.T) {
	backend := newFakeBackend()
	session := loggedInSession(backend)
	flow := NewOrderFlow(session, backend, nil)
	ctx := context.Background()

	assert.NoError(t, flow.Begin(ctx))
	assert.NoError(t, flow.ToggleItem("Milk"))
	assert.NoError(t, flow.ProceedToQuantities(ctx))
	assert.NoError(t, flow.SetQuantity("Milk", "1"))
	assert.NoError(t, flow.ProceedToConfirm(ctx))

	backend.processErr = &client.APIError{
		Message:             "ordering is closed during restricted hours",
		OrderTimeRestricted: true,
	}

	assert.ErrorIs(t, flow.Submit(ctx), ErrRestrictedHours)
	assert.Equal(t, StateIdle, flow.State())
	assert.False(t, session.OrderTimeAllowed)
}

func TestEditTrackFullReplacement(t *testing.T) {
	backend := newFakeBackend()
	backend.today = client.TodayOrder{
		HasOrder: true,
		Items: []client.OrderLine{
			{ItemName: "Milk", Quantity: 3},
			{ItemName: "Bread", Quantity: 1},
		},
		CanModify: true,
	}
	session := loggedInSession(backend)
	flow := NewOrderFlow(session, backend, nil)
	ctx := context.Background()

	_, err := flow.LoadToday(ctx)
	assert.NoError(t, err)
	assert.NoError(t, flow.StartEdit())

	assert.NoError(t, flow.SetLineQuantity("Milk", 5))
	assert.NoError(t, flow.RemoveLine("Bread", true))
	assert.NoError(t, flow.AddLine("Eggs", 2))
	assert.NoError(t, flow.SaveChanges(ctx))

	assert.Equal(t, []client.OrderLine{
		{ItemName: "Milk", Quantity: 5},
		{ItemName: "Eggs", Quantity: 2},
	}, backend.lastSaved())
	// SaveChanges resynchronizes into viewing mode.
	assert.Equal(t, EditViewing, flow.EditState())
}

func TestEditTrackRemoveNeedsConfirmation(t *testing.T) {
	backend := newFakeBackend()
	backend.today = client.TodayOrder{
		HasOrder:  true,
		Items:     []client.OrderLine{{ItemName: "Milk", Quantity: 3}},
		CanModify: true,
	}
	session := loggedInSession(backend)
	flow := NewOrderFlow(session, backend, nil)
	ctx := context.Background()

	_, err := flow.LoadToday(ctx)
	assert.NoError(t, err)
	assert.NoError(t, flow.StartEdit())

	assert.ErrorIs(t, flow.RemoveLine("Milk", false), ErrConfirmationRequired)
	assert.Len(t, flow.CurrentLines(), 1)
}

func TestEditTrackDuplicateAdd(t *testing.T) {
	backend := newFakeBackend()
	backend.today = client.TodayOrder{
		HasOrder:  true,
		Items:     []client.OrderLine{{ItemName: "Milk", Quantity: 3}},
		CanModify: true,
	}
	session := loggedInSession(backend)
	flow := NewOrderFlow(session, backend, nil)

	_, err := flow.LoadToday(context.Background())
	assert.NoError(t, err)
	assert.NoError(t, flow.StartEdit())

	assert.ErrorIs(t, flow.AddLine("Milk", 1), ErrDuplicateItem)

	// The add picker hides what is already in the order.
	for _, it := range flow.AvailableToAdd() {
		assert.NotEqual(t, "Milk", it.Name)
	}
}

func TestEditTrackSaveEmptyClearsDay(t *testing.T) {
	backend := newFakeBackend()
	backend.today = client.TodayOrder{
		HasOrder:  true,
		Items:     []client.OrderLine{{ItemName: "Milk", Quantity: 3}},
		CanModify: true,
	}
	session := loggedInSession(backend)
	flow := NewOrderFlow(session, backend, nil)
	ctx := context.Background()

	_, err := flow.LoadToday(ctx)
	assert.NoError(t, err)
	assert.NoError(t, flow.StartEdit())
	assert.NoError(t, flow.RemoveLine("Milk", true))
	assert.NoError(t, flow.SaveChanges(ctx))

	assert.Equal(t, []client.OrderLine{}, backend.lastSaved())
	assert.False(t, backend.today.HasOrder)
}

func TestCopyFromHistoryPolicies(t *testing.T) {
	day := client.HistoryDay{
		OrderDate: "2025-03-03",
		Items: []client.OrderLine{
			{ItemName: "Milk", Quantity: 2},
			{ItemName: "Discontinued", Quantity: 1},
		},
	}

	// Default: keep everything, exactly as the portal did.
	backend := newFakeBackend()
	flow := NewOrderFlow(loggedInSession(backend), backend, nil)
	assert.NoError(t, flow.CopyFromHistory(day))
	assert.Len(t, flow.CurrentLines(), 2)
	assert.Equal(t, EditEditing, flow.EditState())

	// DropUnassigned removes lines the company can no longer order.
	flow = NewOrderFlow(loggedInSession(backend), backend, nil)
	flow.CopyPolicy = CopyDropUnassigned
	assert.NoError(t, flow.CopyFromHistory(day))
	lines := flow.CurrentLines()
	assert.Len(t, lines, 1)
	assert.Equal(t, "Milk", lines[0].ItemName)

	// MarkUnassigned keeps them but flags them for the UI.
	flow = NewOrderFlow(loggedInSession(backend), backend, nil)
	flow.CopyPolicy = CopyMarkUnassigned
	assert.NoError(t, flow.CopyFromHistory(day))
	lines = flow.CurrentLines()
	assert.Len(t, lines, 2)
	assert.False(t, lines[0].Unassigned)
	assert.True(t, lines[1].Unassigned)
}

func TestCopyFromHistoryInertWhileBlocked(t *testing.T) {
	backend := newFakeBackend()
	backend.blocked = true
	backend.blockReason = "under review"
	session := loggedInSession(backend)
	flow := NewOrderFlow(session, backend, nil)

	assert.False(t, flow.CanCopyFromHistory())
	err := flow.CopyFromHistory(client.HistoryDay{
		OrderDate: "2025-03-03",
		Items:     []client.OrderLine{{ItemName: "Milk", Quantity: 2}},
	})
	assert.ErrorIs(t, err, ErrOrderBlocked)

	// Inert means inert: no state change and no network traffic.
	assert.Equal(t, EditNone, flow.EditState())
	assert.Empty(t, flow.CurrentLines())
	assert.Equal(t, 0, backend.callCount("processOrder"))
	assert.Equal(t, 0, backend.callCount("getTodayOrderStatus"))
}

func TestSessionLandingViewBlockWinsOverRestriction(t *testing.T) {
	backend := newFakeBackend()
	backend.blocked = true
	backend.blockReason = "under review"
	session := loggedInSession(backend)
	session.OrderTimeAllowed = false

	// Both conditions apply; the block screen wins.
	assert.Equal(t, ViewBlocked, session.LandingView())

	session.Blocked = false
	assert.Equal(t, ViewRestricted, session.LandingView())

	session.OrderTimeAllowed = true
	assert.Equal(t, ViewOrder, session.LandingView())
}

func TestSessionLogoutClearsState(t *testing.T) {
	backend := newFakeBackend()
	session := loggedInSession(backend)
	assert.True(t, session.LoggedIn())

	session.Logout()
	assert.False(t, session.LoggedIn())
	assert.Empty(t, session.Items)
	assert.Equal(t, ViewLogin, session.LandingView())
}
