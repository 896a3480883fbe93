package flow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kjcheon2024/shop-orders-sub000/client"
)

// State of the new-order composition track.
type State int

const (
	StateIdle State = iota
	StateSelecting
	StateQuantityEntry
	StateConfirming
	StateSubmitting
	StateSucceeded
)

// EditState of the today's-order track.
type EditState int

const (
	EditNone EditState = iota
	EditViewing
	EditEditing
	EditSavePending
)

// CopyPolicy decides what happens to historical lines whose items are no
// longer assigned to the company. The observed portal kept them.
type CopyPolicy int

const (
	CopyKeepAll CopyPolicy = iota
	CopyDropUnassigned
	CopyMarkUnassigned
)

var (
	ErrRestrictedHours      = errors.New("ordering is closed during restricted hours")
	ErrOrderBlocked         = errors.New("ordering is blocked for this company")
	ErrAlreadyOrdered       = errors.New("an order already exists for today")
	ErrNoSelection          = errors.New("select at least one item")
	ErrQuantityRequired     = errors.New("every selected item needs a quantity of at least 1")
	ErrNotAssigned          = errors.New("item is not assigned to this company")
	ErrDuplicateItem        = errors.New("item is already in the order")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrNotModifiable        = errors.New("today's order cannot be modified")
	ErrWrongState           = errors.New("operation not allowed in current state")
)

// EditedLine is a draft line plus the unassigned mark used by
// CopyMarkUnassigned.
type EditedLine struct {
	client.OrderLine
	Unassigned bool
}

// OrderFlow drives both tracks of the ordering screen: composing a new
// order (select, enter quantities, confirm, submit) and editing today's
// committed order in place. Nothing reaches the server until Submit or
// SaveChanges; both send the entire line list as a replacement.
type OrderFlow struct {
	session  *Session
	backend  Backend
	notifier Notifier

	state State

	selected   []string
	quantities map[string]string
	draft      []client.OrderLine

	editState EditState
	current   []EditedLine
	canModify bool

	CopyPolicy CopyPolicy

	// SuccessDelay is the pause before the post-submit auto-navigation.
	SuccessDelay time.Duration
	// AfterSuccess runs once per successful submit, after SuccessDelay.
	AfterSuccess func()
}

func NewOrderFlow(session *Session, backend Backend, notifier Notifier) *OrderFlow {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &OrderFlow{
		session:      session,
		backend:      backend,
		notifier:     notifier,
		state:        StateIdle,
		quantities:   make(map[string]string),
		SuccessDelay: 2 * time.Second,
	}
}

func (f *OrderFlow) State() State         { return f.state }
func (f *OrderFlow) EditState() EditState { return f.editState }

// Begin runs the entry guards and moves Idle -> Selecting. Guard order:
// local clock, fresh block poll, duplicate-order check.
func (f *OrderFlow) Begin(ctx context.Context) error {
	if !f.session.OrderingOpen() {
		f.notifier.Error(ErrRestrictedHours.Error())
		return ErrRestrictedHours
	}
	if err := f.session.RefreshBlock(ctx); err != nil {
		return f.transportError(err)
	}
	if f.session.Blocked {
		f.notifier.Error(f.blockMessage())
		return ErrOrderBlocked
	}

	today, err := f.backend.GetTodayOrderStatus(ctx, f.session.CompanyName)
	if err != nil {
		return f.transportError(err)
	}
	if today.HasOrder {
		f.notifier.Info("already ordered today; edit the existing order instead")
		return ErrAlreadyOrdered
	}

	f.state = StateSelecting
	f.selected = nil
	f.quantities = make(map[string]string)
	f.draft = nil
	return nil
}

// Selected returns the current selection in pick order.
func (f *OrderFlow) Selected() []string {
	out := make([]string, len(f.selected))
	copy(out, f.selected)
	return out
}

// ToggleItem flips an item in or out of the selection.
func (f *OrderFlow) ToggleItem(name string) error {
	if f.state != StateSelecting {
		return ErrWrongState
	}
	if !f.session.HasItem(name) {
		return ErrNotAssigned
	}
	for i, sel := range f.selected {
		if sel == name {
			f.selected = append(f.selected[:i], f.selected[i+1:]...)
			return nil
		}
	}
	f.selected = append(f.selected, name)
	return nil
}

// ProceedToQuantities moves Selecting -> QuantityEntry. The block flag is
// re-polled; quantity fields start empty to force explicit entry.
func (f *OrderFlow) ProceedToQuantities(ctx context.Context) error {
	if f.state != StateSelecting {
		return ErrWrongState
	}
	if len(f.selected) == 0 {
		return ErrNoSelection
	}
	if err := f.session.RefreshBlock(ctx); err != nil {
		return f.transportError(err)
	}
	if f.session.Blocked {
		f.notifier.Error(f.blockMessage())
		return ErrOrderBlocked
	}

	f.quantities = make(map[string]string, len(f.selected))
	for _, name := range f.selected {
		f.quantities[name] = ""
	}
	f.state = StateQuantityEntry
	return nil
}

// SetQuantity records the raw field value for one selected item.
func (f *OrderFlow) SetQuantity(name, raw string) error {
	if f.state != StateQuantityEntry {
		return ErrWrongState
	}
	if _, ok := f.quantities[name]; !ok {
		return ErrNotAssigned
	}
	f.quantities[name] = strings.TrimSpace(raw)
	return nil
}

// ProceedToConfirm validates every quantity and moves to Confirming. Any
// invalid field yields the single aggregate error, not per-field ones.
func (f *OrderFlow) ProceedToConfirm(ctx context.Context) error {
	if f.state != StateQuantityEntry {
		return ErrWrongState
	}

	lines := make([]client.OrderLine, 0, len(f.selected))
	for _, name := range f.selected {
		qty, err := strconv.Atoi(f.quantities[name])
		if err != nil || qty < 1 {
			f.notifier.Error(ErrQuantityRequired.Error())
			return ErrQuantityRequired
		}
		lines = append(lines, client.OrderLine{ItemName: name, Quantity: qty})
	}

	if err := f.session.RefreshBlock(ctx); err != nil {
		return f.transportError(err)
	}
	if f.session.Blocked {
		f.notifier.Error(f.blockMessage())
		return ErrOrderBlocked
	}

	f.draft = lines
	f.state = StateConfirming
	return nil
}

// Draft returns the confirmed line list pending submission.
func (f *OrderFlow) Draft() []client.OrderLine {
	out := make([]client.OrderLine, len(f.draft))
	copy(out, f.draft)
	return out
}

// Submit sends the draft. The server's verdict on blocking and the time
// window overrides whatever the client checked earlier.
func (f *OrderFlow) Submit(ctx context.Context) error {
	if f.state != StateConfirming {
		return ErrWrongState
	}
	f.state = StateSubmitting

	err := f.backend.ProcessOrder(ctx, f.session.CompanyName, f.draft)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			if apiErr.Blocked {
				// Server says blocked: authoritative. Re-enable submit.
				f.session.Blocked = true
				f.session.BlockReason = apiErr.BlockReason
				f.state = StateConfirming
				f.notifier.Error(f.blockMessage())
				return ErrOrderBlocked
			}
			if apiErr.OrderTimeRestricted {
				f.session.OrderTimeAllowed = false
				f.state = StateIdle
				f.notifier.Error(ErrRestrictedHours.Error())
				return ErrRestrictedHours
			}
			f.state = StateConfirming
			f.notifier.Error(apiErr.Message)
			return err
		}
		f.state = StateConfirming
		return f.transportError(err)
	}

	f.draft = nil
	f.selected = nil
	f.quantities = make(map[string]string)
	f.state = StateSucceeded
	f.notifier.Success("order submitted")

	if f.AfterSuccess != nil {
		if f.SuccessDelay > 0 {
			time.AfterFunc(f.SuccessDelay, f.AfterSuccess)
		} else {
			f.AfterSuccess()
		}
	}
	return nil
}

// Cancel abandons the composition draft.
func (f *OrderFlow) Cancel() {
	f.state = StateIdle
	f.selected = nil
	f.quantities = make(map[string]string)
	f.draft = nil
}

// ---- today's order track ----

// LoadToday fetches the committed order and enters Viewing.
func (f *OrderFlow) LoadToday(ctx context.Context) (*client.TodayOrder, error) {
	today, err := f.backend.GetTodayOrderStatus(ctx, f.session.CompanyName)
	if err != nil {
		return nil, f.transportError(err)
	}

	f.current = make([]EditedLine, 0, len(today.Items))
	for _, line := range today.Items {
		f.current = append(f.current, EditedLine{OrderLine: line})
	}
	f.canModify = today.CanModify
	f.editState = EditViewing
	return today, nil
}

// CurrentLines returns the local working copy.
func (f *OrderFlow) CurrentLines() []EditedLine {
	out := make([]EditedLine, len(f.current))
	copy(out, f.current)
	return out
}

func (f *OrderFlow) CanModify() bool { return f.canModify }

// StartEdit switches the view into editing mode.
func (f *OrderFlow) StartEdit() error {
	if f.editState != EditViewing {
		return ErrWrongState
	}
	if !f.canModify {
		return ErrNotModifiable
	}
	f.editState = EditEditing
	return nil
}

// SetLineQuantity commits an inline quantity edit to the local draft only.
func (f *OrderFlow) SetLineQuantity(name string, qty int) error {
	if f.editState != EditEditing {
		return ErrWrongState
	}
	if qty < 1 {
		return ErrQuantityRequired
	}
	for i := range f.current {
		if f.current[i].ItemName == name {
			f.current[i].Quantity = qty
			return nil
		}
	}
	return ErrNotAssigned
}

// RemoveLine drops a line from the local draft. The caller must have shown
// a confirmation prompt; confirmed=false is refused.
func (f *OrderFlow) RemoveLine(name string, confirmed bool) error {
	if f.editState != EditEditing {
		return ErrWrongState
	}
	if !confirmed {
		return ErrConfirmationRequired
	}
	for i := range f.current {
		if f.current[i].ItemName == name {
			f.current = append(f.current[:i], f.current[i+1:]...)
			return nil
		}
	}
	return ErrNotAssigned
}

// AvailableToAdd lists assigned items not already in the draft, for the
// add picker.
func (f *OrderFlow) AvailableToAdd() []client.Item {
	present := make(map[string]bool, len(f.current))
	for _, line := range f.current {
		present[line.ItemName] = true
	}
	var out []client.Item
	for _, it := range f.session.Items {
		if !present[it.Name] {
			out = append(out, it)
		}
	}
	return out
}

// AddLine appends an assigned item to the draft with the given quantity.
func (f *OrderFlow) AddLine(name string, qty int) error {
	if f.editState != EditEditing {
		return ErrWrongState
	}
	if qty < 1 {
		return ErrQuantityRequired
	}
	if !f.session.HasItem(name) {
		return ErrNotAssigned
	}
	for _, line := range f.current {
		if line.ItemName == name {
			f.notifier.Error(ErrDuplicateItem.Error())
			return ErrDuplicateItem
		}
	}
	f.current = append(f.current, EditedLine{OrderLine: client.OrderLine{ItemName: name, Quantity: qty}})
	return nil
}

// SaveChanges sends the whole working copy as a replacement. An empty list
// is allowed and clears today's order.
func (f *OrderFlow) SaveChanges(ctx context.Context) error {
	if f.editState != EditEditing {
		return ErrWrongState
	}
	f.editState = EditSavePending

	lines := make([]client.OrderLine, 0, len(f.current))
	for _, line := range f.current {
		lines = append(lines, line.OrderLine)
	}

	err := f.backend.ProcessOrder(ctx, f.session.CompanyName, lines)
	if err != nil {
		f.editState = EditEditing
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			if apiErr.Blocked {
				f.session.Blocked = true
				f.session.BlockReason = apiErr.BlockReason
				f.canModify = false
				f.notifier.Error(f.blockMessage())
				return ErrOrderBlocked
			}
			if apiErr.OrderTimeRestricted {
				f.notifier.Error(ErrRestrictedHours.Error())
				return ErrRestrictedHours
			}
			f.notifier.Error(apiErr.Message)
			return err
		}
		return f.transportError(err)
	}

	f.notifier.Success("changes saved")
	// Resync the working copy from the server.
	if _, err := f.LoadToday(ctx); err != nil {
		return err
	}
	return nil
}

// CancelEdit throws away local edits and resynchronizes from the server.
func (f *OrderFlow) CancelEdit(ctx context.Context) error {
	if f.editState != EditEditing {
		return ErrWrongState
	}
	_, err := f.LoadToday(ctx)
	return err
}

// CanCopyFromHistory mirrors the copy button's enabled state.
func (f *OrderFlow) CanCopyFromHistory() bool {
	return !f.session.Blocked
}

// CopyFromHistory clones a past day's lines into the working copy and
// enters editing. Inert while the company is order-blocked. Historical
// items no longer assigned are handled per CopyPolicy.
func (f *OrderFlow) CopyFromHistory(day client.HistoryDay) error {
	if !f.CanCopyFromHistory() {
		return ErrOrderBlocked
	}

	lines := make([]EditedLine, 0, len(day.Items))
	for _, line := range day.Items {
		assigned := f.session.HasItem(line.ItemName)
		switch f.CopyPolicy {
		case CopyDropUnassigned:
			if !assigned {
				continue
			}
			lines = append(lines, EditedLine{OrderLine: line})
		case CopyMarkUnassigned:
			lines = append(lines, EditedLine{OrderLine: line, Unassigned: !assigned})
		default:
			lines = append(lines, EditedLine{OrderLine: line})
		}
	}

	f.current = lines
	f.canModify = true
	f.editState = EditEditing
	f.notifier.Info(fmt.Sprintf("copied order from %s", day.OrderDate))
	return nil
}

func (f *OrderFlow) blockMessage() string {
	if f.session.BlockReason != "" {
		return "ordering blocked: " + f.session.BlockReason
	}
	return ErrOrderBlocked.Error()
}

// transportError maps network/parse failures to one generic retryable
// message; details go to the log, never the user.
func (f *OrderFlow) transportError(err error) error {
	f.notifier.Error("a temporary error occurred, please try again")
	return fmt.Errorf("request failed: %w", err)
}
