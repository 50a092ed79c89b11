package bulkedit

import (
	"context"
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	catalogdomain "github.com/greenmandi/storefront/internal/catalog/domain"
)

var (
	ErrNothingSelected = errors.New("nothing_selected")
	ErrNoActionChosen  = errors.New("no_action_chosen")
	ErrEmptyValue      = errors.New("empty_value")
	ErrInvalidPrice    = errors.New("invalid_price")
	ErrInvalidStock    = errors.New("invalid_stock_value")
	ErrInvalidAction   = errors.New("invalid_action")
	ErrApplyInProgress = errors.New("apply_in_progress")
)

type State string

const (
	StateIdle         State = "idle"
	StateSelecting    State = "selecting"
	StateActionChosen State = "action_chosen"
	StateApplying     State = "applying"
)

type Action string

const (
	ActionNone     Action = ""
	ActionPrice    Action = "price"
	ActionStock    Action = "stock"
	ActionCategory Action = "category"
)

// Stock values are sentinel strings rather than booleans so a dropdown's
// "not chosen" placeholder never coerces to a valid value.
const (
	StockInStock    = "in_stock"
	StockOutOfStock = "out_of_stock"
)

// Store is the slice of the catalog the workflow mutates through.
type Store interface {
	BulkUpdate(ctx context.Context, ids []string, patch catalogdomain.Patch) (int, error)
}

// View is an immutable snapshot of a workflow for handlers to render.
type View struct {
	State     State    `json:"state"`
	Selection []string `json:"selection"`
	Action    Action   `json:"action,omitempty"`
	Value     string   `json:"value,omitempty"`
	LastError string   `json:"last_error,omitempty"`
}

// Workflow is one admin session's selection-and-apply state machine. A
// failed apply returns to ActionChosen with the value and selection intact
// so the operator can correct and retry; only a confirmed store update
// resets the workflow.
type Workflow struct {
	store Store

	mu        sync.Mutex
	selection map[string]struct{}
	action    Action
	value     string
	applying  bool
	lastErr   error
}

func NewWorkflow(store Store) *Workflow {
	return &Workflow{
		store:     store,
		selection: make(map[string]struct{}),
	}
}

// Toggle flips one product in or out of the selection.
func (w *Workflow) Toggle(id string) View {
	w.mu.Lock()
	defer w.mu.Unlock()

	id = strings.TrimSpace(id)
	if id == "" || w.applying {
		return w.viewLocked()
	}
	if _, ok := w.selection[id]; ok {
		delete(w.selection, id)
	} else {
		w.selection[id] = struct{}{}
	}
	if len(w.selection) == 0 {
		w.action = ActionNone
		w.value = ""
	}
	return w.viewLocked()
}

// SelectAll toggles against the currently visible (filtered) set: when the
// selection already equals it exactly, the selection clears; otherwise the
// selection is replaced with it wholesale.
func (w *Workflow) SelectAll(visible []string) View {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.applying {
		return w.viewLocked()
	}

	next := make(map[string]struct{}, len(visible))
	for _, id := range visible {
		id = strings.TrimSpace(id)
		if id != "" {
			next[id] = struct{}{}
		}
	}

	if w.selectionEqualsLocked(next) {
		w.selection = make(map[string]struct{})
		w.action = ActionNone
		w.value = ""
	} else {
		w.selection = next
	}
	return w.viewLocked()
}

func (w *Workflow) selectionEqualsLocked(other map[string]struct{}) bool {
	if len(w.selection) != len(other) || len(other) == 0 {
		return false
	}
	for id := range other {
		if _, ok := w.selection[id]; !ok {
			return false
		}
	}
	return true
}

// ChooseAction moves Selecting to ActionChosen. Switching actions while one
// is already chosen clears the pending value.
func (w *Workflow) ChooseAction(action Action) (View, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.applying {
		return w.viewLocked(), ErrApplyInProgress
	}
	switch action {
	case ActionPrice, ActionStock, ActionCategory:
	default:
		return w.viewLocked(), ErrInvalidAction
	}
	if len(w.selection) == 0 {
		return w.viewLocked(), ErrNothingSelected
	}
	if w.action != action {
		w.value = ""
	}
	w.action = action
	return w.viewLocked(), nil
}

// Cancel drops the chosen action but keeps the selection.
func (w *Workflow) Cancel() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.applying {
		return w.viewLocked()
	}
	w.action = ActionNone
	w.value = ""
	w.lastErr = nil
	return w.viewLocked()
}

func (w *Workflow) SetValue(value string) View {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.applying {
		w.value = value
	}
	return w.viewLocked()
}

// Clear resets the whole workflow back to Idle.
func (w *Workflow) Clear() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.applying {
		return w.viewLocked()
	}
	w.resetLocked()
	return w.viewLocked()
}

// Apply validates the pending value, runs the catalog bulk update, and waits
// for the store to confirm before resetting. Validation failures leave the
// selection, action, and value exactly where they were.
func (w *Workflow) Apply(ctx context.Context) (View, error) {
	w.mu.Lock()
	if w.applying {
		view := w.viewLocked()
		w.mu.Unlock()
		return view, ErrApplyInProgress
	}
	if len(w.selection) == 0 {
		view := w.viewLocked()
		w.mu.Unlock()
		return view, ErrNothingSelected
	}
	if w.action == ActionNone {
		view := w.viewLocked()
		w.mu.Unlock()
		return view, ErrNoActionChosen
	}

	patch, err := buildPatch(w.action, w.value)
	if err != nil {
		w.lastErr = err
		view := w.viewLocked()
		w.mu.Unlock()
		return view, err
	}

	ids := make([]string, 0, len(w.selection))
	for id := range w.selection {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	w.applying = true
	w.lastErr = nil
	w.mu.Unlock()

	_, err = w.store.BulkUpdate(ctx, ids, patch)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.applying = false
	if err != nil {
		w.lastErr = err
		return w.viewLocked(), err
	}
	w.resetLocked()
	return w.viewLocked(), nil
}

func buildPatch(action Action, raw string) (catalogdomain.Patch, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return catalogdomain.Patch{}, ErrEmptyValue
	}

	switch action {
	case ActionPrice:
		price, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
			return catalogdomain.Patch{}, ErrInvalidPrice
		}
		return catalogdomain.Patch{Price: &price}, nil
	case ActionStock:
		switch value {
		case StockInStock:
			inStock := true
			return catalogdomain.Patch{InStock: &inStock}, nil
		case StockOutOfStock:
			inStock := false
			return catalogdomain.Patch{InStock: &inStock}, nil
		default:
			return catalogdomain.Patch{}, ErrInvalidStock
		}
	case ActionCategory:
		return catalogdomain.Patch{Category: &value}, nil
	default:
		return catalogdomain.Patch{}, ErrInvalidAction
	}
}

func (w *Workflow) resetLocked() {
	w.selection = make(map[string]struct{})
	w.action = ActionNone
	w.value = ""
	w.lastErr = nil
}

// View returns the current snapshot.
func (w *Workflow) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.viewLocked()
}

func (w *Workflow) viewLocked() View {
	selection := make([]string, 0, len(w.selection))
	for id := range w.selection {
		selection = append(selection, id)
	}
	sort.Strings(selection)

	view := View{
		State:     StateIdle,
		Selection: selection,
		Action:    w.action,
		Value:     w.value,
	}
	switch {
	case w.applying:
		view.State = StateApplying
	case w.action != ActionNone:
		view.State = StateActionChosen
	case len(selection) > 0:
		view.State = StateSelecting
	}
	if w.lastErr != nil {
		view.LastError = w.lastErr.Error()
	}
	return view
}
