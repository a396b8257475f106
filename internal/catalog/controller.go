package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MarcoPoloResearchLab/shelf/backend/internal/works"
	"go.uber.org/zap"
)

var (
	errMissingStore = errors.New("store is required")
	noOpLogger      = zap.NewNop()
)

// Store is the remote persistence contract the controller synchronizes against.
type Store interface {
	List(ctx context.Context, ordering works.Ordering) ([]works.Work, error)
	Insert(ctx context.Context, record works.Record) (works.Work, error)
	Update(ctx context.Context, id works.ID, record works.Record) error
	Delete(ctx context.Context, id works.ID) error
}

// Confirmer gates destructive operations behind a yes/no answer.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// DenyAll answers no to every confirmation.
var DenyAll = ConfirmFunc(func(context.Context, string) (bool, error) { return false, nil })

// ControllerError carries a stable code describing the failed controller operation.
type ControllerError struct {
	code string
	err  error
}

func (e *ControllerError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ControllerError) Unwrap() error {
	return e.err
}

func (e *ControllerError) Code() string {
	return e.code
}

const (
	opControllerNew = "catalog.controller.new"
	opFetch         = "catalog.fetch"
	opCreate        = "catalog.create"
	opUpdate        = "catalog.update"
	opDelete        = "catalog.delete"
	opAppendNote    = "catalog.append_note"

	reasonMissingStore  = "missing_store"
	reasonInvalidDraft  = "invalid_draft"
	reasonInvalidRecord = "invalid_record"
	reasonListFailed    = "list_failed"
	reasonInsertFailed  = "insert_failed"
	reasonUpdateFailed  = "update_failed"
	reasonDeleteFailed  = "delete_failed"
	reasonConfirmFailed = "confirm_failed"

	fieldWorkID = "work_id"
)

var failureMessages = map[string]string{
	opFetch:      "Error loading works",
	opCreate:     "Error adding work",
	opUpdate:     "Error updating work",
	opDelete:     "Error deleting work",
	opAppendNote: "Error adding note",
}

func newControllerError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ControllerError{code: code, err: cause}
}

// Config describes the dependencies of a Controller.
type Config struct {
	Store     Store
	Clock     func() time.Time
	Confirmer Confirmer
	Logger    *zap.Logger
	// DiscardStaleFetches drops a list response that was issued before the
	// response currently held in the canonical collection.
	DiscardStaleFetches bool
}

// State is a point-in-time copy of the controller's observable state.
type State struct {
	Works        []works.Work
	Loading      bool
	ErrorMessage string
	LastSyncedAt time.Time
}

// collection is the canonical in-memory set of works. It is only ever replaced whole.
type collection struct {
	items []works.Work
}

func (c *collection) replace(items []works.Work) {
	c.items = works.CloneAll(items)
}

func (c *collection) snapshot() []works.Work {
	return works.CloneAll(c.items)
}

func (c *collection) find(id works.ID) (works.Work, bool) {
	for _, item := range c.items {
		if item.ID == id {
			return item.Clone(), true
		}
	}
	return works.Work{}, false
}

// Controller owns the canonical collection and mediates every store mutation.
// After each successful mutation it re-reads the full collection from the store.
type Controller struct {
	store        Store
	clock        func() time.Time
	confirmer    Confirmer
	logger       *zap.Logger
	discardStale bool

	mu             sync.Mutex
	canonical      collection
	inFlight       int
	errorMessage   string
	lastSyncedAt   time.Time
	issuedFetches  uint64
	appliedFetchID uint64
}

func NewController(cfg Config) (*Controller, error) {
	if cfg.Store == nil {
		return nil, newControllerError(opControllerNew, reasonMissingStore, errMissingStore)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	confirmer := cfg.Confirmer
	if confirmer == nil {
		confirmer = DenyAll
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Controller{
		store:        cfg.Store,
		clock:        clock,
		confirmer:    confirmer,
		logger:       logger,
		discardStale: cfg.DiscardStaleFetches,
	}, nil
}

// Fetch replaces the canonical collection with the store's full listing, most recently updated first.
// On failure the previous collection is kept and the error message is recorded,
// unless stale fetches are discarded and a newer fetch has already been applied.
func (c *Controller) Fetch(ctx context.Context) error {
	sequence := c.nextFetchSequence()

	var items []works.Work
	err := c.withRequest(func() error {
		var listErr error
		items, listErr = c.store.List(ctx, works.RecentlyUpdatedFirst)
		return listErr
	})
	if err != nil {
		if c.isStaleFetch(sequence) {
			c.logError(opFetch, reasonListFailed, err, zap.Uint64("sequence", sequence))
			return newControllerError(opFetch, reasonListFailed, err)
		}
		return c.fail(opFetch, reasonListFailed, err)
	}

	c.applyFetch(sequence, items)
	return nil
}

// Create validates the draft, inserts it stamped with the current time, and re-synchronizes.
// The insert response is not merged; the new work appears through the refetch.
func (c *Controller) Create(ctx context.Context, draft works.Fields) error {
	if err := draft.Validate(); err != nil {
		return c.fail(opCreate, reasonInvalidDraft, err)
	}

	now := c.clock().UTC()
	record := works.Record{
		Fields:    draft.Clone(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := c.withRequest(func() error {
		_, insertErr := c.store.Insert(ctx, record)
		return insertErr
	})
	if err != nil {
		return c.fail(opCreate, reasonInsertFailed, err)
	}
	return c.Fetch(ctx)
}

// Update replaces the stored work with the full record, stamping UpdatedAt, and re-synchronizes.
// There is no version check: the last writer wins.
func (c *Controller) Update(ctx context.Context, id works.ID, work works.Work) error {
	return c.update(ctx, opUpdate, id, work)
}

// Delete asks the confirmer before removing the work and re-synchronizes afterwards.
// It reports false without contacting the store when confirmation is declined.
func (c *Controller) Delete(ctx context.Context, id works.ID) (bool, error) {
	confirmed, err := c.confirmer.Confirm(ctx, c.deletePrompt(id))
	if err != nil {
		return false, c.fail(opDelete, reasonConfirmFailed, err, zap.String(fieldWorkID, id.String()))
	}
	if !confirmed {
		return false, nil
	}

	err = c.withRequest(func() error {
		return c.store.Delete(ctx, id)
	})
	if err != nil {
		return false, c.fail(opDelete, reasonDeleteFailed, err, zap.String(fieldWorkID, id.String()))
	}
	return true, c.Fetch(ctx)
}

// State returns a copy of the canonical collection together with the loading and error state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Works:        c.canonical.snapshot(),
		Loading:      c.inFlight > 0,
		ErrorMessage: c.errorMessage,
		LastSyncedAt: c.lastSyncedAt,
	}
}

// Works returns a copy of the canonical collection.
func (c *Controller) Works() []works.Work {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canonical.snapshot()
}

// Find returns a copy of the canonical work with the given identifier.
func (c *Controller) Find(id works.ID) (works.Work, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canonical.find(id)
}

// Loading reports whether any store request is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight > 0
}

// ErrorMessage returns the user-visible message of the last failed operation, if any.
func (c *Controller) ErrorMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errorMessage
}

func (c *Controller) update(ctx context.Context, operation string, id works.ID, work works.Work) error {
	if err := work.Validate(); err != nil {
		return c.fail(operation, reasonInvalidRecord, err, zap.String(fieldWorkID, id.String()))
	}

	record := work.Record.Clone()
	record.UpdatedAt = c.clock().UTC()

	err := c.withRequest(func() error {
		return c.store.Update(ctx, id, record)
	})
	if err != nil {
		return c.fail(operation, reasonUpdateFailed, err, zap.String(fieldWorkID, id.String()))
	}
	return c.Fetch(ctx)
}

// withRequest marks a store request as in flight for the duration of call.
func (c *Controller) withRequest(call func() error) error {
	c.mu.Lock()
	c.inFlight++
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight--
		c.mu.Unlock()
	}()

	return call()
}

func (c *Controller) nextFetchSequence() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issuedFetches++
	return c.issuedFetches
}

// isStaleFetch reports whether a newer fetch has already been applied and this one must be ignored.
func (c *Controller) isStaleFetch(sequence uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.discardStale && sequence < c.appliedFetchID
}

func (c *Controller) applyFetch(sequence uint64, items []works.Work) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.discardStale && sequence < c.appliedFetchID {
		c.logger.Debug("discarding stale fetch response",
			zap.Uint64("sequence", sequence),
			zap.Uint64("applied_sequence", c.appliedFetchID))
		return
	}

	c.canonical.replace(items)
	c.appliedFetchID = sequence
	c.errorMessage = ""
	c.lastSyncedAt = c.clock().UTC()
	c.logger.Debug("catalog synchronized",
		zap.Int("works", len(items)),
		zap.Uint64("sequence", sequence))
}

func (c *Controller) fail(operation, reason string, err error, fields ...zap.Field) error {
	message := failureMessages[operation]
	if err != nil {
		message = fmt.Sprintf("%s: %v", message, err)
	}

	c.mu.Lock()
	c.errorMessage = message
	c.mu.Unlock()

	c.logError(operation, reason, err, fields...)
	return newControllerError(operation, reason, err)
}

func (c *Controller) deletePrompt(id works.ID) string {
	if work, ok := c.Find(id); ok {
		return fmt.Sprintf("Delete %q?", work.Title)
	}
	return fmt.Sprintf("Delete work %s?", id)
}

func (c *Controller) loggerOrDefault() *zap.Logger {
	if c == nil {
		return noOpLogger
	}
	if c.logger == nil {
		return noOpLogger
	}
	return c.logger
}

func (c *Controller) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	c.loggerOrDefault().Error("catalog controller error", attrs...)
}
