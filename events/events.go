package events

import (
	"context"
	"sync"

	"ryabank/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the economy
type EventType string

const (
	EventTypeTradeExecuted    EventType = "trade_executed"
	EventTypeCurrencyMinted   EventType = "currency_minted"
	EventTypeHardBurned       EventType = "hard_burned"
	EventTypeUpgradePurchased EventType = "upgrade_purchased"
	EventTypeEnergyChanged    EventType = "energy_changed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// TradeExecutedEvent is emitted after a buy or sell against the market pools commits
type TradeExecutedEvent struct {
	TransactionID string                     `json:"transaction_id"`
	UserID        int64                      `json:"user_id"`
	Side          models.PoolTransactionType `json:"side"`
	AmountHard    decimal.Decimal            `json:"amount_hard"`
	Soft          int64                      `json:"soft"`
	NewRate       decimal.Decimal            `json:"new_rate"`
}

func (e TradeExecutedEvent) Type() EventType {
	return EventTypeTradeExecuted
}

// CurrencyMintedEvent is emitted when soft currency enters circulation from outside the market
type CurrencyMintedEvent struct {
	TransactionID string             `json:"transaction_id"`
	UserID        int64              `json:"user_id"`
	Amount        int64              `json:"amount"`
	Tier          models.PackageTier `json:"tier"`
}

func (e CurrencyMintedEvent) Type() EventType {
	return EventTypeCurrencyMinted
}

// HardBurnedEvent is emitted when hard currency is permanently removed
type HardBurnedEvent struct {
	UserID      int64           `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	BurnedTotal decimal.Decimal `json:"burned_total"`
	Reason      string          `json:"reason"`
}

func (e HardBurnedEvent) Type() EventType {
	return EventTypeHardBurned
}

// UpgradePurchasedEvent is emitted when a user levels up a licence or specialist
type UpgradePurchasedEvent struct {
	UserID      int64              `json:"user_id"`
	UpgradeType models.UpgradeType `json:"upgrade_type"`
	Currency    models.Currency    `json:"currency"`
	NewLevel    int                `json:"new_level"`
	PaidSoft    int64              `json:"paid_soft"`
	PaidHard    decimal.Decimal    `json:"paid_hard"`
}

func (e UpgradePurchasedEvent) Type() EventType {
	return EventTypeUpgradePurchased
}

// EnergyChangedEvent is emitted when energy is spent or restored
type EnergyChangedEvent struct {
	UserID     int64  `json:"user_id"`
	OldCurrent int    `json:"old_current"`
	NewCurrent int    `json:"new_current"`
	Maximum    int    `json:"maximum"`
	Reason     string `json:"reason"`
}

func (e EnergyChangedEvent) Type() EventType {
	return EventTypeEnergyChanged
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// SubscribeAll registers the same handler for every economy event type
func (b *Bus) SubscribeAll(handler Handler) {
	for _, t := range AllEventTypes() {
		b.Subscribe(t, handler)
	}
}

// Emit dispatches an event to all registered handlers, each in its own goroutine
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event")

	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// AllEventTypes lists every event type the economy emits
func AllEventTypes() []EventType {
	return []EventType{
		EventTypeTradeExecuted,
		EventTypeCurrencyMinted,
		EventTypeHardBurned,
		EventTypeUpgradePurchased,
		EventTypeEnergyChanged,
	}
}

// TransactionalBus holds events raised inside a unit of work until it commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Queued event until commit")
	b.pending = append(b.pending, e)
}

// Pending returns the number of queued events
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}

// Flush is called after a successful commit. Handlers get a background
// context because the transaction context may already be done.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	if b.real == nil {
		b.pending = nil
		return nil
	}

	eventCtx := context.Background()
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}

	log.WithField("flushed", len(b.pending)).Debug("Flushed transactional bus")
	b.pending = nil
	return nil
}

// Discard drops queued events after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
