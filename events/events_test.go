package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"ryabank/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransactionalBus_FlushDeliversToBus(t *testing.T) {
	mainBus := NewBus()
	txBus := NewTransactionalBus(mainBus)

	received := make(chan TradeExecutedEvent, 1)
	var wg sync.WaitGroup
	wg.Add(1)

	mainBus.Subscribe(EventTypeTradeExecuted, func(ctx context.Context, event Event) {
		defer wg.Done()
		trade, ok := event.(TradeExecutedEvent)
		if !ok {
			t.Errorf("expected TradeExecutedEvent, got %T", event)
			return
		}
		received <- trade
	})

	sent := TradeExecutedEvent{
		TransactionID: "tx-1",
		UserID:        42,
		Side:          models.PoolTransactionBuy,
		AmountHard:    decimal.NewFromInt(10),
		Soft:          1010,
		NewRate:       decimal.RequireFromString("102.0304"),
	}
	txBus.Publish(sent)
	assert.Equal(t, 1, txBus.Pending())

	assert.NoError(t, txBus.Flush(context.Background()))
	assert.Equal(t, 0, txBus.Pending())
	wg.Wait()

	select {
	case got := <-received:
		assert.Equal(t, sent.UserID, got.UserID)
		assert.Equal(t, sent.Soft, got.Soft)
		assert.True(t, sent.AmountHard.Equal(got.AmountHard))
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestTransactionalBus_MultipleEventTypes(t *testing.T) {
	mainBus := NewBus()
	txBus := NewTransactionalBus(mainBus)

	var (
		mu   sync.Mutex
		seen = make(map[EventType]int)
		wg   sync.WaitGroup
	)
	wg.Add(3)
	mainBus.SubscribeAll(func(ctx context.Context, event Event) {
		defer wg.Done()
		mu.Lock()
		seen[event.Type()]++
		mu.Unlock()
	})

	txBus.Publish(CurrencyMintedEvent{UserID: 1, Amount: 500, Tier: models.PackageBasic})
	txBus.Publish(HardBurnedEvent{UserID: 1, Amount: decimal.NewFromInt(1), Reason: "farm_license"})
	txBus.Publish(EnergyChangedEvent{UserID: 1, OldCurrent: 10, NewCurrent: 5, Maximum: 30, Reason: "expedition"})

	assert.NoError(t, txBus.Flush(context.Background()))
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, seen[EventTypeCurrencyMinted])
	assert.Equal(t, 1, seen[EventTypeHardBurned])
	assert.Equal(t, 1, seen[EventTypeEnergyChanged])
}

func TestTransactionalBus_DiscardDropsEvents(t *testing.T) {
	mainBus := NewBus()
	txBus := NewTransactionalBus(mainBus)

	received := make(chan struct{}, 1)
	mainBus.Subscribe(EventTypeUpgradePurchased, func(ctx context.Context, event Event) {
		received <- struct{}{}
	})

	txBus.Publish(UpgradePurchasedEvent{UserID: 7, UpgradeType: models.UpgradeFarmLicense, NewLevel: 1})
	txBus.Discard()
	assert.NoError(t, txBus.Flush(context.Background()))

	select {
	case <-received:
		t.Fatal("discarded event was delivered")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBus_HandlerPanicIsRecovered(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	wg.Add(2)
	bus.Subscribe(EventTypeEnergyChanged, func(ctx context.Context, event Event) {
		defer wg.Done()
		panic("boom")
	})
	delivered := make(chan struct{}, 1)
	bus.Subscribe(EventTypeEnergyChanged, func(ctx context.Context, event Event) {
		defer wg.Done()
		delivered <- struct{}{}
	})

	bus.Emit(context.Background(), EnergyChangedEvent{UserID: 1})
	wg.Wait()

	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("second handler did not run")
	}
}
