package service

import (
	"context"

	"ryabank/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Engine is the economy surface consumed by the presentation layer.
// Every error it returns matches one of the economy sentinels; use
// economy.IsUserError to decide whether to show the reason to the player.
type Engine struct {
	ledger   PoolLedger
	exchange ExchangeService
	energy   EnergyService
	pricing  PricingService
	upgrades UpgradeService
	accounts AccountService
}

// NewEngine wires all economy services over one unit of work factory
func NewEngine(uowFactory UnitOfWorkFactory, settings Settings) *Engine {
	ledger := NewPoolLedger(uowFactory, settings)
	return &Engine{
		ledger:   ledger,
		exchange: NewExchangeService(uowFactory, ledger, settings),
		energy:   NewEnergyService(uowFactory, settings),
		pricing:  NewPricingService(uowFactory, ledger, settings),
		upgrades: NewUpgradeService(uowFactory, ledger, settings),
		accounts: NewAccountService(uowFactory, settings),
	}
}

// Ledger exposes the pool ledger for bootstrap and audits
func (e *Engine) Ledger() PoolLedger {
	return e.ledger
}

func (e *Engine) QuoteBuy(ctx context.Context, amountHard decimal.Decimal) (*models.Quote, error) {
	quote, err := e.exchange.QuoteBuy(ctx, amountHard)
	logOutcome("quote_buy", log.Fields{"amount": amountHard.String()}, err)
	return quote, err
}

func (e *Engine) QuoteSell(ctx context.Context, amountHard decimal.Decimal) (*models.Quote, error) {
	quote, err := e.exchange.QuoteSell(ctx, amountHard)
	logOutcome("quote_sell", log.Fields{"amount": amountHard.String()}, err)
	return quote, err
}

func (e *Engine) ExecuteBuy(ctx context.Context, userID int64, amountHard decimal.Decimal) (*models.TradeResult, error) {
	result, err := e.exchange.Buy(ctx, userID, amountHard)
	logOutcome("buy", log.Fields{"userID": userID, "amount": amountHard.String()}, err)
	return result, err
}

func (e *Engine) ExecuteSell(ctx context.Context, userID int64, amountHard decimal.Decimal) (*models.TradeResult, error) {
	result, err := e.exchange.Sell(ctx, userID, amountHard)
	logOutcome("sell", log.Fields{"userID": userID, "amount": amountHard.String()}, err)
	return result, err
}

func (e *Engine) CreditFromExternalPurchase(ctx context.Context, userID int64, externalUnits int64, tier models.PackageTier) (*models.TopUpResult, error) {
	result, err := e.exchange.PurchaseWithExternalCurrency(ctx, userID, externalUnits, tier)
	logOutcome("top_up", log.Fields{"userID": userID, "units": externalUnits, "tier": tier}, err)
	return result, err
}

func (e *Engine) GetEnergyState(ctx context.Context, userID int64) (*models.EnergyState, error) {
	state, err := e.energy.GetEnergyState(ctx, userID)
	logOutcome("get_energy", log.Fields{"userID": userID}, err)
	return state, err
}

func (e *Engine) SpendEnergy(ctx context.Context, userID int64, cost int) (*models.EnergyState, error) {
	state, err := e.energy.SpendEnergy(ctx, userID, cost)
	logOutcome("spend_energy", log.Fields{"userID": userID, "cost": cost}, err)
	return state, err
}

func (e *Engine) RestoreEnergy(ctx context.Context, userID int64, amount int, reason string) (*models.EnergyState, error) {
	state, err := e.energy.RestoreEnergy(ctx, userID, amount, reason)
	logOutcome("restore_energy", log.Fields{"userID": userID, "amount": amount, "reason": reason}, err)
	return state, err
}

func (e *Engine) GetPriceMultipliers(ctx context.Context) (*models.PriceMultipliers, error) {
	multipliers, err := e.pricing.GetPriceMultipliers(ctx)
	logOutcome("price_multipliers", log.Fields{}, err)
	return multipliers, err
}

func (e *Engine) RecordBurn(ctx context.Context, userID int64, amount decimal.Decimal, reason string) (decimal.Decimal, error) {
	total, err := e.pricing.RecordBurn(ctx, userID, amount, reason)
	logOutcome("record_burn", log.Fields{"userID": userID, "amount": amount.String(), "reason": reason}, err)
	return total, err
}

func (e *Engine) GetUpgradeQuote(ctx context.Context, userID int64, upgradeType models.UpgradeType, currency models.Currency) (*models.UpgradeQuote, error) {
	quote, err := e.upgrades.QuoteUpgrade(ctx, userID, upgradeType, currency)
	logOutcome("quote_upgrade", log.Fields{"userID": userID, "upgrade": upgradeType, "currency": currency}, err)
	return quote, err
}

func (e *Engine) PurchaseUpgrade(ctx context.Context, userID int64, upgradeType models.UpgradeType, currency models.Currency) (*models.UpgradeResult, error) {
	result, err := e.upgrades.PurchaseUpgrade(ctx, userID, upgradeType, currency)
	logOutcome("purchase_upgrade", log.Fields{"userID": userID, "upgrade": upgradeType, "currency": currency}, err)
	return result, err
}

func (e *Engine) EnsureAccount(ctx context.Context, userID int64) (*models.UserBalance, error) {
	balance, err := e.accounts.EnsureAccount(ctx, userID)
	logOutcome("ensure_account", log.Fields{"userID": userID}, err)
	return balance, err
}

func (e *Engine) GetBalance(ctx context.Context, userID int64) (*models.UserBalance, error) {
	balance, err := e.accounts.GetBalance(ctx, userID)
	logOutcome("get_balance", log.Fields{"userID": userID}, err)
	return balance, err
}

func (e *Engine) GetUpgrades(ctx context.Context, userID int64) ([]*models.UpgradeLevel, error) {
	levels, err := e.upgrades.GetUpgrades(ctx, userID)
	logOutcome("get_upgrades", log.Fields{"userID": userID}, err)
	return levels, err
}

// GetTransactionHistory returns the user's latest audit records, newest first.
// A non-positive limit uses the default page size.
func (e *Engine) GetTransactionHistory(ctx context.Context, userID int64, limit int) ([]*models.PoolTransaction, error) {
	history, err := e.accounts.GetHistory(ctx, userID, limit)
	logOutcome("get_history", log.Fields{"userID": userID, "limit": limit}, err)
	return history, err
}

// ListPools returns the current state of every pool
func (e *Engine) ListPools(ctx context.Context) ([]*models.Pool, error) {
	pools, err := e.ledger.ListPools(ctx)
	logOutcome("list_pools", log.Fields{}, err)
	return pools, err
}
