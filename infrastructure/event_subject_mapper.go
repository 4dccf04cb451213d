package infrastructure

import (
	"fmt"

	"ryabank/events"
)

const (
	SubjectTradeExecuted    = "economy.trade.executed"
	SubjectCurrencyMinted   = "economy.currency.minted"
	SubjectHardBurned       = "economy.hard.burned"
	SubjectUpgradePurchased = "economy.upgrade.purchased"
	SubjectEnergyChanged    = "economy.energy.changed"
)

// EventSubjectMapper handles mapping between economy events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts an economy event to its NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeTradeExecuted:
		return SubjectTradeExecuted
	case events.EventTypeCurrencyMinted:
		return SubjectCurrencyMinted
	case events.EventTypeHardBurned:
		return SubjectHardBurned
	case events.EventTypeUpgradePurchased:
		return SubjectUpgradePurchased
	case events.EventTypeEnergyChanged:
		return SubjectEnergyChanged
	default:
		return fmt.Sprintf("economy.unknown.%s", event.Type())
	}
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	switch subject {
	case SubjectTradeExecuted:
		return events.EventTypeTradeExecuted
	case SubjectCurrencyMinted:
		return events.EventTypeCurrencyMinted
	case SubjectHardBurned:
		return events.EventTypeHardBurned
	case SubjectUpgradePurchased:
		return events.EventTypeUpgradePurchased
	case SubjectEnergyChanged:
		return events.EventTypeEnergyChanged
	default:
		return events.EventType(subject)
	}
}

// GetAllSubjects returns all subjects the economy publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		SubjectTradeExecuted,
		SubjectCurrencyMinted,
		SubjectHardBurned,
		SubjectUpgradePurchased,
		SubjectEnergyChanged,
	}
}
