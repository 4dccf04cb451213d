package infrastructure

import (
	"strings"
	"testing"

	"ryabank/events"

	"github.com/stretchr/testify/assert"
)

type unknownEvent struct{}

func (unknownEvent) Type() events.EventType { return "mystery" }

func TestEventSubjectMapper_RoundTrip(t *testing.T) {
	mapper := NewEventSubjectMapper()

	cases := []struct {
		event   events.Event
		subject string
	}{
		{events.TradeExecutedEvent{}, SubjectTradeExecuted},
		{events.CurrencyMintedEvent{}, SubjectCurrencyMinted},
		{events.HardBurnedEvent{}, SubjectHardBurned},
		{events.UpgradePurchasedEvent{}, SubjectUpgradePurchased},
		{events.EnergyChangedEvent{}, SubjectEnergyChanged},
	}

	for _, tc := range cases {
		t.Run(string(tc.event.Type()), func(t *testing.T) {
			subject := mapper.MapEventToSubject(tc.event)
			assert.Equal(t, tc.subject, subject)
			assert.Equal(t, tc.event.Type(), mapper.MapSubjectToEventType(subject))
		})
	}
}

func TestEventSubjectMapper_Unknown(t *testing.T) {
	mapper := NewEventSubjectMapper()

	assert.Equal(t, "economy.unknown.mystery", mapper.MapEventToSubject(unknownEvent{}))
	assert.Equal(t, events.EventType("other.subject"), mapper.MapSubjectToEventType("other.subject"))
}

func TestEventSubjectMapper_SubjectsCoverEveryEventType(t *testing.T) {
	mapper := NewEventSubjectMapper()
	subjects := mapper.GetAllSubjects()

	assert.Len(t, subjects, len(events.AllEventTypes()))
	for _, s := range subjects {
		assert.True(t, strings.HasPrefix(s, "economy."), s)
		assert.Contains(t, events.AllEventTypes(), mapper.MapSubjectToEventType(s))
	}
}
