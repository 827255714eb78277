package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFrequencyNext(t *testing.T) {
	tests := []struct {
		name      string
		frequency Frequency
		current   time.Time
		want      time.Time
	}{
		{"daily", FrequencyDaily, date(2024, time.March, 1), date(2024, time.March, 2)},
		{"daily across month end", FrequencyDaily, date(2024, time.January, 31), date(2024, time.February, 1)},
		{"weekly", FrequencyWeekly, date(2024, time.March, 1), date(2024, time.March, 8)},
		{"monthly", FrequencyMonthly, date(2024, time.March, 1), date(2024, time.April, 1)},
		{"monthly clamps short month", FrequencyMonthly, date(2024, time.January, 31), date(2024, time.February, 29)},
		{"monthly clamps non-leap february", FrequencyMonthly, date(2023, time.January, 31), date(2023, time.February, 28)},
		{"monthly keeps day when it fits", FrequencyMonthly, date(2024, time.April, 30), date(2024, time.May, 30)},
		{"yearly", FrequencyYearly, date(2024, time.March, 1), date(2025, time.March, 1)},
		{"yearly clamps leap day", FrequencyYearly, date(2024, time.February, 29), date(2025, time.February, 28)},
		{"empty defaults to monthly", Frequency(""), date(2024, time.March, 15), date(2024, time.April, 15)},
		{"unrecognized defaults to monthly", Frequency("fortnightly"), date(2024, time.March, 15), date(2024, time.April, 15)},
		{"case insensitive", Frequency("Weekly"), date(2024, time.March, 1), date(2024, time.March, 8)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.frequency.Next(tt.current)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.After(tt.current), "next occurrence must move forward")
		})
	}
}

func TestFrequencyNextUnknownMatchesMonthly(t *testing.T) {
	current := date(2024, time.January, 31)
	assert.Equal(t, FrequencyMonthly.Next(current), Frequency("").Next(current))
	assert.Equal(t, FrequencyMonthly.Next(current), Frequency("whenever").Next(current))
}

func TestParseTransactionType(t *testing.T) {
	got, ok := ParseTransactionType(" EXPENSE ")
	assert.True(t, ok)
	assert.Equal(t, TypeExpense, got)

	got, ok = ParseTransactionType("income")
	assert.True(t, ok)
	assert.Equal(t, TypeIncome, got)

	_, ok = ParseTransactionType("transfer")
	assert.False(t, ok)
}

func TestMaterializeCopiesTemplateFields(t *testing.T) {
	next := date(2024, time.March, 1)
	template := Transaction{
		Currency:           "USD",
		Type:               TypeExpense,
		Amount:             15.99,
		Description:        "Netflix",
		Date:               date(2024, time.February, 1),
		IsRecurring:        true,
		RecurringFrequency: FrequencyMonthly,
		NextOccurrenceDate: &next,
	}

	instance := template.Materialize(next)

	assert.False(t, instance.IsRecurring, "materialized instances are one-shot postings")
	assert.Nil(t, instance.NextOccurrenceDate)
	assert.Equal(t, template.Amount, instance.Amount)
	assert.Equal(t, template.Currency, instance.Currency)
	assert.Equal(t, template.Description, instance.Description)
	assert.Equal(t, next, instance.Date)
}

func TestReminderDedupKeyNormalizes(t *testing.T) {
	assert.Equal(t, ReminderDedupKey("Netflix"), ReminderDedupKey("  netflix "))
	assert.NotEqual(t, ReminderDedupKey("Netflix"), ReminderDedupKey("Spotify"))
}
