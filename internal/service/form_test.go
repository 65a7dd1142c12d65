package service

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/etdpk/etdclient/internal/entity"
)

func TestApplicationFromForm(t *testing.T) {
	t.Parallel()

	app := ApplicationFromForm(url.Values{
		"firstName":      {"Ali"},
		"lastName":       {"Khan"},
		"citizenNumber":  {"12345-1234567-1"},
		"dateOfBirth":    {"1990-05-20"},
		"departureDate":  {"15/03/2026"},
		"height":         {"1.78"},
		"amount":         {"not a number"},
		"investor":       {"true"},
		"isFiaBlacklist": {"no"},
		"transportMode":  {"air"},
	})

	require.Equal(t, "Ali", app.FirstName)
	require.Equal(t, "Khan", app.LastName)
	require.Equal(t, "12345-1234567-1", app.CitizenID)
	require.Equal(t, "1990-05-20", app.DateOfBirth)
	require.Equal(t, "2026-03-15", app.DepartureDate)
	require.InDelta(t, 1.78, app.Height, 0.001)
	require.Zero(t, app.Amount)
	require.True(t, app.Investor)
	require.False(t, app.IsFiaBlacklist)
	require.Equal(t, "air", app.TransportMode)
	require.Equal(t, entity.StatusDraft, app.Status)
}

func TestApplicationFromForm_KeepsExplicitStatus(t *testing.T) {
	t.Parallel()

	app := ApplicationFromForm(url.Values{"status": {"SUBMITTED"}})

	require.Equal(t, entity.StatusSubmitted, app.Status)
}
