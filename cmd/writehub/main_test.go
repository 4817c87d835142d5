package main

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/writehub/internal/domain"
)

func TestParseWhen(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2025, time.March, 5, 3, 30, 0, 0, time.UTC) // 22:30 on Mar 4 in loc

	got, err := parseWhen("2025-01-10", loc, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.January, 10, 22, 30, 0, 0, loc), got)
	assert.Equal(t, domain.NewDay(2025, time.January, 10), domain.DayOf(got, loc))

	got, err = parseWhen("2025-01-10T08:00:00Z", loc, now)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, time.January, 10, 8, 0, 0, 0, time.UTC)))

	_, err = parseWhen("last tuesday", loc, now)
	assert.True(t, domain.IsCode(err, domain.CodeValidation))
}

func TestCommandTree(t *testing.T) {
	tree := map[string][]string{
		"category": {"list", "add", "edit", "delete"},
		"stats":    {"summary", "streak", "range", "calendar", "day", "categories", "rebuild"},
	}
	roots := map[string]*cobra.Command{
		"category": categoryCmd(),
		"stats":    statsCmd(),
	}
	for name, subs := range tree {
		for _, sub := range subs {
			found, _, err := roots[name].Find([]string{sub})
			require.NoError(t, err, name+" "+sub)
			assert.Equal(t, sub, found.Name())
		}
	}
}
