package channel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderdesk/internal/apperr"
	"orderdesk/internal/model"
)

func testResolver() *Resolver {
	return NewResolver("Telegram", map[string]model.Channel{
		"telegram": {SpreadsheetID: "tg-sheet", CompletedRange: "Completed Orders!A1:Z9999", AbandonedRange: "Abandoned!A1:Z9999"},
		"WhatsApp": {SpreadsheetID: "wa-sheet", CompletedRange: "WA Completed!A1:Z500"},
		"voice":    {CompletedRange: "Voice!A1:Z10"},
	}, model.Channel{})
}

func TestResolve_ConfiguredChannel(t *testing.T) {
	res, err := testResolver().Resolve("whatsapp")
	require.NoError(t, err)

	assert.Equal(t, "whatsapp", res.RequestedKey)
	assert.Equal(t, "whatsapp", res.ResolvedKey)
	assert.False(t, res.Fallback())
	assert.Equal(t, "wa-sheet", res.SpreadsheetID)
	assert.Equal(t, "WA Completed!A1:Z500", res.CompletedRange)
	assert.Equal(t, "Abandoned!A1:Z9999", res.AbandonedRange, "missing range falls back to the default channel")
}

func TestResolve_UnconfiguredChannelFallsBack(t *testing.T) {
	for _, requested := range []string{"voice", "instagram"} {
		res, err := testResolver().Resolve(requested)
		require.NoError(t, err)

		assert.Equal(t, requested, res.RequestedKey)
		assert.Equal(t, "telegram", res.ResolvedKey)
		assert.True(t, res.Fallback())
		assert.Equal(t, "tg-sheet", res.SpreadsheetID)
		assert.Equal(t, "Completed Orders!A1:Z9999", res.CompletedRange)
	}
}

func TestResolve_EmptyRequestUsesDefault(t *testing.T) {
	res, err := testResolver().Resolve("  ")
	require.NoError(t, err)
	assert.Equal(t, "telegram", res.RequestedKey)
	assert.False(t, res.Fallback())
}

func TestResolve_CaseInsensitive(t *testing.T) {
	res, err := testResolver().Resolve(" WHATSAPP ")
	require.NoError(t, err)
	assert.Equal(t, "whatsapp", res.ResolvedKey)
}

func TestResolve_DefaultSynthesizedFromLegacy(t *testing.T) {
	r := NewResolver("", nil, model.Channel{
		SpreadsheetID:  "legacy-sheet",
		CompletedRange: "Completed Orders!A1:Z9999",
		AbandonedRange: "Abandoned!A1:Z9999",
	})

	res, err := r.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, DefaultKey, res.ResolvedKey)
	assert.Equal(t, "legacy-sheet", res.SpreadsheetID)
	assert.Equal(t, "Abandoned!A1:Z9999", res.AbandonedRange)
}

func TestResolve_DefaultWithoutSpreadsheetFails(t *testing.T) {
	r := NewResolver("telegram", map[string]model.Channel{
		"whatsapp": {SpreadsheetID: "wa-sheet"},
	}, model.Channel{})

	_, err := r.Resolve("whatsapp")

	var cfgErr *apperr.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}
