package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeTravels(t *testing.T) {
	count, ok := ParseTimeTravels("**Time travels**: 42\n**Max area**: 15")
	require.True(t, ok)
	assert.Equal(t, 42, count)
}

func TestParseTimeTravelsAbsent(t *testing.T) {
	_, ok := ParseTimeTravels("**Max area**: 15")
	assert.False(t, ok)

	_, ok = ParseTimeTravels("**Time travels**: lots")
	assert.False(t, ok)

	_, ok = ParseTimeTravels("")
	assert.False(t, ok)
}

func TestEmbedOwnerName(t *testing.T) {
	assert.Equal(t, "Zed", EmbedOwnerName("Zed — profile"))
	assert.Equal(t, "Zed", EmbedOwnerName("Zed"))
	assert.Equal(t, "", EmbedOwnerName(""))
}

func historyAt(base time.Time, msgs ...Message) []Message {
	//Newest first, one minute apart, matching platform ordering.
	for i := range msgs {
		msgs[i].Timestamp = base.Add(-time.Duration(i) * time.Minute)
	}
	return msgs
}

func TestCorrelateAcceptsCaseInsensitiveOwner(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	history := historyAt(now,
		Message{AuthorID: "u1", AuthorName: "zed", Content: "rpg profile"},
	)

	claim, err := DefaultPolicy().Correlate(history, "Zed", now)
	require.NoError(t, err)
	assert.Equal(t, "u1", claim.AuthorID)
}

func TestCorrelateRejectsDifferentAuthor(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	history := historyAt(now,
		Message{AuthorID: "u2", AuthorName: "impostor", Content: "rpg p"},
	)

	_, err := DefaultPolicy().Correlate(history, "Zed", now)
	assert.ErrorIs(t, err, ErrOwnerMismatch)
}

func TestCorrelateEmptyWindow(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	_, err := DefaultPolicy().Correlate(nil, "Zed", now)
	assert.ErrorIs(t, err, ErrNoClaim)

	history := historyAt(now,
		Message{AuthorID: "u1", AuthorName: "zed", Content: "hello there"},
	)
	_, err = DefaultPolicy().Correlate(history, "Zed", now)
	assert.ErrorIs(t, err, ErrNoClaim)
}

func TestCorrelateUsesMostRecentClaim(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	history := historyAt(now,
		Message{AuthorID: "bot", AuthorName: "EPIC RPG", Content: "rpg p", IsBot: true},
		Message{AuthorID: "u1", AuthorName: "zed", Content: "RPG P"},
		Message{AuthorID: "u2", AuthorName: "other", Content: "rpg profile"},
	)

	claim, err := DefaultPolicy().Correlate(history, "Zed", now)
	require.NoError(t, err)
	assert.Equal(t, "u1", claim.AuthorID)
}

func TestCorrelateMismatchShadowsOlderValidClaim(t *testing.T) {
	//The most recent claim decides; an older claim by the right member does
	//not rescue a mismatched newer one.
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	history := historyAt(now,
		Message{AuthorID: "u2", AuthorName: "impostor", Content: "rpg p"},
		Message{AuthorID: "u1", AuthorName: "zed", Content: "rpg p"},
	)

	_, err := DefaultPolicy().Correlate(history, "Zed", now)
	assert.ErrorIs(t, err, ErrOwnerMismatch)
}

func TestCorrelateLookbackLimit(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	var history []Message
	for i := 0; i < 10; i++ {
		history = append(history, Message{AuthorID: "uX", AuthorName: "chatter", Content: "gg"})
	}
	history = append(history, Message{AuthorID: "u1", AuthorName: "zed", Content: "rpg p"})
	history = historyAt(now, history...)

	policy := DefaultPolicy()
	policy.LookbackLimit = 10
	_, err := policy.Correlate(history, "Zed", now)
	assert.ErrorIs(t, err, ErrNoClaim)

	policy.LookbackLimit = 50
	claim, err := policy.Correlate(history, "Zed", now)
	require.NoError(t, err)
	assert.Equal(t, "u1", claim.AuthorID)
}

func TestCorrelateMaxAge(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	history := []Message{
		{AuthorID: "u1", AuthorName: "zed", Content: "rpg p", Timestamp: now.Add(-10 * time.Minute)},
	}

	policy := DefaultPolicy()
	policy.MaxAge = 5 * time.Minute
	_, err := policy.Correlate(history, "Zed", now)
	assert.ErrorIs(t, err, ErrNoClaim)

	policy.MaxAge = 15 * time.Minute
	_, err = policy.Correlate(history, "Zed", now)
	assert.NoError(t, err)
}

func TestCorrelateCaseSensitivePolicy(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	history := historyAt(now,
		Message{AuthorID: "u1", AuthorName: "zed", Content: "rpg p"},
	)

	policy := DefaultPolicy()
	policy.CaseSensitive = true
	_, err := policy.Correlate(history, "Zed", now)
	assert.ErrorIs(t, err, ErrOwnerMismatch)

	_, err = policy.Correlate(history, "zed", now)
	assert.NoError(t, err)
}
