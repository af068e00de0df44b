package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRangeArgsBounded(t *testing.T) {
	rr, problem := parseRangeArgs("guild-1", []string{"25", "49", "123456789012345678"})
	require.Empty(t, problem)
	assert.Equal(t, "guild-1", rr.GuildID)
	assert.Equal(t, 25, rr.Min)
	require.NotNil(t, rr.Max)
	assert.Equal(t, 49, *rr.Max)
	assert.Equal(t, "123456789012345678", rr.RoleID)
}

func TestParseRangeArgsOpenEnded(t *testing.T) {
	rr, problem := parseRangeArgs("guild-1", []string{"50+", "123456789012345678"})
	require.Empty(t, problem)
	assert.Equal(t, 50, rr.Min)
	assert.Nil(t, rr.Max)
	assert.Equal(t, "123456789012345678", rr.RoleID)
}

func TestParseRangeArgsRejectsMalformedInput(t *testing.T) {
	cases := map[string][]string{
		"no args":                 nil,
		"only min":                {"25"},
		"non-numeric min":         {"abc", "49", "role"},
		"non-numeric max":         {"25", "abc", "role"},
		"negative min":            {"-1", "49", "role"},
		"negative open-ended min": {"-1+", "role"},
		"max below min":           {"50", "25", "role"},
		"bounded missing role":    {"25", "49"},
		"open-ended extra arg":    {"50+", "49", "role"},
	}
	for name, args := range cases {
		_, problem := parseRangeArgs("guild-1", args)
		assert.NotEmpty(t, problem, name)
	}
}

func TestParseRangeArgsZeroBounds(t *testing.T) {
	rr, problem := parseRangeArgs("guild-1", []string{"0", "0", "role"})
	require.Empty(t, problem)
	assert.Equal(t, 0, rr.Min)
	require.NotNil(t, rr.Max)
	assert.Equal(t, 0, *rr.Max)
}
