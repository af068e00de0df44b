package reconcile

import (
	"errors"
	"sort"
	"testing"

	"timekeeper/guildmodels"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGuild = "guild-1"

func tierRanges() []guildmodels.RoleRange {
	return []guildmodels.RoleRange{
		guildmodels.Bounded(testGuild, 0, 24, "role-a"),
		guildmodels.Bounded(testGuild, 25, 49, "role-b"),
		guildmodels.OpenEnded(testGuild, 50, "role-c"),
	}
}

func TestPlanAssignsTierRole(t *testing.T) {
	guildRoles := []string{"role-a", "role-b", "role-c", "unrelated"}
	outcome := Plan(tierRanges(), []string{"unrelated"}, guildRoles, 30)

	assert.Equal(t, []string{"role-b"}, outcome.ResolvedRoles)
	assert.Equal(t, []string{"role-b"}, outcome.ToAdd)
	assert.Empty(t, outcome.ToRemove)
	assert.False(t, outcome.AlreadyCorrect)
}

func TestPlanStripsStaleTierRoles(t *testing.T) {
	guildRoles := []string{"role-a", "role-b", "role-c"}
	outcome := Plan(tierRanges(), []string{"role-a"}, guildRoles, 100)

	assert.Equal(t, []string{"role-c"}, outcome.ToAdd)
	assert.Equal(t, []string{"role-a"}, outcome.ToRemove)
}

func TestPlanLeavesUnconfiguredRolesAlone(t *testing.T) {
	guildRoles := []string{"role-a", "role-b", "role-c", "moderator"}
	outcome := Plan(tierRanges(), []string{"moderator", "role-b"}, guildRoles, 30)

	assert.True(t, outcome.AlreadyCorrect)
	assert.Empty(t, outcome.ToRemove)
	assert.NotContains(t, outcome.ConflictingRoles, "moderator")
}

func TestPlanOverlappingRangesAssignBoth(t *testing.T) {
	ranges := []guildmodels.RoleRange{
		guildmodels.Bounded(testGuild, 0, 10, "role-a"),
		guildmodels.Bounded(testGuild, 5, 15, "role-b"),
	}
	guildRoles := []string{"role-a", "role-b"}
	outcome := Plan(ranges, nil, guildRoles, 7)

	assert.Equal(t, []string{"role-a", "role-b"}, outcome.ResolvedRoles)
	assert.Equal(t, []string{"role-a", "role-b"}, outcome.ToAdd)
	assert.Empty(t, outcome.ToRemove)
}

func TestPlanUnboundedRange(t *testing.T) {
	ranges := []guildmodels.RoleRange{guildmodels.OpenEnded(testGuild, 50, "role-c")}
	guildRoles := []string{"role-c"}

	matched := Plan(ranges, nil, guildRoles, 1000)
	assert.Equal(t, []string{"role-c"}, matched.ResolvedRoles)

	unmatched := Plan(ranges, nil, guildRoles, 49)
	assert.True(t, unmatched.NoMatch())
	assert.Empty(t, unmatched.ResolvedRoles)
}

func TestPlanNoMatchIsReportableNotError(t *testing.T) {
	outcome := Plan(tierRanges(), nil, []string{"role-a"}, -1)
	assert.True(t, outcome.NoMatch())
	assert.True(t, outcome.AlreadyCorrect)
}

func TestPlanDeletedRoleExcludedAndReported(t *testing.T) {
	//role-b has been deleted from the guild since configuration
	guildRoles := []string{"role-a", "role-c"}
	outcome := Plan(tierRanges(), nil, guildRoles, 30)

	assert.Empty(t, outcome.ResolvedRoles)
	assert.Equal(t, []string{"role-b"}, outcome.MissingRoles)
	assert.False(t, outcome.NoMatch())
	assert.True(t, outcome.AllRolesMissing())
	//No mutation may be attempted for a deleted role
	assert.Empty(t, outcome.ToAdd)
}

func TestPlanDeletedConflictingRoleNotRemoved(t *testing.T) {
	//A held configured role that no longer exists in the guild cannot be
	//removed and must not appear in the delta.
	guildRoles := []string{"role-c"}
	outcome := Plan(tierRanges(), []string{"role-a"}, guildRoles, 100)

	assert.Equal(t, []string{"role-c"}, outcome.ToAdd)
	assert.Empty(t, outcome.ToRemove)
}

func TestPlanIdempotent(t *testing.T) {
	guildRoles := []string{"role-a", "role-b", "role-c"}
	memberRoles := []string{"role-a"}

	first := Plan(tierRanges(), memberRoles, guildRoles, 100)
	require.False(t, first.AlreadyCorrect)

	//Simulate the successful apply, then replan with unchanged inputs.
	afterApply := applyToSet(memberRoles, first)
	second := Plan(tierRanges(), afterApply, guildRoles, 100)
	assert.True(t, second.AlreadyCorrect)
	assert.Empty(t, second.ToAdd)
	assert.Empty(t, second.ToRemove)
}

func TestPlanFinalSetIsExactlyResolved(t *testing.T) {
	guildRoles := []string{"role-a", "role-b", "role-c", "moderator"}
	configured := map[string]struct{}{"role-a": {}, "role-b": {}, "role-c": {}}

	memberStates := [][]string{
		nil,
		{"role-a"},
		{"role-a", "role-b"},
		{"role-c", "moderator"},
		{"role-a", "role-b", "role-c"},
	}
	for _, memberRoles := range memberStates {
		outcome := Plan(tierRanges(), memberRoles, guildRoles, 30)
		final := applyToSet(memberRoles, outcome)

		var finalConfigured []string
		for _, id := range final {
			if _, ok := configured[id]; ok {
				finalConfigured = append(finalConfigured, id)
			}
		}
		sort.Strings(finalConfigured)
		assert.Equal(t, outcome.ResolvedRoles, finalConfigured, "starting from %v", memberRoles)
	}
}

//applyToSet simulates a successful apply of the outcome's delta to a role set.
func applyToSet(memberRoles []string, outcome Outcome) []string {
	set := map[string]struct{}{}
	for _, id := range memberRoles {
		set[id] = struct{}{}
	}
	for _, id := range outcome.ToRemove {
		delete(set, id)
	}
	for _, id := range outcome.ToAdd {
		set[id] = struct{}{}
	}
	var res []string
	for id := range set {
		res = append(res, id)
	}
	sort.Strings(res)
	return res
}

type fakeRoleManager struct {
	added     [][]string
	removed   [][]string
	addErr    error
	removeErr error
}

func (f *fakeRoleManager) AddRoles(guildID, memberID string, roleIDs []string) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, roleIDs)
	return nil
}

func (f *fakeRoleManager) RemoveRoles(guildID, memberID string, roleIDs []string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, roleIDs)
	return nil
}

func TestApplyRemovesBeforeAdding(t *testing.T) {
	guildRoles := []string{"role-a", "role-b", "role-c"}
	outcome := Plan(tierRanges(), []string{"role-a"}, guildRoles, 100)

	mgr := &fakeRoleManager{}
	res := Apply(mgr, testGuild, "member-1", outcome)

	require.False(t, res.Failed())
	assert.Equal(t, [][]string{{"role-a"}}, mgr.removed)
	assert.Equal(t, [][]string{{"role-c"}}, mgr.added)
	assert.Equal(t, []string{"role-a"}, res.Removed)
	assert.Equal(t, []string{"role-c"}, res.Added)
}

func TestApplyAlreadyCorrectIssuesNothing(t *testing.T) {
	guildRoles := []string{"role-a", "role-b", "role-c"}
	outcome := Plan(tierRanges(), []string{"role-c"}, guildRoles, 100)
	require.True(t, outcome.AlreadyCorrect)

	mgr := &fakeRoleManager{}
	res := Apply(mgr, testGuild, "member-1", outcome)

	assert.Empty(t, mgr.added)
	assert.Empty(t, mgr.removed)
	assert.False(t, res.Failed())
}

func TestApplyPartialFailureIsReported(t *testing.T) {
	guildRoles := []string{"role-a", "role-b", "role-c"}
	outcome := Plan(tierRanges(), []string{"role-a"}, guildRoles, 100)

	mgr := &fakeRoleManager{addErr: errors.New("api unavailable")}
	res := Apply(mgr, testGuild, "member-1", outcome)

	assert.True(t, res.Partial())
	assert.True(t, res.Failed())
	assert.Equal(t, []string{"role-a"}, res.Removed)
	assert.Empty(t, res.Added)
	assert.Error(t, res.AddErr)
	assert.NoError(t, res.RemoveErr)
}

func TestApplyRemoveFailureStillAttemptsAdd(t *testing.T) {
	guildRoles := []string{"role-a", "role-b", "role-c"}
	outcome := Plan(tierRanges(), []string{"role-a"}, guildRoles, 100)

	mgr := &fakeRoleManager{removeErr: errors.New("api unavailable")}
	res := Apply(mgr, testGuild, "member-1", outcome)

	assert.True(t, res.Partial())
	assert.Equal(t, [][]string{{"role-c"}}, mgr.added)
	assert.Error(t, res.RemoveErr)
}
