package bot

import (
	"testing"
	"time"

	"timekeeper/undo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//fakeRoleProvider is an in-memory stand-in for the discord connection's role
//surface, tracking each member's role set per guild.
type fakeRoleProvider struct {
	memberRoles map[string][]string
	guildRoles  []string
	roleNames   map[string]string
	removed     []string
}

func (f *fakeRoleProvider) MemberRoleIDs(guildID string, memberID string) ([]string, error) {
	return f.memberRoles[memberID], nil
}

func (f *fakeRoleProvider) GuildRoleIDs(guildID string) ([]string, error) {
	return f.guildRoles, nil
}

func (f *fakeRoleProvider) RoleNames(guildID string) (map[string]string, error) {
	return f.roleNames, nil
}

func (f *fakeRoleProvider) AddRoles(guildID string, memberID string, roleIDs []string) error {
	f.memberRoles[memberID] = append(f.memberRoles[memberID], roleIDs...)
	return nil
}

func (f *fakeRoleProvider) RemoveRoles(guildID string, memberID string, roleIDs []string) error {
	for _, roleID := range roleIDs {
		var kept []string
		for _, held := range f.memberRoles[memberID] {
			if held != roleID {
				kept = append(kept, held)
			}
		}
		f.memberRoles[memberID] = kept
		f.removed = append(f.removed, roleID)
	}
	return nil
}

type tickingClock struct {
	current time.Time
}

func (c *tickingClock) now() time.Time {
	return c.current
}

func newUndoTestBot() (*TimekeeperBot, *fakeRoleProvider, *tickingClock) {
	roles := &fakeRoleProvider{
		memberRoles: map[string][]string{
			"owner-1": {"role-a"},
		},
		guildRoles: []string{"role-a"},
		roleNames:  map[string]string{"role-a": "Veteran"},
	}
	clock := &tickingClock{current: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	bot := &TimekeeperBot{
		Roles:        roles,
		UndoSessions: undo.NewStore(undo.DefaultTTL, clock.now),
	}
	return bot, roles, clock
}

func TestRedeemUndoControlRemovesRole(t *testing.T) {
	bot, roles, _ := newUndoTestBot()
	controls := bot.UndoSessions.Register("guild-1", "owner-1", []string{"role-a"})
	require.Len(t, controls, 1)

	notice := bot.redeemUndoControl(controls[0].Token, "owner-1")

	assert.Equal(t, "Removed role: **Veteran**.", notice)
	assert.Equal(t, []string{"role-a"}, roles.removed)
	assert.Empty(t, roles.memberRoles["owner-1"])
}

func TestRedeemUndoControlTwiceReportsNotFound(t *testing.T) {
	//Buttons stay pressable until expiry, so a second press must land in the
	//not-found branch rather than trying to remove the role again.
	bot, roles, _ := newUndoTestBot()
	controls := bot.UndoSessions.Register("guild-1", "owner-1", []string{"role-a"})

	first := bot.redeemUndoControl(controls[0].Token, "owner-1")
	require.Equal(t, "Removed role: **Veteran**.", first)

	second := bot.redeemUndoControl(controls[0].Token, "owner-1")
	assert.Equal(t, roleNotHeldNotice, second)
	//Only the first press reached the role removal call.
	assert.Equal(t, []string{"role-a"}, roles.removed)
}

func TestRedeemUndoControlByOtherMemberDenied(t *testing.T) {
	bot, roles, _ := newUndoTestBot()
	controls := bot.UndoSessions.Register("guild-1", "owner-1", []string{"role-a"})

	notice := bot.redeemUndoControl(controls[0].Token, "intruder")

	assert.Equal(t, "You can only remove roles from your own profile.", notice)
	assert.Empty(t, roles.removed)
	assert.Equal(t, []string{"role-a"}, roles.memberRoles["owner-1"])
}

func TestRedeemUndoControlAfterExpiry(t *testing.T) {
	bot, roles, clock := newUndoTestBot()
	controls := bot.UndoSessions.Register("guild-1", "owner-1", []string{"role-a"})

	clock.current = clock.current.Add(undo.DefaultTTL + time.Second)
	notice := bot.redeemUndoControl(controls[0].Token, "owner-1")

	assert.Equal(t, "These buttons have expired.", notice)
	assert.Empty(t, roles.removed)
}
