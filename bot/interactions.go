package bot

import (
	"errors"
	"fmt"

	"timekeeper/undo"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

//roleNotHeldNotice is sent when an undo control targets a role the member no
//longer has. Removing an already removed role is a normal branch, not a crash.
const roleNotHeldNotice = "Role not found or already removed."

//HandleInteraction is called for every interaction event. Only undo button
//presses are of interest; anything else is ignored.
func (b *TimekeeperBot) HandleInteraction(i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	token := i.MessageComponentData().CustomID
	if !undo.IsControlToken(token) {
		return
	}
	if i.Member == nil || i.Member.User == nil {
		return
	}

	notice := b.redeemUndoControl(token, i.Member.User.ID)
	b.replyEphemeral(i, notice)
}

//redeemUndoControl validates an undo control press and, when allowed, removes
//the role it names. The returned notice is what the pressing user should see.
func (b *TimekeeperBot) redeemUndoControl(token string, invokerID string) string {
	claim, err := b.UndoSessions.Redeem(token, invokerID)
	if err != nil {
		return redemptionFailureNotice(err)
	}

	memberRoleIDs, err := b.Roles.MemberRoleIDs(claim.GuildID, claim.OwnerID)
	if err != nil {
		return "An error occurred while removing your role."
	}
	held := false
	for _, roleID := range memberRoleIDs {
		if roleID == claim.RoleID {
			held = true
			break
		}
	}
	if !held {
		return roleNotHeldNotice
	}

	err = b.Roles.RemoveRoles(claim.GuildID, claim.OwnerID, []string{claim.RoleID})
	if err != nil {
		return "An error occurred while removing your role."
	}

	logrus.Infof("Removed role %v from member %v in guild %v via undo control", claim.RoleID, claim.OwnerID, claim.GuildID)
	return fmt.Sprintf("Removed role: **%v**.", b.roleName(claim.GuildID, claim.RoleID))
}

func redemptionFailureNotice(err error) string {
	switch {
	case errors.Is(err, undo.ErrNotOwner):
		return "You can only remove roles from your own profile."
	case errors.Is(err, undo.ErrExpired):
		return "These buttons have expired."
	default:
		return roleNotHeldNotice
	}
}

func (b *TimekeeperBot) roleName(guildID string, roleID string) string {
	names, err := b.Roles.RoleNames(guildID)
	if err != nil || names[roleID] == "" {
		return roleID
	}
	return names[roleID]
}

func (b *TimekeeperBot) replyEphemeral(i *discordgo.InteractionCreate, content string) {
	err := b.DiscordSession().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		logrus.Errorf("Failed to respond to undo interaction due to error %v", err)
	}
}
