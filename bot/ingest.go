package bot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"timekeeper/ingest"
	"timekeeper/reconcile"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

//ownershipRejectionNotice is sent when the claiming user does not match the
//member the profile embed describes.
const ownershipRejectionNotice = "Only the account owner can validate time travel levels."

//noClaimRejectionNotice is sent when no profile command was found in the
//lookback window at all.
const noClaimRejectionNotice = "No `rpg p` or `rpg profile` command found. Run your profile command and try again."

//HandleProfileEmbed processes a profile embed posted by the game bot: it
//verifies the channel, extracts the time travel count, attributes the embed to
//the member who requested it and reconciles that member's roles.
func (b *TimekeeperBot) HandleProfileEmbed(msg *discordgo.MessageCreate) {
	settings, err := b.DBConnection.GetSettings(msg.GuildID)
	if err != nil {
		logrus.Warnf("Dropping profile embed in guild %v as settings could not be loaded: %v", msg.GuildID, err)
		return
	}
	//An unset verification channel disables ingestion entirely
	if settings.VerificationChannelID == "" || settings.VerificationChannelID != msg.ChannelID {
		logrus.Debugf("Ignoring profile embed in channel %v: not the verification channel for guild %v", msg.ChannelID, msg.GuildID)
		return
	}

	embed := msg.Embeds[0]
	progressValue, found := progressField(embed)
	if !found {
		logrus.Debugf("No %v field found in profile embed in guild %v", ingest.ProgressFieldName, msg.GuildID)
		return
	}
	count, ok := ingest.ParseTimeTravels(progressValue)
	if !ok {
		logrus.Debugf("No time travel count found in profile embed in guild %v", msg.GuildID)
		return
	}

	if embed.Author == nil || embed.Author.Name == "" {
		logrus.Debugf("Profile embed in guild %v carries no author name; cannot attribute it", msg.GuildID)
		return
	}
	ownerName := ingest.EmbedOwnerName(embed.Author.Name)

	history, err := b.DiscordConnection.FetchRecent(msg.ChannelID, b.Correlation.LookbackLimit)
	if err != nil {
		logrus.Warnf("Dropping profile embed in guild %v as channel history could not be fetched: %v", msg.GuildID, err)
		return
	}
	claim, err := b.Correlation.Correlate(history, ownerName, time.Now())
	if err != nil {
		logrus.Infof("Rejecting profile embed in guild %v: %v", msg.GuildID, err)
		if errors.Is(err, ingest.ErrNoClaim) {
			b.sendNotice(msg.ChannelID, noClaimRejectionNotice)
		} else {
			b.sendNotice(msg.ChannelID, ownershipRejectionNotice)
		}
		return
	}

	logrus.Infof("Processing time travel roles for member %v (profile %q, count %v) in guild %v", claim.AuthorID, ownerName, count, msg.GuildID)
	b.reconcileMember(msg.GuildID, msg.ChannelID, claim.AuthorID, claim.AuthorName, count)
}

//reconcileMember runs the reconciliation engine for one member and renders
//the outcome, wiring undo buttons for the roles the member ends up with.
func (b *TimekeeperBot) reconcileMember(guildID string, channelID string, memberID string, memberName string, count int) {
	ranges, err := b.DBConnection.ListRanges(guildID)
	if err != nil {
		logrus.Warnf("Dropping reconciliation for member %v in guild %v as ranges could not be loaded: %v", memberID, guildID, err)
		b.sendNotice(channelID, "An error occurred while processing your request.")
		return
	}
	guildRoleIDs, err := b.Roles.GuildRoleIDs(guildID)
	if err != nil {
		b.sendNotice(channelID, "An error occurred while processing your request.")
		return
	}
	memberRoleIDs, err := b.Roles.MemberRoleIDs(guildID, memberID)
	if err != nil {
		b.sendNotice(channelID, "An error occurred while processing your request.")
		return
	}

	outcome := reconcile.Plan(ranges, memberRoleIDs, guildRoleIDs, count)
	result := reconcile.Apply(b.Roles, guildID, memberID, outcome)

	b.presentOutcome(guildID, channelID, memberID, memberName, result)
}

//presentOutcome renders a reconciliation result as an embed with one undo
//button per role the member now holds because of it.
func (b *TimekeeperBot) presentOutcome(guildID string, channelID string, memberID string, memberName string, result reconcile.Result) {
	outcome := result.Outcome

	var description string
	colour := successMessageColour
	undoRoles := outcome.RetainedRoles()
	switch {
	case result.Partial():
		description = fmt.Sprintf("Something went wrong part-way through updating your roles for time travel count **%v**. Your roles may be inconsistent; please try again.", outcome.TargetValue)
		colour = warnMessageColour
		undoRoles = nil
	case result.Failed():
		description = fmt.Sprintf("An error occurred while updating your roles for time travel count **%v**.", outcome.TargetValue)
		colour = errorMessageColour
		undoRoles = nil
	case outcome.NoMatch():
		description = fmt.Sprintf("No roles configured for time travel count: **%v**.", outcome.TargetValue)
		colour = errorMessageColour
	case outcome.AllRolesMissing():
		description = "Configured roles not found in the guild."
		colour = errorMessageColour
	case outcome.AlreadyCorrect:
		description = fmt.Sprintf("All configured roles are already assigned for time travel count: **%v**.", outcome.TargetValue)
	default:
		description = fmt.Sprintf("Assigned the following roles for time travel count: **%v**.", outcome.TargetValue)
	}

	embed := discordgo.MessageEmbed{
		Title:       "Time Travel Role Assignment",
		Type:        discordgo.EmbedTypeRich,
		Description: description,
		Color:       colour,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("User: %v", memberName),
		},
	}
	if len(undoRoles) > 0 {
		var mentions []string
		for _, roleID := range undoRoles {
			mentions = append(mentions, fmt.Sprintf("<@&%v>", roleID))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Roles",
			Value: strings.Join(mentions, "\n"),
		})
	}
	if len(outcome.MissingRoles) > 0 && !outcome.AllRolesMissing() {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Configured roles missing from the guild",
			Value: strings.Join(outcome.MissingRoles, "\n"),
		})
	}

	send := discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{&embed},
	}
	if len(undoRoles) > 0 {
		controls := b.UndoSessions.Register(guildID, memberID, undoRoles)
		roleNames := b.roleNames(guildID)
		var buttons []discordgo.MessageComponent
		for _, control := range controls {
			label := roleNames[control.RoleID]
			if label == "" {
				label = control.RoleID
			}
			buttons = append(buttons, discordgo.Button{
				Label:    fmt.Sprintf("Remove %v", label),
				Style:    discordgo.DangerButton,
				CustomID: control.Token,
			})
		}
		//An action row holds at most five buttons, and a message at most
		//five rows
		for len(buttons) > 0 && len(send.Components) < 5 {
			row := buttons
			if len(row) > 5 {
				row = row[:5]
			}
			send.Components = append(send.Components, discordgo.ActionsRow{Components: row})
			buttons = buttons[len(row):]
		}
	}

	_, err := b.DiscordSession().ChannelMessageSendComplex(channelID, &send)
	if err != nil {
		logrus.Errorf("Failed to send role assignment outcome to channel %v due to error %v", channelID, err)
	}
}

func (b *TimekeeperBot) sendNotice(channelID string, notice string) {
	_, err := b.DiscordSession().ChannelMessageSend(channelID, notice)
	if err != nil {
		logrus.Errorf("Failed to send notice to channel %v due to error %v", channelID, err)
	}
}

func (b *TimekeeperBot) roleNames(guildID string) map[string]string {
	names, err := b.Roles.RoleNames(guildID)
	if err != nil {
		return map[string]string{}
	}
	return names
}

func progressField(embed *discordgo.MessageEmbed) (string, bool) {
	for _, field := range embed.Fields {
		if field != nil && field.Name == ingest.ProgressFieldName {
			return field.Value, true
		}
	}
	return "", false
}
