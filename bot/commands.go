package bot

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

//commandNamespace is the sub-namespace all admin commands live under, e.g.
//`ep tt setrole`.
const commandNamespace = "tt"

//HandleMessage is called upon every received message. Profile embeds from the
//game bot are routed to ingestion; everything else is checked against the
//guild's command prefix.
func (b *TimekeeperBot) HandleMessage(msg *discordgo.MessageCreate) {
	if msg.Author == nil || msg.GuildID == "" {
		return
	}

	//Game bot embeds trigger reconciliation
	if msg.Author.Bot {
		if msg.Author.ID == b.rpgBotUID && len(msg.Embeds) > 0 {
			b.HandleProfileEmbed(msg)
		}
		return
	}

	settings, err := b.DBConnection.GetSettings(msg.GuildID)
	if err != nil {
		//Without settings we cannot even know the guild's prefix; drop the
		//event rather than retry.
		logrus.Warnf("Dropping message in guild %v as settings could not be loaded: %v", msg.GuildID, err)
		return
	}

	words := strings.Fields(msg.Content)
	if len(words) < 2 {
		return
	}
	if !strings.EqualFold(words[0], settings.CommandPrefix) || !strings.EqualFold(words[1], commandNamespace) {
		return
	}

	subCommand := ""
	var args []string
	if len(words) > 2 {
		subCommand = strings.ToLower(words[2])
		args = words[3:]
	}

	var result Response
	switch subCommand {
	case "":
		result = b.helpCommand(settings.CommandPrefix)
	case "setrole":
		result = b.setRoleCommand(msg, args)
	case "delrole":
		result = b.delRoleCommand(msg, args)
	case "setchannel":
		result = b.setChannelCommand(msg)
	case "setprefix":
		result = b.setPrefixCommand(msg, args)
	case "config":
		result = b.configCommand(msg)
	default:
		result = b.unknownCommand(msg, settings.CommandPrefix)
	}

	b.replyWith(msg, result)
}

func (b *TimekeeperBot) replyWith(msg *discordgo.MessageCreate, result Response) {
	result.WriteToLog()
	resp := result.DiscordResponse()
	resp.Reference = &discordgo.MessageReference{
		MessageID: msg.ID,
		ChannelID: msg.ChannelID,
		GuildID:   msg.GuildID,
	}
	_, err := b.DiscordSession().ChannelMessageSendComplex(msg.ChannelID, resp)
	if err != nil {
		logrus.Errorf("Failed to send response to command due to error %v", err)
	}
}
