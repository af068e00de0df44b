package bot

import (
	"fmt"
	"strings"
	"time"

	"timekeeper/guildmodels"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

const (
	successMessageColour int = 0x28bd00
	warnMessageColour    int = 0xbdb900
	errorMessageColour   int = 0xbd1b00
	infoMessageColour    int = 0x0077bd
)

//Response represents the result of a command which can be both communicated over discord and written to the log.
type Response interface {
	DiscordResponse() *discordgo.MessageSend
	WriteToLog()
}

//ResponseSuccess will be returned when a command has been successfully completed
type ResponseSuccess struct {
	//The base command name
	command string
	//The entire text contents of the message
	commandMsg string
	//A human-readable description of what was done
	description string
	//The time the success was logged at
	timestamp time.Time
}

//DiscordResponse builds a MessageSend object which can be sent back to whoever sent a command message.
func (r ResponseSuccess) DiscordResponse() *discordgo.MessageSend {
	embed := discordgo.MessageEmbed{
		Title:       "Success! \\o/",
		Type:        discordgo.EmbedTypeRich,
		Description: r.description,
		Timestamp:   r.timestamp.Format(time.RFC3339),
		Color:       successMessageColour,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Log ID: %d", r.timestamp.UnixNano()),
		},
	}
	return &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{&embed}}
}

//WriteToLog dumps data on a discord command response to the log
func (r ResponseSuccess) WriteToLog() {
	logrus.Infof("%v Completed command %v successfully.", logLineLabel(r.timestamp), r.commandMsg)
}

//ResponseSyntaxError will be returned when there was an issue with the user's input
type ResponseSyntaxError struct {
	//The base command name
	command string
	//The entire text contents of the message
	commandMsg string
	//A human-readable description of the issue
	description string
	//A description of the correct syntax
	syntax string
	//The time the error was logged at
	timestamp time.Time
}

//DiscordResponse builds a MessageSend object which can be sent back to whoever sent a command message.
func (r ResponseSyntaxError) DiscordResponse() *discordgo.MessageSend {
	description := fmt.Sprintf("Sorry, but there was a problem with the data you supplied for the %v command: \n%v", r.command, r.description)
	fields := map[string]string{
		"Your command":   r.commandMsg,
		"Correct syntax": r.syntax,
	}
	embed := discordgo.MessageEmbed{
		Title:       "Uh-oh, there was something wrong with that command",
		Type:        discordgo.EmbedTypeRich,
		Description: description,
		Timestamp:   r.timestamp.Format(time.RFC3339),
		Color:       errorMessageColour,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Log ID: %d", r.timestamp.UnixNano()),
		},
		Fields: stringMapToFields(fields),
	}
	return &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{&embed}}
}

//WriteToLog dumps data on a discord command response to the log
func (r ResponseSyntaxError) WriteToLog() {
	logrus.Infof("%v Syntax error in command %v: %v", logLineLabel(r.timestamp), r.commandMsg, r.description)
}

//ResponseNotAllowed will be returned when a user tried to run a command that they do not have the correct permission for
type ResponseNotAllowed struct {
	//The base command name
	command string
	//The entire text contents of the message
	commandMsg string
	//The permission the sender was missing
	missingPermission string
	//The time the error was logged at
	timestamp time.Time
}

//DiscordResponse builds a MessageSend object which can be sent back to whoever sent a command message.
func (r ResponseNotAllowed) DiscordResponse() *discordgo.MessageSend {
	fields := map[string]string{
		"Required permission": r.missingPermission,
		"Command":             r.commandMsg,
	}
	embed := discordgo.MessageEmbed{
		Title:       "That's illegal m8",
		Type:        discordgo.EmbedTypeRich,
		Description: "You don't have permission to use this command.",
		Timestamp:   r.timestamp.Format(time.RFC3339),
		Color:       errorMessageColour,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Log ID: %d", r.timestamp.UnixNano()),
		},
		Fields: stringMapToFields(fields),
	}
	return &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{&embed}}
}

//WriteToLog dumps data on a discord command response to the log
func (r ResponseNotAllowed) WriteToLog() {
	logrus.Infof("%v Rejected command `%v` as the sender did not have the %v permission", logLineLabel(r.timestamp), r.commandMsg, r.missingPermission)
}

//ResponseInternalError will be returned when there was some kind of error within the bot or when communicating with
//APIs
type ResponseInternalError struct {
	//The base command name
	command string
	//The entire text contents of the message
	commandMsg string
	//A human-readable description of the issue
	description string
	//A map containing fields which should be included in the embed
	data map[string]string
	//The time the error was logged at
	timestamp time.Time
}

//DiscordResponse builds a MessageSend object which can be sent back to whoever sent a command message.
func (r ResponseInternalError) DiscordResponse() *discordgo.MessageSend {
	description := fmt.Sprintf("Oops! I encountered an unexpected error whilst running your %v command. Please try again later or file a bug report.", r.command)
	dataWithDescription := map[string]string{"Error": r.description}
	for k, v := range r.data {
		dataWithDescription[k] = v
	}
	embed := discordgo.MessageEmbed{
		Title:       "Oops, something went wrong ;w;",
		Type:        discordgo.EmbedTypeRich,
		Description: description,
		Timestamp:   r.timestamp.Format(time.RFC3339),
		Color:       errorMessageColour,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Log ID: %d", r.timestamp.UnixNano()),
		},
		Fields: stringMapToFields(dataWithDescription),
	}
	return &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{&embed}}
}

//WriteToLog dumps data on a discord command response to the log
func (r ResponseInternalError) WriteToLog() {
	logrus.Warnf("%v Internal error whilst executing command %v: %v | data: %v", logLineLabel(r.timestamp), r.commandMsg, r.description, r.data)
}

//ResponseUnknownCommand will be returned for an unrecognised sub-command
type ResponseUnknownCommand struct {
	//The entire text contents of the message
	commandMsg string
	//The prefix configured for the guild
	prefix string
	//The time the error was logged at
	timestamp time.Time
}

//DiscordResponse builds a MessageSend object which can be sent back to whoever sent a command message.
func (r ResponseUnknownCommand) DiscordResponse() *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content: fmt.Sprintf("Unknown command. Use `%v tt` to view available commands.", r.prefix),
	}
}

//WriteToLog dumps data on a discord command response to the log
func (r ResponseUnknownCommand) WriteToLog() {
	logrus.Infof("%v Rejected unknown command `%v`", logLineLabel(r.timestamp), r.commandMsg)
}

//ResponseHelp lists the available commands
type ResponseHelp struct {
	//The prefix configured for the guild
	prefix string
	//The time the command was handled at
	timestamp time.Time
}

//DiscordResponse builds a MessageSend object which can be sent back to whoever sent a command message.
func (r ResponseHelp) DiscordResponse() *discordgo.MessageSend {
	fields := map[string]string{
		"Set Role":                 fmt.Sprintf("`%[1]v tt setrole <min> <max> <role_id>`\n`%[1]v tt setrole <min>+ <role_id>`", r.prefix),
		"Delete Role Mapping":      fmt.Sprintf("`%v tt delrole <role_id>`", r.prefix),
		"Set Verification Channel": fmt.Sprintf("`%v tt setchannel`", r.prefix),
		"Set Prefix":               fmt.Sprintf("`%v tt setprefix <prefix>`", r.prefix),
		"View Configuration":       fmt.Sprintf("`%v tt config`", r.prefix),
	}
	embed := discordgo.MessageEmbed{
		Title:       "Time Travel Bot Commands",
		Type:        discordgo.EmbedTypeRich,
		Description: "Here are the available commands for the Time Travel Bot:",
		Color:       infoMessageColour,
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Use the commands to configure roles and channels for time travel tracking.",
		},
		Fields: stringMapToFields(fields),
	}
	return &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{&embed}}
}

//WriteToLog dumps data on a discord command response to the log
func (r ResponseHelp) WriteToLog() {
	logrus.Debugf("%v Sent command list", logLineLabel(r.timestamp))
}

//ResponseConfig displays the current verification channel and role ranges for a guild
type ResponseConfig struct {
	settings *guildmodels.GuildSettings
	ranges   []guildmodels.RoleRange
	//The time the command was handled at
	timestamp time.Time
}

//DiscordResponse builds a MessageSend object which can be sent back to whoever sent a command message.
func (r ResponseConfig) DiscordResponse() *discordgo.MessageSend {
	channelValue := "Not Set"
	if r.settings.VerificationChannelID != "" {
		channelValue = fmt.Sprintf("<#%v>", r.settings.VerificationChannelID)
	}
	rangesValue := "No roles configured."
	if len(r.ranges) > 0 {
		var lines []string
		for _, rr := range r.ranges {
			lines = append(lines, fmt.Sprintf("Role <@&%v>: %v - %v", rr.RoleID, rr.Min, formatMax(rr.Max)))
		}
		rangesValue = strings.Join(lines, "\n")
	}
	embed := discordgo.MessageEmbed{
		Title: "Server Configuration",
		Type:  discordgo.EmbedTypeRich,
		Color: infoMessageColour,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Command Prefix", Value: fmt.Sprintf("`%v`", r.settings.CommandPrefix)},
			{Name: "Verification Channel", Value: channelValue},
			{Name: "Role Mappings", Value: rangesValue},
		},
	}
	return &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{&embed}}
}

//WriteToLog dumps data on a discord command response to the log
func (r ResponseConfig) WriteToLog() {
	logrus.Debugf("%v Displayed configuration for guild %v", logLineLabel(r.timestamp), r.settings.GuildID)
}

/////////////////////
//Utility Functions//
/////////////////////

func logLineLabel(t time.Time) string {
	return fmt.Sprintf("#%v# | ", t.UnixNano())
}

func formatMax(max *int) string {
	if max == nil {
		return "infinity"
	}
	return fmt.Sprintf("%v", *max)
}

func stringMapToFields(fields map[string]string) []*discordgo.MessageEmbedField {
	var res []*discordgo.MessageEmbedField
	for fieldName, content := range fields {
		field := discordgo.MessageEmbedField{
			Name:   fieldName,
			Value:  content,
			Inline: false,
		}
		res = append(res, &field)
	}
	return res
}
