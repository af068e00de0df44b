package guildmodels

//DefaultCommandPrefix is used for guilds which have never changed their prefix.
const DefaultCommandPrefix = "ep"

//GuildSettings contains per-guild configuration for the bot. An empty
//VerificationChannelID means profile ingestion is disabled for the guild.
type GuildSettings struct {
	GuildID               string `gorethink:"id"`
	VerificationChannelID string `gorethink:"verification_channel_id"`
	CommandPrefix         string `gorethink:"command_prefix"`
}

//DefaultSettings returns the settings a guild has before any configuration
//command has been run for it.
func DefaultSettings(gid string) GuildSettings {
	return GuildSettings{
		GuildID:       gid,
		CommandPrefix: DefaultCommandPrefix,
	}
}
