package bot

import (
	"net/url"
	"os"

	"timekeeper/db"
	"timekeeper/discord"
	"timekeeper/ingest"
	"timekeeper/undo"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

const rpgBotUIDEnvVar string = "TIMEKEEPER_RPG_BOT_UID"

//epicRPGBotUID is the account the Epic RPG game bot posts profile embeds from.
const epicRPGBotUID string = "555955826880413696"

//RoleProvider is the narrow slice of the discord connection the role
//reconciliation and undo paths depend on, so both can be exercised against
//fakes.
type RoleProvider interface {
	MemberRoleIDs(guildID string, memberID string) ([]string, error)
	GuildRoleIDs(guildID string) ([]string, error)
	RoleNames(guildID string) (map[string]string, error)
	AddRoles(guildID string, memberID string, roleIDs []string) error
	RemoveRoles(guildID string, memberID string, roleIDs []string) error
}

//TimekeeperBot represents an instance of the discord bot, containing handles to the various external connections.
type TimekeeperBot struct {
	DiscordConnection *discord.EventSource
	DBConnection      *db.DBConnection
	Roles             RoleProvider
	UndoSessions      *undo.Store
	Correlation       ingest.Policy
	rpgBotUID         string
}

//Init creates a new TimekeeperBot instance
func Init() (*TimekeeperBot, error) {
	var res TimekeeperBot
	res.UndoSessions = undo.NewStore(undo.DefaultTTL, nil)
	res.Correlation = ingest.DefaultPolicy()
	res.rpgBotUID = epicRPGBotUID
	if uid, exists := os.LookupEnv(rpgBotUIDEnvVar); exists {
		res.rpgBotUID = uid
	}

	//Start database connection
	db, err := db.Init()
	if err != nil {
		logrus.Errorf("Cannot start bot due to error initializing database connection: %v", err)
		return nil, err
	}
	res.DBConnection = db

	//Start discord connection. Events may begin arriving as soon as the
	//gateway opens, so the repository handle must already be in place.
	disc, err := discord.StartDiscordListener(&res)
	if err != nil {
		logrus.Errorf("Cannot start bot due to error initializing discord connection: %v", err)
		return nil, err
	}
	res.DiscordConnection = disc
	res.Roles = disc

	return &res, nil
}

//BotAddURL generates a URL that can be used to add the bot to a server
func (b *TimekeeperBot) BotAddURL() (*url.URL, error) {
	return b.DiscordConnection.BotAddURL()
}

//DiscordSession returns a handle to the underlying discord session
func (b *TimekeeperBot) DiscordSession() *discordgo.Session {
	return b.DiscordConnection.Session()
}

//Close cleanly terminates the bot instance
func (b *TimekeeperBot) Close() {
	logrus.Info("Terminating bot...")
	b.DiscordConnection.Close()
	b.DBConnection.Close()
}
