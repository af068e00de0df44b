package db

import (
	"fmt"

	"timekeeper/guildmodels"

	"github.com/sirupsen/logrus"
	rethink "gopkg.in/gorethink/gorethink.v3"
)

const guildSettingsTable string = "guild_settings"

//GetSettings fetches the stored settings for a guild. If the guild has never
//been configured, defaults are returned without inserting anything; settings
//rows are only created by the Set* functions.
func (db *DBConnection) GetSettings(guildID string) (*guildmodels.GuildSettings, error) {
	var settings guildmodels.GuildSettings
	res, err := rethink.Table(guildSettingsTable).Get(guildID).Run(db.session)
	if err != nil {
		logrus.Errorf("Failed to query database for guild settings %v because: %v.", guildID, err)
		return nil, fmt.Errorf("failed to query database for guild settings %v because: %v", guildID, err)
	}
	defer res.Close()

	if res.IsNil() {
		defaults := guildmodels.DefaultSettings(guildID)
		return &defaults, nil
	}
	err = res.One(&settings)
	if err != nil {
		logrus.Errorf("Failed to read guild settings %v from database because: %v.", guildID, err)
		return nil, fmt.Errorf("failed to read guild settings %v from database because: %v", guildID, err)
	}
	if settings.CommandPrefix == "" {
		settings.CommandPrefix = guildmodels.DefaultCommandPrefix
	}
	return &settings, nil
}

//SetVerificationChannel stores the channel in which profile embeds should be
//honoured for the given guild, creating the settings row if needed.
func (db *DBConnection) SetVerificationChannel(guildID string, channelID string) error {
	return db.upsertSettings(guildID, map[string]interface{}{
		"id":                      guildID,
		"verification_channel_id": channelID,
	})
}

//SetPrefix stores a new command prefix for the given guild, creating the
//settings row if needed.
func (db *DBConnection) SetPrefix(guildID string, prefix string) error {
	return db.upsertSettings(guildID, map[string]interface{}{
		"id":             guildID,
		"command_prefix": prefix,
	})
}

func (db *DBConnection) upsertSettings(guildID string, doc map[string]interface{}) error {
	resp, err := rethink.Table(guildSettingsTable).Insert(doc, rethink.InsertOpts{
		Conflict: "update",
	}).RunWrite(db.session)
	if err != nil {
		logrus.Warnf("Encountered error upserting settings for guild %v into database: %v.", guildID, err)
		return err
	} else if resp.Errors > 0 {
		err := fmt.Errorf("%v", resp.FirstError)
		logrus.Warnf("Encountered error upserting settings for guild %v into database: %v.", guildID, err)
		return err
	}
	return nil
}
