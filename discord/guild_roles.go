package discord

import (
	"timekeeper/ingest"

	"github.com/sirupsen/logrus"
)

//historyPageSize caps how many messages a single ownership scan will pull.
const historyPageSize = 50

//MemberRoleIDs returns the IDs of every role the given member currently holds.
func (e *EventSource) MemberRoleIDs(guildID string, memberID string) ([]string, error) {
	member, err := e.Session().GuildMember(guildID, memberID)
	if err != nil {
		logrus.Warnf("Failed to fetch member %v in guild %v from discord api: %v", memberID, guildID, err)
		return nil, err
	}
	return member.Roles, nil
}

//GuildRoleIDs returns the IDs of every role that exists in the given guild.
func (e *EventSource) GuildRoleIDs(guildID string) ([]string, error) {
	roles, err := e.Session().GuildRoles(guildID)
	if err != nil {
		logrus.Warnf("Failed to fetch guild roles for guild id %v", guildID)
		return nil, err
	}
	ids := make([]string, 0, len(roles))
	for _, role := range roles {
		ids = append(ids, role.ID)
	}
	return ids, nil
}

//RoleNames returns a map from role ID to role name for every role in the
//given guild.
func (e *EventSource) RoleNames(guildID string) (map[string]string, error) {
	roles, err := e.Session().GuildRoles(guildID)
	if err != nil {
		logrus.Warnf("Failed to fetch role names for guild %v due to error %v", guildID, err)
		return nil, err
	}
	names := make(map[string]string, len(roles))
	for _, role := range roles {
		names[role.ID] = role.Name
	}
	return names, nil
}

//AddRoles grants each of the given roles to a member. The discord API has no
//bulk role endpoint, so this is a sequential set of calls which stops at the
//first failure.
func (e *EventSource) AddRoles(guildID string, memberID string, roleIDs []string) error {
	for _, roleID := range roleIDs {
		err := e.Session().GuildMemberRoleAdd(guildID, memberID, roleID)
		if err != nil {
			logrus.Warnf("Failed to add role %v to member %v in guild %v: %v", roleID, memberID, guildID, err)
			return err
		}
	}
	return nil
}

//RemoveRoles revokes each of the given roles from a member, stopping at the
//first failure.
func (e *EventSource) RemoveRoles(guildID string, memberID string, roleIDs []string) error {
	for _, roleID := range roleIDs {
		err := e.Session().GuildMemberRoleRemove(guildID, memberID, roleID)
		if err != nil {
			logrus.Warnf("Failed to remove role %v from member %v in guild %v: %v", roleID, memberID, guildID, err)
			return err
		}
	}
	return nil
}

//FetchRecent returns up to limit messages of channel history, newest first,
//converted to the shape the correlation policy works on. No pagination beyond
//one page is attempted.
func (e *EventSource) FetchRecent(channelID string, limit int) ([]ingest.Message, error) {
	if limit <= 0 || limit > historyPageSize {
		limit = historyPageSize
	}
	msgs, err := e.Session().ChannelMessages(channelID, limit, "", "", "")
	if err != nil {
		logrus.Warnf("Failed to fetch message history for channel %v: %v", channelID, err)
		return nil, err
	}
	history := make([]ingest.Message, 0, len(msgs))
	for _, msg := range msgs {
		if msg.Author == nil {
			continue
		}
		history = append(history, ingest.Message{
			AuthorID:   msg.Author.ID,
			AuthorName: msg.Author.Username,
			Content:    msg.Content,
			IsBot:      msg.Author.Bot,
			Timestamp:  msg.Timestamp,
		})
	}
	return history, nil
}
