package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"timekeeper/guildmodels"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

const setRoleSyntax string = "`<prefix> tt setrole <min> <max> <role_id>` or `<prefix> tt setrole <min>+ <role_id>`"
const delRoleSyntax string = "`<prefix> tt delrole <role_id>`"
const setPrefixSyntax string = "`<prefix> tt setprefix <new_prefix>`"

func (b *TimekeeperBot) helpCommand(prefix string) Response {
	return ResponseHelp{
		prefix:    prefix,
		timestamp: time.Now(),
	}
}

func (b *TimekeeperBot) unknownCommand(msg *discordgo.MessageCreate, prefix string) Response {
	return ResponseUnknownCommand{
		commandMsg: msg.Content,
		prefix:     prefix,
		timestamp:  time.Now(),
	}
}

//setRoleCommand adds a role range mapping.
//syntax: <prefix> tt setrole <min> <max> <role_id>  |  <prefix> tt setrole <min>+ <role_id>
func (b *TimekeeperBot) setRoleCommand(msg *discordgo.MessageCreate, args []string) Response {
	commandName := "setrole"
	if denied := b.requirePermission(msg, commandName, discordgo.PermissionManageRoles, "Manage Roles"); denied != nil {
		return denied
	}

	rr, parseErr := parseRangeArgs(msg.GuildID, args)
	if parseErr != "" {
		return ResponseSyntaxError{
			command:     commandName,
			commandMsg:  msg.Content,
			description: parseErr,
			syntax:      setRoleSyntax,
			timestamp:   time.Now(),
		}
	}

	//The role must exist in the guild at configuration time
	exists, err := b.guildRoleExists(msg.GuildID, rr.RoleID)
	if err != nil {
		return ResponseInternalError{
			command:     commandName,
			commandMsg:  msg.Content,
			description: "Failed to fetch the guild's roles",
			data:        map[string]string{"Error": err.Error()},
			timestamp:   time.Now(),
		}
	}
	if !exists {
		return ResponseSyntaxError{
			command:     commandName,
			commandMsg:  msg.Content,
			description: fmt.Sprintf("Role with ID `%v` not found.", rr.RoleID),
			syntax:      setRoleSyntax,
			timestamp:   time.Now(),
		}
	}

	err = b.DBConnection.AddRange(rr)
	if err != nil {
		logrus.Warnf("Encountered error %v when trying to add range for role %v on server %v", err, rr.RoleID, msg.GuildID)
		return ResponseInternalError{
			command:     commandName,
			commandMsg:  msg.Content,
			description: "Encountered internal database error whilst saving the role range",
			data:        map[string]string{"Error": err.Error()},
			timestamp:   time.Now(),
		}
	}
	return ResponseSuccess{
		command:     commandName,
		commandMsg:  msg.Content,
		description: fmt.Sprintf("Configured role <@&%v> for time travel range %v - %v.", rr.RoleID, rr.Min, formatMax(rr.Max)),
		timestamp:   time.Now(),
	}
}

//delRoleCommand removes every range mapping for a role.
//syntax: <prefix> tt delrole <role_id>
func (b *TimekeeperBot) delRoleCommand(msg *discordgo.MessageCreate, args []string) Response {
	commandName := "delrole"
	if denied := b.requirePermission(msg, commandName, discordgo.PermissionManageRoles, "Manage Roles"); denied != nil {
		return denied
	}

	if len(args) != 1 {
		return ResponseSyntaxError{
			command:     commandName,
			commandMsg:  msg.Content,
			description: "Expected exactly one role ID",
			syntax:      delRoleSyntax,
			timestamp:   time.Now(),
		}
	}
	roleID := args[0]

	deleted, err := b.DBConnection.RemoveRange(msg.GuildID, roleID)
	if err != nil {
		return ResponseInternalError{
			command:     commandName,
			commandMsg:  msg.Content,
			description: "Encountered internal database error whilst deleting the role mapping",
			data:        map[string]string{"Error": err.Error()},
			timestamp:   time.Now(),
		}
	}
	//Deleting a role with no mappings is a no-op, not an error
	description := fmt.Sprintf("Deleted %v role mapping(s) for role ID `%v`.", deleted, roleID)
	if deleted == 0 {
		description = fmt.Sprintf("No role mappings existed for role ID `%v`.", roleID)
	}
	return ResponseSuccess{
		command:     commandName,
		commandMsg:  msg.Content,
		description: description,
		timestamp:   time.Now(),
	}
}

//setChannelCommand marks the current channel as the guild's verification channel.
//syntax: <prefix> tt setchannel
func (b *TimekeeperBot) setChannelCommand(msg *discordgo.MessageCreate) Response {
	commandName := "setchannel"
	if denied := b.requirePermission(msg, commandName, discordgo.PermissionManageServer, "Manage Server"); denied != nil {
		return denied
	}

	err := b.DBConnection.SetVerificationChannel(msg.GuildID, msg.ChannelID)
	if err != nil {
		return ResponseInternalError{
			command:     commandName,
			commandMsg:  msg.Content,
			description: "Encountered internal database error whilst saving the verification channel",
			data:        map[string]string{"Error": err.Error()},
			timestamp:   time.Now(),
		}
	}
	return ResponseSuccess{
		command:     commandName,
		commandMsg:  msg.Content,
		description: fmt.Sprintf("Verification channel set to <#%v>.", msg.ChannelID),
		timestamp:   time.Now(),
	}
}

//setPrefixCommand changes the guild's command prefix.
//syntax: <prefix> tt setprefix <new_prefix>
func (b *TimekeeperBot) setPrefixCommand(msg *discordgo.MessageCreate, args []string) Response {
	commandName := "setprefix"
	if denied := b.requirePermission(msg, commandName, discordgo.PermissionManageServer, "Manage Server"); denied != nil {
		return denied
	}

	if len(args) != 1 || args[0] == "" {
		return ResponseSyntaxError{
			command:     commandName,
			commandMsg:  msg.Content,
			description: "Expected exactly one new prefix",
			syntax:      setPrefixSyntax,
			timestamp:   time.Now(),
		}
	}
	newPrefix := strings.ToLower(args[0])

	err := b.DBConnection.SetPrefix(msg.GuildID, newPrefix)
	if err != nil {
		return ResponseInternalError{
			command:     commandName,
			commandMsg:  msg.Content,
			description: "Encountered internal database error whilst saving the new prefix",
			data:        map[string]string{"Error": err.Error()},
			timestamp:   time.Now(),
		}
	}
	return ResponseSuccess{
		command:     commandName,
		commandMsg:  msg.Content,
		description: fmt.Sprintf("Command prefix changed to `%v`.", newPrefix),
		timestamp:   time.Now(),
	}
}

//configCommand displays the guild's verification channel and role mappings.
//syntax: <prefix> tt config
func (b *TimekeeperBot) configCommand(msg *discordgo.MessageCreate) Response {
	commandName := "config"
	if denied := b.requirePermission(msg, commandName, discordgo.PermissionManageServer, "Manage Server"); denied != nil {
		return denied
	}

	settings, err := b.DBConnection.GetSettings(msg.GuildID)
	if err != nil {
		return ResponseInternalError{
			command:     commandName,
			commandMsg:  msg.Content,
			description: "Encountered internal database error whilst loading guild settings",
			data:        map[string]string{"Error": err.Error()},
			timestamp:   time.Now(),
		}
	}
	ranges, err := b.DBConnection.ListRanges(msg.GuildID)
	if err != nil {
		return ResponseInternalError{
			command:     commandName,
			commandMsg:  msg.Content,
			description: "Encountered internal database error whilst loading role mappings",
			data:        map[string]string{"Error": err.Error()},
			timestamp:   time.Now(),
		}
	}
	return ResponseConfig{
		settings:  settings,
		ranges:    ranges,
		timestamp: time.Now(),
	}
}

/**************************
/     Utility Functions
/**************************/

//requirePermission returns a denial response when the sender lacks the given
//permission bit in the channel the command was sent from, or nil when the
//command may proceed.
func (b *TimekeeperBot) requirePermission(msg *discordgo.MessageCreate, commandName string, permission int64, permissionName string) Response {
	perms, err := b.DiscordSession().UserChannelPermissions(msg.Author.ID, msg.ChannelID)
	if err != nil {
		logrus.Warnf("Failed to check permissions for user %v in channel %v due to error %v", msg.Author.ID, msg.ChannelID, err)
		return ResponseInternalError{
			command:     commandName,
			commandMsg:  msg.Content,
			description: "Failed to check your permissions",
			data:        map[string]string{"Error": err.Error()},
			timestamp:   time.Now(),
		}
	}
	if perms&permission == 0 {
		return ResponseNotAllowed{
			command:           commandName,
			commandMsg:        msg.Content,
			missingPermission: permissionName,
			timestamp:         time.Now(),
		}
	}
	return nil
}

//parseRangeArgs interprets the argument forms of the setrole command. The
//returned string is empty on success and a human-readable problem description
//otherwise.
func parseRangeArgs(guildID string, args []string) (guildmodels.RoleRange, string) {
	var zero guildmodels.RoleRange
	if len(args) < 2 {
		return zero, "Missing arguments"
	}

	rangeArg := args[0]
	if strings.HasSuffix(rangeArg, "+") {
		//Open-ended form: <min>+ <role_id>
		if len(args) != 2 {
			return zero, "Open-ended ranges take exactly a minimum and a role ID"
		}
		min, err := strconv.Atoi(strings.TrimSuffix(rangeArg, "+"))
		if err != nil {
			return zero, fmt.Sprintf("`%v` is not a valid minimum", rangeArg)
		}
		if min < 0 {
			return zero, "The minimum must not be negative"
		}
		return guildmodels.OpenEnded(guildID, min, args[1]), ""
	}

	//Bounded form: <min> <max> <role_id>
	if len(args) != 3 {
		return zero, "Bounded ranges take a minimum, a maximum and a role ID"
	}
	min, err := strconv.Atoi(args[0])
	if err != nil {
		return zero, fmt.Sprintf("`%v` is not a valid minimum", args[0])
	}
	max, err := strconv.Atoi(args[1])
	if err != nil {
		return zero, fmt.Sprintf("`%v` is not a valid maximum", args[1])
	}
	if min < 0 {
		return zero, "The minimum must not be negative"
	}
	if max < min {
		return zero, "The maximum must not be below the minimum"
	}
	return guildmodels.Bounded(guildID, min, max, args[2]), ""
}

func (b *TimekeeperBot) guildRoleExists(guildID string, roleID string) (bool, error) {
	roleIDs, err := b.Roles.GuildRoleIDs(guildID)
	if err != nil {
		return false, err
	}
	for _, id := range roleIDs {
		if id == roleID {
			return true, nil
		}
	}
	return false, nil
}
