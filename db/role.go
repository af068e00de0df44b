package db

import (
	"fmt"

	"timekeeper/guildmodels"

	"github.com/sirupsen/logrus"
	rethink "gopkg.in/gorethink/gorethink.v3"
)

const roleRangesTable string = "role_ranges"

//AddRange inserts a new role range into the database. No uniqueness check is
//performed; duplicate and overlapping ranges are permitted.
func (db *DBConnection) AddRange(rr guildmodels.RoleRange) error {
	resp, err := rethink.Table(roleRangesTable).Insert(rr).RunWrite(db.session)
	if err != nil {
		logrus.Warnf("Encountered error inserting role range %v into database: %v.", rr, err)
		return err
	} else if resp.Errors > 0 {
		err := fmt.Errorf("%v", resp.FirstError)
		logrus.Warnf("Encountered error inserting role range into DB: %v", err)
		return err
	}
	return nil
}

//ListRanges returns every role range configured for the given guild.
func (db *DBConnection) ListRanges(guildID string) ([]guildmodels.RoleRange, error) {
	filter := map[string]interface{}{
		"guild_id": guildID,
	}
	logrus.Debugf("Looking up role ranges with filter %#v", filter)
	query := rethink.Table(roleRangesTable).Filter(filter)
	res, err := query.Run(db.session)
	if err != nil {
		logrus.Warnf("Encountered error looking up role ranges for guild %v in database: %v.", guildID, err)
		return nil, err
	}
	defer res.Close()
	if res.IsNil() {
		return nil, nil
	}
	var ranges []guildmodels.RoleRange
	err = res.All(&ranges)
	if err != nil {
		logrus.Warnf("Encountered error looking up role ranges for guild %v in database: %v.", guildID, err)
		return nil, err
	}
	return ranges, nil
}

//RemoveRange deletes every range configured for the given role in the given
//guild, returning the number of deleted rows. Zero deletions is a no-op, not
//an error.
func (db *DBConnection) RemoveRange(guildID string, roleID string) (int, error) {
	filter := map[string]interface{}{
		"guild_id": guildID,
		"role_id":  roleID,
	}
	resp, err := rethink.Table(roleRangesTable).Filter(filter).Delete().RunWrite(db.session)
	if err != nil {
		logrus.Warnf("Encountered error deleting ranges for role %v in guild %v: %v.", roleID, guildID, err)
		return 0, err
	} else if resp.Errors > 0 {
		err := fmt.Errorf("%v", resp.FirstError)
		logrus.Warnf("Encountered error deleting ranges for role %v in guild %v: %v.", roleID, guildID, err)
		return 0, err
	}
	return resp.Deleted, nil
}
