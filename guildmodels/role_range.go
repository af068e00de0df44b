package guildmodels

//RoleRange maps an inclusive time travel count interval onto a single guild role.
//A nil Max means the range is open-ended. Ranges for a guild may freely overlap;
//a count matching several ranges earns every matching role at once.
type RoleRange struct {
	GuildID string `gorethink:"guild_id"`
	Min     int    `gorethink:"min"`
	Max     *int   `gorethink:"max"`
	RoleID  string `gorethink:"role_id"`
}

//Contains reports whether the given time travel count falls inside the range.
func (r RoleRange) Contains(count int) bool {
	if count < r.Min {
		return false
	}
	return r.Max == nil || count <= *r.Max
}

//Bounded returns a RoleRange covering [min, max].
func Bounded(guildID string, min, max int, roleID string) RoleRange {
	return RoleRange{
		GuildID: guildID,
		Min:     min,
		Max:     &max,
		RoleID:  roleID,
	}
}

//OpenEnded returns a RoleRange covering [min, ∞).
func OpenEnded(guildID string, min int, roleID string) RoleRange {
	return RoleRange{
		GuildID: guildID,
		Min:     min,
		Max:     nil,
		RoleID:  roleID,
	}
}
