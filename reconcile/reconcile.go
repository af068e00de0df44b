//Package reconcile computes and applies the role delta needed to bring a
//member's configured roles in line with their reported time travel count.
package reconcile

import (
	"sort"

	"timekeeper/guildmodels"
)

//Outcome describes the result of planning a reconciliation. It is produced
//once per trigger event and never persisted.
type Outcome struct {
	//TargetValue is the time travel count the plan was computed for.
	TargetValue int
	//MatchedRanges are the configured ranges whose interval contains TargetValue.
	MatchedRanges []guildmodels.RoleRange
	//ResolvedRoles are the matched roles which still exist in the guild.
	ResolvedRoles []string
	//MissingRoles are matched roles which have been deleted from the guild
	//since they were configured.
	MissingRoles []string
	//ConflictingRoles are configured roles the member currently holds which do
	//not match TargetValue. Range membership is mutually exclusive: a member
	//holds exactly the roles for their current count, never stale ones.
	ConflictingRoles []string
	//AlreadyHeld are resolved roles the member already has.
	AlreadyHeld []string
	//ToAdd and ToRemove are the mutations needed to reach the desired state.
	ToAdd    []string
	ToRemove []string
	//AlreadyCorrect is true when no mutation is needed.
	AlreadyCorrect bool
}

//NoMatch reports whether no configured range contained the target value.
func (o Outcome) NoMatch() bool {
	return len(o.MatchedRanges) == 0
}

//AllRolesMissing reports whether ranges matched but every matched role has
//since been deleted from the guild.
func (o Outcome) AllRolesMissing() bool {
	return len(o.MatchedRanges) > 0 && len(o.ResolvedRoles) == 0
}

//RetainedRoles returns the roles the member should end up holding, for use
//when wiring undo controls. After a successful apply this is exactly
//ResolvedRoles; when nothing needed changing it equals AlreadyHeld.
func (o Outcome) RetainedRoles() []string {
	if o.AlreadyCorrect {
		return o.AlreadyHeld
	}
	return o.ResolvedRoles
}

//Plan computes the role delta for a member. It performs no mutation and is
//deterministic: all slices in the returned Outcome are sorted.
func Plan(ranges []guildmodels.RoleRange, memberRoleIDs []string, guildRoleIDs []string, value int) Outcome {
	outcome := Outcome{TargetValue: value}

	guildRoles := toSet(guildRoleIDs)
	memberRoles := toSet(memberRoleIDs)

	resolved := map[string]struct{}{}
	missing := map[string]struct{}{}
	for _, r := range ranges {
		if !r.Contains(value) {
			continue
		}
		outcome.MatchedRanges = append(outcome.MatchedRanges, r)
		if _, exists := guildRoles[r.RoleID]; exists {
			resolved[r.RoleID] = struct{}{}
		} else {
			missing[r.RoleID] = struct{}{}
		}
	}

	//Every other configured role the member holds must go, provided it still
	//exists in the guild.
	conflicting := map[string]struct{}{}
	for _, r := range ranges {
		if _, isResolved := resolved[r.RoleID]; isResolved {
			continue
		}
		if _, exists := guildRoles[r.RoleID]; !exists {
			continue
		}
		if _, held := memberRoles[r.RoleID]; held {
			conflicting[r.RoleID] = struct{}{}
		}
	}

	alreadyHeld := map[string]struct{}{}
	toAdd := map[string]struct{}{}
	for roleID := range resolved {
		if _, held := memberRoles[roleID]; held {
			alreadyHeld[roleID] = struct{}{}
		} else {
			toAdd[roleID] = struct{}{}
		}
	}

	outcome.ResolvedRoles = toSortedSlice(resolved)
	outcome.MissingRoles = toSortedSlice(missing)
	outcome.ConflictingRoles = toSortedSlice(conflicting)
	outcome.AlreadyHeld = toSortedSlice(alreadyHeld)
	outcome.ToAdd = toSortedSlice(toAdd)
	outcome.ToRemove = outcome.ConflictingRoles
	outcome.AlreadyCorrect = len(outcome.ToAdd) == 0 && len(outcome.ToRemove) == 0
	return outcome
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func toSortedSlice(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	res := make([]string, 0, len(set))
	for id := range set {
		res = append(res, id)
	}
	sort.Strings(res)
	return res
}
