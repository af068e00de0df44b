package reconcile

import (
	"github.com/sirupsen/logrus"
)

//RoleManager mutates a member's roles. Implemented over the discord session in
//production and by fakes in tests.
type RoleManager interface {
	AddRoles(guildID string, memberID string, roleIDs []string) error
	RemoveRoles(guildID string, memberID string, roleIDs []string) error
}

//RoleDirectory answers questions about the current state of a guild's roles.
type RoleDirectory interface {
	MemberRoleIDs(guildID string, memberID string) ([]string, error)
	GuildRoleIDs(guildID string) ([]string, error)
}

//Result records what Apply actually did. Removal and addition are issued as
//two independent best-effort calls, so either side can fail on its own.
type Result struct {
	Outcome Outcome
	//Removed and Added hold the roles each successful call covered.
	Removed []string
	Added   []string
	//RemoveErr and AddErr hold the failure, if any, of each call.
	RemoveErr error
	AddErr    error
}

//Partial reports whether exactly one of the two mutations failed, leaving the
//member's role set in an inconsistent state. No automatic retry or rollback is
//attempted; the caller must surface this.
func (r Result) Partial() bool {
	attemptedRemove := len(r.Outcome.ToRemove) > 0
	attemptedAdd := len(r.Outcome.ToAdd) > 0
	if !attemptedRemove || !attemptedAdd {
		return false
	}
	return (r.RemoveErr == nil) != (r.AddErr == nil)
}

//Failed reports whether any attempted mutation failed.
func (r Result) Failed() bool {
	return r.RemoveErr != nil || r.AddErr != nil
}

//Apply issues the mutations a plan calls for, removals first. Calling Apply on
//an AlreadyCorrect outcome issues nothing, which keeps reconciliation
//idempotent: a second run over unchanged state is a pure no-op.
func Apply(mgr RoleManager, guildID string, memberID string, outcome Outcome) Result {
	res := Result{Outcome: outcome}
	if outcome.AlreadyCorrect {
		return res
	}
	if len(outcome.ToRemove) > 0 {
		err := mgr.RemoveRoles(guildID, memberID, outcome.ToRemove)
		if err != nil {
			logrus.Warnf("Failed to remove conflicting roles %v from member %v in guild %v due to error %v", outcome.ToRemove, memberID, guildID, err)
			res.RemoveErr = err
		} else {
			res.Removed = outcome.ToRemove
		}
	}
	if len(outcome.ToAdd) > 0 {
		err := mgr.AddRoles(guildID, memberID, outcome.ToAdd)
		if err != nil {
			logrus.Warnf("Failed to add roles %v to member %v in guild %v due to error %v", outcome.ToAdd, memberID, guildID, err)
			res.AddErr = err
		} else {
			res.Added = outcome.ToAdd
		}
	}
	return res
}
