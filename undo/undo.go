//Package undo tracks the time-boxed, owner-scoped role removal controls
//attached to a reconciliation confirmation. Sessions live purely in memory; a
//process restart forgets them all.
package undo

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

//DefaultTTL is how long a confirmation's undo buttons stay redeemable.
const DefaultTTL = 5 * time.Minute

//tokenPrefix marks interaction custom IDs owned by this package.
const tokenPrefix = "ttundo"

//sweepRetention is how long an expired session keeps its role set before
//being reduced to a tombstone.
const sweepRetention = time.Hour

var (
	//ErrUnknownControl means the token does not decode to a live session, or
	//names a role that was never registered on it.
	ErrUnknownControl = errors.New("unknown undo control")
	//ErrExpired means the control existed but its time window has passed.
	ErrExpired = errors.New("undo control has expired")
	//ErrNotOwner means someone other than the member whose roles were changed
	//tried to redeem the control.
	ErrNotOwner = errors.New("undo control belongs to another member")
)

//Control is one rendered reversal affordance: a role plus the opaque token to
//put on the button.
type Control struct {
	Token  string
	RoleID string
}

//Claim is a successfully redeemed control.
type Claim struct {
	GuildID string
	OwnerID string
	RoleID  string
}

type session struct {
	guildID string
	ownerID string
	roles   map[string]struct{}
	expiry  time.Time
}

//Store holds every live undo session, keyed by session ID. Expiry is a
//wall-clock comparison at redemption time; no timer tears sessions down.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	now      func() time.Time
}

//NewStore returns a Store with the given time-to-live. A zero ttl means
//DefaultTTL. now may be nil, in which case time.Now is used; tests inject a
//fake clock instead.
func NewStore(ttl time.Duration, now func() time.Time) *Store {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Store{
		sessions: map[string]*session{},
		ttl:      ttl,
		now:      now,
	}
}

//Register opens a session for a freshly rendered confirmation and returns one
//control per role. The returned slice is empty when roleIDs is empty.
func (s *Store) Register(guildID string, ownerID string, roleIDs []string) []Control {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()

	id := uuid.NewString()
	sess := &session{
		guildID: guildID,
		ownerID: ownerID,
		roles:   make(map[string]struct{}, len(roleIDs)),
		expiry:  s.now().Add(s.ttl),
	}
	controls := make([]Control, 0, len(roleIDs))
	for _, roleID := range roleIDs {
		sess.roles[roleID] = struct{}{}
		controls = append(controls, Control{
			Token:  fmt.Sprintf("%s:%s:%s", tokenPrefix, id, roleID),
			RoleID: roleID,
		})
	}
	s.sessions[id] = sess
	return controls
}

//Redeem validates a control token on behalf of an invoker. Controls are
//reusable until expiry; whether the role is still held is the caller's check,
//since removing an already removed role is a normal not-found branch.
func (s *Store) Redeem(token string, invokerID string) (Claim, error) {
	id, roleID, ok := decodeToken(token)
	if !ok {
		return Claim{}, ErrUnknownControl
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, exists := s.sessions[id]
	if !exists {
		return Claim{}, ErrUnknownControl
	}
	//Expiry is checked before role membership so that a session already
	//reduced to a tombstone still answers ErrExpired.
	if s.now().After(sess.expiry) {
		return Claim{}, ErrExpired
	}
	if _, exists := sess.roles[roleID]; !exists {
		return Claim{}, ErrUnknownControl
	}
	if invokerID != sess.ownerID {
		return Claim{}, ErrNotOwner
	}
	return Claim{
		GuildID: sess.guildID,
		OwnerID: sess.ownerID,
		RoleID:  roleID,
	}, nil
}

//IsControlToken reports whether an interaction custom ID belongs to this
//package, without validating it.
func IsControlToken(token string) bool {
	return strings.HasPrefix(token, tokenPrefix+":")
}

func decodeToken(token string) (id string, roleID string, ok bool) {
	parts := strings.Split(token, ":")
	if len(parts) != 3 || parts[0] != tokenPrefix || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

//sweepLocked tombstones sessions whose expiry is long past: the role set is
//dropped to release memory but the session entry stays, so a stale button
//answers ErrExpired however old it is.
func (s *Store) sweepLocked() {
	cutoff := s.now().Add(-sweepRetention)
	for _, sess := range s.sessions {
		if sess.expiry.Before(cutoff) {
			sess.roles = nil
		}
	}
}
