//Package ingest decides whether an Epic RPG profile embed should trigger role
//reconciliation, and for whom. Ownership correlation is heuristic and
//best-effort: it trusts that the most recent profile command in the channel
//came from the account the embed describes, which a racing user could fake
//within the lookback window. That limitation is accepted.
package ingest

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

//ProgressFieldName is the embed field the time travel count lives in.
const ProgressFieldName = "PROGRESS"

//embedAuthorDelimiter separates the account name from the rest of the profile
//embed's author line.
const embedAuthorDelimiter = " — "

var timeTravelRegex = regexp.MustCompile(`\*\*Time travels\*\*: (\d+)`)

var (
	//ErrNoClaim means no trigger phrase was found in the lookback window.
	ErrNoClaim = errors.New("no prior profile command found")
	//ErrOwnerMismatch means the claiming user's name does not match the
	//embed's self-reported account name.
	ErrOwnerMismatch = errors.New("profile command author does not match embed owner")
)

//Message is one entry of channel history, stripped down to what correlation
//needs.
type Message struct {
	AuthorID   string
	AuthorName string
	Content    string
	IsBot      bool
	Timestamp  time.Time
}

//Policy controls how a profile embed is correlated with the member who
//requested it. The exact heuristic drifted across revisions of the original
//bot, so every knob is explicit configuration rather than a constant.
type Policy struct {
	//TriggerPhrases are the commands that count as a claim of ownership.
	TriggerPhrases []string
	//LookbackLimit bounds how much channel history is considered.
	LookbackLimit int
	//MaxAge, when non-zero, rejects claims older than this.
	MaxAge time.Duration
	//CaseSensitive applies to both phrase and name comparison.
	CaseSensitive bool
}

//DefaultPolicy matches the final revision of the original heuristic: fifty
//messages of lookback, no age cap, case-insensitive comparison.
func DefaultPolicy() Policy {
	return Policy{
		TriggerPhrases: []string{"rpg p", "rpg profile"},
		LookbackLimit:  50,
		MaxAge:         0,
		CaseSensitive:  false,
	}
}

//ParseTimeTravels extracts the time travel count from the PROGRESS field's
//raw value. The second return is false when the label is absent.
func ParseTimeTravels(fieldValue string) (int, bool) {
	matches := timeTravelRegex.FindStringSubmatch(fieldValue)
	if matches == nil {
		return 0, false
	}
	count, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, false
	}
	return count, true
}

//EmbedOwnerName extracts the account name from a profile embed's author line,
//which reads like "zed — profile".
func EmbedOwnerName(author string) string {
	name, _, _ := strings.Cut(author, embedAuthorDelimiter)
	return name
}

//Correlate finds the member who claimed the profile embed described by
//ownerName. history must be ordered newest first, as the platform returns it.
//The claiming message is the most recent non-bot message whose content equals
//one of the trigger phrases; its author's display name must then match
//ownerName under the policy's case rule.
func (p Policy) Correlate(history []Message, ownerName string, now time.Time) (Message, error) {
	window := history
	if p.LookbackLimit > 0 && len(window) > p.LookbackLimit {
		window = window[:p.LookbackLimit]
	}

	for _, msg := range window {
		if msg.IsBot {
			continue
		}
		if !p.matchesPhrase(msg.Content) {
			continue
		}
		if p.MaxAge > 0 && now.Sub(msg.Timestamp) > p.MaxAge {
			//Claims past the age cap no longer count, and neither does
			//anything older.
			break
		}
		if !p.namesEqual(msg.AuthorName, ownerName) {
			return Message{}, ErrOwnerMismatch
		}
		return msg, nil
	}
	return Message{}, ErrNoClaim
}

func (p Policy) matchesPhrase(content string) bool {
	for _, phrase := range p.TriggerPhrases {
		if p.CaseSensitive {
			if content == phrase {
				return true
			}
		} else if strings.EqualFold(content, phrase) {
			return true
		}
	}
	return false
}

func (p Policy) namesEqual(a, b string) bool {
	if p.CaseSensitive {
		return a == b
	}
	return strings.EqualFold(a, b)
}
