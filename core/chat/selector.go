package chat

import (
	"regexp"
	"unicode/utf8"

	"github.com/trezcool/tutorparty/core"
)

const (
	boostLatestTurnChars   = 600
	boostConversationChars = 12000
)

// complexityCues are phrases hinting that a request needs the boost model.
var complexityCues = regexp.MustCompile(`(?i)\b(explain|explica|analy[sz]e|analiza|compare|compara|contrast|step[- ]by[- ]step|paso a paso|in detail|difference between|diferencia entre)\b`)

// Models lists the upstream model tiers.
type Models struct {
	Base      string
	Boost     string
	Translate string
}

// Selector picks the upstream model of a request.
type Selector struct {
	Models    Models
	AutoBoost bool
}

func NewSelector(conf *core.Config) Selector {
	return Selector{
		Models: Models{
			Base:      conf.OpenAI.ModelBase,
			Boost:     conf.OpenAI.ModelBoost,
			Translate: conf.OpenAI.ModelTranslate,
		},
		AutoBoost: conf.OpenAI.AutoBoost,
	}
}

// Select returns the model for a request. Translations always use the translate
// tier; a requested boost always uses the boost tier.
func (s Selector) Select(useBoost bool, purpose Purpose, messages []Message) string {
	switch {
	case purpose == PurposeTranslate:
		return s.Models.Translate
	case useBoost:
		return s.Models.Boost
	case s.AutoBoost && NeedsBoost(messages):
		return s.Models.Boost
	default:
		return s.Models.Base
	}
}

// NeedsBoost is a best-effort heuristic flagging long or complex conversations.
func NeedsBoost(messages []Message) bool {
	var total int
	latestUser := -1
	for i, m := range messages {
		if m.Role == RoleSystem {
			continue
		}
		total += utf8.RuneCountInString(m.Content)
		if m.Role == RoleUser {
			latestUser = i
		}
	}
	if total >= boostConversationChars {
		return true
	}
	if latestUser < 0 {
		return false
	}
	latest := messages[latestUser].Content
	return utf8.RuneCountInString(latest) >= boostLatestTurnChars || complexityCues.MatchString(latest)
}
