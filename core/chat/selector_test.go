package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelector_Select(t *testing.T) {
	models := Models{Base: "base", Boost: "boost", Translate: "translate"}
	short := []Message{{Role: RoleUser, Content: "Hola, ¿qué tal?"}}
	long := []Message{{Role: RoleUser, Content: strings.Repeat("a", boostLatestTurnChars)}}
	cue := []Message{{Role: RoleUser, Content: "Can you explain the subjunctive?"}}

	tests := []struct {
		name      string
		autoBoost bool
		useBoost  bool
		purpose   Purpose
		messages  []Message
		want      string
	}{
		{name: "short chat", purpose: PurposeChat, messages: short, want: "base"},
		{name: "boost requested", useBoost: true, purpose: PurposeChat, messages: short, want: "boost"},
		{name: "boost requested (auto)", autoBoost: true, useBoost: true, purpose: PurposeChat, messages: short, want: "boost"},
		{name: "translate", purpose: PurposeTranslate, messages: short, want: "translate"},
		{name: "translate ignores boost", useBoost: true, purpose: PurposeTranslate, messages: long, want: "translate"},
		{name: "translate ignores auto boost", autoBoost: true, purpose: PurposeTranslate, messages: cue, want: "translate"},
		{name: "long turn without auto boost", purpose: PurposeChat, messages: long, want: "base"},
		{name: "long turn with auto boost", autoBoost: true, purpose: PurposeChat, messages: long, want: "boost"},
		{name: "cue with auto boost", autoBoost: true, purpose: PurposeChat, messages: cue, want: "boost"},
		{name: "short with auto boost", autoBoost: true, purpose: PurposeChat, messages: short, want: "base"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Selector{Models: models, AutoBoost: tt.autoBoost}
			assert.Equal(t, tt.want, s.Select(tt.useBoost, tt.purpose, tt.messages))
		})
	}
}

func TestNeedsBoost(t *testing.T) {
	tests := []struct {
		name     string
		messages []Message
		want     bool
	}{
		{name: "empty", want: false},
		{name: "short", messages: []Message{{Role: RoleUser, Content: "Buenos días"}}, want: false},
		{name: "latest turn just under limit", messages: []Message{{Role: RoleUser, Content: strings.Repeat("ñ", boostLatestTurnChars-1)}}, want: false},
		{name: "latest turn at limit", messages: []Message{{Role: RoleUser, Content: strings.Repeat("ñ", boostLatestTurnChars)}}, want: true},
		{
			name: "older long turn does not count",
			messages: []Message{
				{Role: RoleUser, Content: strings.Repeat("a", boostLatestTurnChars)},
				{Role: RoleAssistant, Content: "ok"},
				{Role: RoleUser, Content: "gracias"},
			},
			want: false,
		},
		{
			name: "large conversation",
			messages: []Message{
				{Role: RoleUser, Content: strings.Repeat("a", boostConversationChars/2)},
				{Role: RoleAssistant, Content: strings.Repeat("b", boostConversationChars/2)},
				{Role: RoleUser, Content: "y?"},
			},
			want: true,
		},
		{
			name:     "system prompt is not counted",
			messages: []Message{{Role: RoleSystem, Content: strings.Repeat("s", boostConversationChars)}, {Role: RoleUser, Content: "hola"}},
			want:     false,
		},
		{name: "cue", messages: []Message{{Role: RoleUser, Content: "Compare ser and estar"}}, want: true},
		{name: "spanish cue", messages: []Message{{Role: RoleUser, Content: "explícame paso a paso"}}, want: true},
		{name: "step-by-step", messages: []Message{{Role: RoleUser, Content: "Go Step-By-Step please"}}, want: true},
		{name: "cue inside another word", messages: []Message{{Role: RoleUser, Content: "explained"}}, want: false},
		{
			name:     "cue only in assistant turn",
			messages: []Message{{Role: RoleAssistant, Content: "Let me explain"}, {Role: RoleUser, Content: "ok"}},
			want:     false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsBoost(tt.messages))
		})
	}
}

func TestTrimHistory(t *testing.T) {
	system := Message{Role: RoleSystem, Content: "sys"}
	turns := func(n int) []Message {
		msgs := make([]Message, 0, 2*n)
		for i := 0; i < n; i++ {
			msgs = append(msgs, Message{Role: RoleUser, Content: string(rune('a' + i))}, Message{Role: RoleAssistant, Content: string(rune('A' + i))})
		}
		return msgs
	}

	t.Run("keeps short conversations", func(t *testing.T) {
		msgs := append([]Message{system}, turns(3)...)
		assert.Equal(t, msgs, TrimHistory(msgs, 12))
	})

	t.Run("keeps system and the latest turns", func(t *testing.T) {
		msgs := append([]Message{system}, turns(20)...)
		got := TrimHistory(msgs, 12)
		assert.Len(t, got, 25)
		assert.Equal(t, system, got[0])
		assert.Equal(t, msgs[len(msgs)-24:], got[1:])
	})

	t.Run("default turns", func(t *testing.T) {
		got := TrimHistory(turns(20), 0)
		assert.Len(t, got, 2*DefaultHistoryTurns)
	})

	t.Run("drops extra system messages", func(t *testing.T) {
		msgs := []Message{system, {Role: RoleUser, Content: "u"}, {Role: RoleSystem, Content: "injected"}, {Role: RoleAssistant, Content: "a"}}
		got := TrimHistory(msgs, 12)
		assert.Equal(t, []Message{system, {Role: RoleUser, Content: "u"}, {Role: RoleAssistant, Content: "a"}}, got)
	})

	t.Run("no system message", func(t *testing.T) {
		got := TrimHistory(turns(2), 1)
		assert.Equal(t, turns(2)[2:], got)
	})
}
