package chat

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/tutorparty/core"
)

// Roles of a conversation message.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Tutor modes.
const (
	ModeConversation = "conversation"
	ModeImmersion    = "immersion"
	ModeVoice        = "voice"
)

type Purpose string

const (
	PurposeChat      Purpose = "chat"
	PurposeTranslate Purpose = "translate"
)

// Message is a single conversation turn.
type Message struct {
	Role    string `json:"role" validate:"oneof=user assistant"`
	Content string `json:"content"`
}

type (
	// Request is a chat turn sent by a member.
	Request struct {
		Message  string    `json:"message" validate:"required,notblank"`
		Mode     string    `json:"mode" validate:"omitempty,oneof=conversation immersion voice"`
		UseBoost bool      `json:"useBoost"`
		History  []Message `json:"history" validate:"omitempty,max=200,dive"`
	}

	// TranslateRequest asks for a translation of a piece of text.
	TranslateRequest struct {
		Text   string `json:"text" validate:"required,notblank,max=4000"`
		Target string `json:"target" validate:"omitempty,oneof=en es"`
	}

	Usage struct {
		InputTokens  int     `json:"input_tokens"`
		OutputTokens int     `json:"output_tokens"`
		CostUSD      float64 `json:"cost_usd"`
		Model        string  `json:"model"`
	}

	Reply struct {
		Text  string
		Meta  *Metadata
		Usage Usage
	}

	Translation struct {
		Text  string
		Usage Usage
	}
)

func (r *Request) Validate(validate *validator.Validate) error {
	r.Message = core.CleanString(r.Message)
	r.Mode = core.CleanString(r.Mode, true /* lower */)
	return validate.Struct(r)
}

func (tr *TranslateRequest) Validate(validate *validator.Validate) error {
	tr.Text = core.CleanString(tr.Text)
	tr.Target = core.CleanString(tr.Target, true /* lower */)
	return validate.Struct(tr)
}

type (
	// Metadata is the structured recap the tutor appends to its replies.
	Metadata struct {
		Corrections []Correction `json:"corrections"`
		Recap       *Recap       `json:"recap,omitempty"`
	}

	Correction struct {
		Original  string `json:"original"`
		Corrected string `json:"corrected"`
		NoteEN    string `json:"note_en"`
	}

	Recap struct {
		NewWords     []NewWord `json:"new_words,omitempty"`
		GrammarPoint string    `json:"grammar_point,omitempty"`
		Homework     string    `json:"homework,omitempty"`
	}

	NewWord struct {
		Word      string `json:"word"`
		MeaningEN string `json:"meaning_en"`
	}
)

type (
	CompletionRequest struct {
		Model           string
		Messages        []Message
		MaxOutputTokens int
		Temperature     float64
	}

	Completion struct {
		Text         string
		Model        string
		InputTokens  int
		OutputTokens int
	}

	// Completer calls the upstream completion API.
	Completer interface {
		Complete(ctx context.Context, req CompletionRequest) (Completion, error)
	}
)
