package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/tutorparty/core"
	"github.com/trezcool/tutorparty/core/session"
	"github.com/trezcool/tutorparty/core/usage"
)

type (
	Service interface {
		Chat(ctx context.Context, sess session.Payload, req Request) (Reply, error)
		Translate(ctx context.Context, sess session.Payload, req TranslateRequest) (Translation, error)
	}

	service struct {
		completer       Completer
		usageSvc        usage.Service
		selector        Selector
		validate        *validator.Validate
		logger          core.Logger
		historyTurns    int
		maxOutputTokens int
		temperature     float64
	}
)

var _ Service = (*service)(nil)

func NewService(
	completer Completer,
	usageSvc usage.Service,
	validate *validator.Validate,
	logger core.Logger,
	conf *core.Config,
) Service {
	return &service{
		completer:       completer,
		usageSvc:        usageSvc,
		selector:        NewSelector(conf),
		validate:        validate,
		logger:          logger,
		historyTurns:    conf.OpenAI.HistoryTurns,
		maxOutputTokens: conf.OpenAI.MaxOutputTokens,
		temperature:     conf.OpenAI.Temperature,
	}
}

// Chat runs one tutor turn: quota check, model selection, upstream call,
// reply splitting and usage recording. The quota is checked before the
// upstream call so that exhausted members cost nothing.
func (svc *service) Chat(ctx context.Context, sess session.Payload, req Request) (Reply, error) {
	if err := req.Validate(svc.validate); err != nil {
		return Reply{}, err
	}
	if req.Mode == "" {
		req.Mode = ModeConversation
	}

	day := core.Day(usage.NowFunc())
	if err := svc.usageSvc.CheckQuota(ctx, sess.MemberID, day); err != nil {
		return Reply{}, err
	}

	messages := make([]Message, 0, len(req.History)+2)
	messages = append(messages, Message{Role: RoleSystem, Content: SystemPrompt(req.Mode)})
	messages = append(messages, req.History...)
	messages = append(messages, Message{Role: RoleUser, Content: req.Message})
	messages = TrimHistory(messages, svc.historyTurns)

	model := svc.selector.Select(req.UseBoost, PurposeChat, messages)
	completion, err := svc.completer.Complete(ctx, CompletionRequest{
		Model:           model,
		Messages:        messages,
		MaxOutputTokens: svc.maxOutputTokens,
		Temperature:     svc.temperature,
	})
	if err != nil {
		return Reply{}, errors.Wrap(err, "completing chat")
	}

	split := SplitReply(completion.Text)
	u := svc.record(ctx, sess, day, model, usage.PurposeChat, completion)
	return Reply{Text: split.Reply, Meta: split.Meta, Usage: u}, nil
}

// Translate translates a piece of text with the translate model tier.
func (svc *service) Translate(ctx context.Context, sess session.Payload, req TranslateRequest) (Translation, error) {
	if err := req.Validate(svc.validate); err != nil {
		return Translation{}, err
	}
	if req.Target == "" {
		req.Target = "en"
	}

	day := core.Day(usage.NowFunc())
	if err := svc.usageSvc.CheckQuota(ctx, sess.MemberID, day); err != nil {
		return Translation{}, err
	}

	messages := []Message{
		{Role: RoleSystem, Content: translateSystemPrompt(req.Target)},
		{Role: RoleUser, Content: req.Text},
	}
	model := svc.selector.Select(false, PurposeTranslate, messages)
	completion, err := svc.completer.Complete(ctx, CompletionRequest{
		Model:           model,
		Messages:        messages,
		MaxOutputTokens: svc.maxOutputTokens,
		Temperature:     0,
	})
	if err != nil {
		return Translation{}, errors.Wrap(err, "completing translation")
	}

	u := svc.record(ctx, sess, day, model, usage.PurposeTranslate, completion)
	return Translation{Text: strings.TrimSpace(completion.Text), Usage: u}, nil
}

// record logs the usage of a completed call. Usage accounting is best-effort:
// a failed write is logged and the reply is still returned.
func (svc *service) record(
	ctx context.Context,
	sess session.Payload,
	day, model, purpose string,
	completion Completion,
) Usage {
	e, err := svc.usageSvc.Record(ctx, usage.Record{
		MemberID:     sess.MemberID,
		PartyCode:    sess.PartyCode,
		Day:          day,
		Model:        model,
		Purpose:      purpose,
		InputTokens:  completion.InputTokens,
		OutputTokens: completion.OutputTokens,
	})
	if err != nil {
		msg := fmt.Sprintf("recording %s usage: %v", purpose, err)
		svc.logger.Error(msg, errors.Wrap(err, msg), sess)
	}
	return Usage{
		InputTokens:  completion.InputTokens,
		OutputTokens: completion.OutputTokens,
		CostUSD:      e.CostUSD,
		Model:        model,
	}
}
