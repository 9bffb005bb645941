package usage

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/tutorparty/core"
	"github.com/trezcool/tutorparty/core/party"
)

// ReportWindow is the default trailing window covered by Report.
const ReportWindow = 30 * 24 * time.Hour

var NowFunc = time.Now // mockable

type (
	Repository interface {
		// SumMessages returns the total messages of a member on a day.
		SumMessages(ctx context.Context, memberID, day string) (int, error)
		InsertEvent(ctx context.Context, e Event) (Event, error)
		// QueryEvents returns the events of a party logged on or after sinceDay.
		QueryEvents(ctx context.Context, partyCode, sinceDay string) ([]Event, error)
	}

	Service interface {
		Used(ctx context.Context, memberID, day string) (int, error)
		CheckQuota(ctx context.Context, memberID, day string) error
		Record(ctx context.Context, rec Record) (Event, error)
		Report(ctx context.Context, window time.Duration) (Report, error)
		Pricing() Pricing
		Limit() int
	}

	service struct {
		repo     Repository
		partySvc party.Service
		pricing  Pricing
		limit    int
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, partySvc party.Service, conf *core.Config) Service {
	return &service{
		repo:     repo,
		partySvc: partySvc,
		pricing: Pricing{
			Model:            conf.OpenAI.ModelBase,
			InputPerMillion:  conf.Pricing.InputPerMillion,
			OutputPerMillion: conf.Pricing.OutputPerMillion,
		},
		limit: conf.Party.DailyMessageLimit,
	}
}

func (svc *service) Pricing() Pricing {
	return svc.pricing
}

func (svc *service) Limit() int {
	return svc.limit
}

func (svc *service) Used(ctx context.Context, memberID, day string) (int, error) {
	used, err := svc.repo.SumMessages(ctx, memberID, day)
	if err != nil {
		return 0, errors.Wrap(err, "summing messages")
	}
	return used, nil
}

// CheckQuota returns a *core.QuotaExceededError when the member has no messages left today.
// The check is not atomic with the Record that follows it: concurrent requests of a
// member may overshoot the limit by a few messages.
func (svc *service) CheckQuota(ctx context.Context, memberID, day string) error {
	used, err := svc.Used(ctx, memberID, day)
	if err != nil {
		return err
	}
	if used >= svc.limit {
		return &core.QuotaExceededError{Limit: svc.limit, Used: used}
	}
	return nil
}

// Record computes the cost of a call and appends its usage event.
func (svc *service) Record(ctx context.Context, rec Record) (Event, error) {
	e := Event{
		PartyCode:    rec.PartyCode,
		MemberID:     rec.MemberID,
		Day:          rec.Day,
		Model:        rec.Model,
		Purpose:      rec.Purpose,
		InputTokens:  rec.InputTokens,
		OutputTokens: rec.OutputTokens,
		Messages:     1,
		CostUSD:      svc.pricing.Cost(rec.InputTokens, rec.OutputTokens),
		CreatedAt:    NowFunc().UTC(),
	}
	if e.Day == "" {
		e.Day = core.Day(e.CreatedAt)
	}
	if e.Purpose == "" {
		e.Purpose = PurposeChat
	}

	saved, err := svc.repo.InsertEvent(ctx, e)
	if err != nil {
		// callers still need the cost of the call
		return e, errors.Wrap(err, "inserting usage event")
	}
	return saved, nil
}

// Report aggregates the party usage over a trailing window (ReportWindow when
// window is not positive), per member and in total.
func (svc *service) Report(ctx context.Context, window time.Duration) (Report, error) {
	if window <= 0 {
		window = ReportWindow
	}
	since := core.Day(NowFunc().Add(-window))

	members, err := svc.partySvc.Members(ctx)
	if err != nil {
		return Report{}, errors.Wrap(err, "querying members")
	}
	events, err := svc.repo.QueryEvents(ctx, svc.partySvc.Code(), since)
	if err != nil {
		return Report{}, errors.Wrap(err, "querying events")
	}

	var totals Totals
	byMember := make(map[string]*Totals, len(members))
	for _, e := range events {
		totals.add(e)
		t, ok := byMember[e.MemberID]
		if !ok {
			t = new(Totals)
			byMember[e.MemberID] = t
		}
		t.add(e)
	}

	users := make([]MemberUsage, 0, len(members))
	for _, m := range members {
		mu := MemberUsage{Name: m.Name}
		if t, ok := byMember[m.ID]; ok {
			mu.Totals = *t
		}
		users = append(users, mu)
	}

	return Report{
		Since:   since,
		Pricing: svc.pricing,
		Totals:  totals,
		Users:   users,
	}, nil
}
