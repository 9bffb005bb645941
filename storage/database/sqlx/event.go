package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/tutorparty/core"
	"github.com/trezcool/tutorparty/core/usage"
)

// eventColumns reads day back as an ISO date string.
const eventColumns = `id, party_code, member_id, day::text AS day, model, purpose,
	input_tokens, output_tokens, messages, cost_usd, created_at`

type eventRepository struct {
	exec core.DBExecutor
}

var _ usage.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(exec core.DBExecutor) *eventRepository {
	return &eventRepository{exec: exec}
}

func (repo eventRepository) SumMessages(ctx context.Context, memberID, day string) (int, error) {
	var sum null.Int // NULL when the member has no events that day
	q := `SELECT SUM(messages) FROM events WHERE member_id = $1 AND day = $2`
	if err := repo.exec.GetContext(ctx, &sum, q, memberID, day); err != nil {
		return 0, errors.Wrap(err, "summing messages")
	}
	return sum.Int, nil
}

func (repo eventRepository) InsertEvent(ctx context.Context, e usage.Event) (usage.Event, error) {
	q := `INSERT INTO events (party_code, member_id, day, model, purpose, input_tokens, output_tokens, messages, cost_usd, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err := repo.exec.GetContext(ctx, &e.ID, q,
		e.PartyCode, e.MemberID, e.Day, e.Model, e.Purpose,
		e.InputTokens, e.OutputTokens, e.Messages, e.CostUSD, e.CreatedAt.UTC())
	if err != nil {
		return usage.Event{}, errors.Wrap(err, "inserting event")
	}
	return e, nil
}

func (repo eventRepository) QueryEvents(ctx context.Context, partyCode, sinceDay string) ([]usage.Event, error) {
	events := make([]usage.Event, 0)
	q := `SELECT ` + eventColumns + ` FROM events WHERE party_code = $1 AND day >= $2 ORDER BY day, id`
	if err := repo.exec.SelectContext(ctx, &events, q, partyCode, sinceDay); err != nil {
		return nil, errors.Wrap(err, "querying events")
	}
	return events, nil
}
