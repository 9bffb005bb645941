package inmemdb

import (
	"context"

	"github.com/trezcool/tutorparty/core/usage"
)

type eventRepository struct {
	db *eventTable
}

var _ usage.Repository = (*eventRepository)(nil)

func NewEventRepository(db *DB) usage.Repository {
	return &eventRepository{db: db.event}
}

func (repo *eventRepository) SumMessages(_ context.Context, memberID, day string) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var sum int
	for _, e := range repo.db.table {
		if e.MemberID == memberID && e.Day == day {
			sum += e.Messages
		}
	}
	return sum, nil
}

func (repo *eventRepository) InsertEvent(_ context.Context, e usage.Event) (usage.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	e.ID = int64(len(repo.db.table) + 1)
	repo.db.table = append(repo.db.table, e)
	return e, nil
}

func (repo *eventRepository) QueryEvents(_ context.Context, partyCode, sinceDay string) ([]usage.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	events := make([]usage.Event, 0)
	for _, e := range repo.db.table {
		if e.PartyCode == partyCode && e.Day >= sinceDay {
			events = append(events, e)
		}
	}
	return events, nil
}
