package inmemdb

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/tutorparty/core/party"
)

type memberRepository struct {
	db *memberTable
}

var _ party.Repository = (*memberRepository)(nil)

func NewMemberRepository(db *DB) party.Repository {
	return &memberRepository{db: db.member}
}

func (repo *memberRepository) QueryMembers(_ context.Context, partyCode string) ([]party.Member, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	members := make([]party.Member, 0, len(repo.db.order))
	for _, id := range repo.db.order {
		if m := repo.db.table[id]; m.PartyCode == partyCode {
			members = append(members, *m)
		}
	}
	return members, nil
}

func (repo *memberRepository) GetMember(_ context.Context, id string) (party.Member, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if m, ok := repo.db.table[id]; ok {
		return *m, nil
	}
	return party.Member{}, party.ErrNotFound
}

func (repo *memberRepository) CreateMember(_ context.Context, m party.Member) (party.Member, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.table {
		if existing.PartyCode == m.PartyCode && strings.EqualFold(existing.Name, m.Name) {
			return *existing, nil
		}
	}
	m.ID = uuid.New().String()
	repo.db.table[m.ID] = &m
	repo.db.order = append(repo.db.order, m.ID)
	return m, nil
}
