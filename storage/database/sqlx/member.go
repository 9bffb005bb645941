package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/tutorparty/core"
	"github.com/trezcool/tutorparty/core/party"
)

const uniqueViolation = "23505"

type memberRepository struct {
	exec core.DBExecutor
}

var _ party.Repository = (*memberRepository)(nil) // interface compliance check

func NewMemberRepository(exec core.DBExecutor) *memberRepository {
	return &memberRepository{exec: exec}
}

// trapNoRowsErr maps psql "no rows" err to party.ErrNotFound
func (repo memberRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return party.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo memberRepository) QueryMembers(ctx context.Context, partyCode string) ([]party.Member, error) {
	members := make([]party.Member, 0)
	q := `SELECT id, name, party_code, created_at FROM members WHERE party_code = $1 ORDER BY created_at, name`
	if err := repo.exec.SelectContext(ctx, &members, q, partyCode); err != nil {
		return nil, errors.Wrap(err, "querying members")
	}
	return members, nil
}

func (repo memberRepository) GetMember(ctx context.Context, id string) (party.Member, error) {
	if _, err := uuid.Parse(id); err != nil {
		return party.Member{}, party.ErrNotFound
	}
	var m party.Member
	q := `SELECT id, name, party_code, created_at FROM members WHERE id = $1`
	if err := repo.exec.GetContext(ctx, &m, q, id); err != nil {
		return party.Member{}, repo.trapNoRowsErr(err, "getting member")
	}
	return m, nil
}

// CreateMember inserts m with a new ID. A concurrent join under the same name
// returns the member created first.
func (repo memberRepository) CreateMember(ctx context.Context, m party.Member) (party.Member, error) {
	m.ID = uuid.New().String()
	q := `INSERT INTO members (id, name, party_code, created_at) VALUES (:id, :name, :party_code, :created_at)`
	if _, err := repo.exec.NamedExecContext(ctx, q, m); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return repo.getByName(ctx, m.PartyCode, m.Name)
		}
		return party.Member{}, errors.Wrap(err, "inserting member")
	}
	return m, nil
}

func (repo memberRepository) getByName(ctx context.Context, partyCode, name string) (party.Member, error) {
	var m party.Member
	q := `SELECT id, name, party_code, created_at FROM members WHERE party_code = $1 AND lower(name) = lower($2)`
	if err := repo.exec.GetContext(ctx, &m, q, partyCode, name); err != nil {
		return party.Member{}, repo.trapNoRowsErr(err, "getting member by name")
	}
	return m, nil
}
