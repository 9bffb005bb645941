package party

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/trezcool/tutorparty/core"
)

var (
	// errors
	ErrNotFound    = errors.New("member not found")
	ErrInvalidCode = errors.New("invalid code")
	ErrPartyFull   = errors.New("party is full")
)

type (
	Repository interface {
		QueryMembers(ctx context.Context, partyCode string) ([]Member, error)
		GetMember(ctx context.Context, id string) (Member, error)
		CreateMember(ctx context.Context, m Member) (Member, error)
	}

	Service interface {
		Join(ctx context.Context, jr JoinRequest) (Member, error)
		GetByID(ctx context.Context, id string) (Member, error)
		Members(ctx context.Context) ([]Member, error)
		Code() string
	}

	service struct {
		repo  Repository
		code  string
		seats int
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, conf *core.Config) Service {
	return &service{
		repo:  repo,
		code:  conf.Party.Code,
		seats: conf.Party.Seats,
	}
}

func (svc *service) Code() string {
	return svc.code
}

// Join seats a new member in the party, or returns the existing member with the
// same name (case-insensitive). The seat count check and the insert are not atomic.
func (svc *service) Join(ctx context.Context, jr JoinRequest) (Member, error) {
	if jr.Code != svc.code {
		return Member{}, ErrInvalidCode
	}

	members, err := svc.repo.QueryMembers(ctx, svc.code)
	if err != nil {
		return Member{}, err
	}
	for _, m := range members {
		if strings.EqualFold(core.CleanString(m.Name), jr.Name) {
			return m, nil
		}
	}
	if len(members) >= svc.seats {
		return Member{}, ErrPartyFull
	}

	return svc.repo.CreateMember(ctx, Member{
		Name:      jr.Name,
		PartyCode: svc.code,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *service) GetByID(ctx context.Context, id string) (Member, error) {
	return svc.repo.GetMember(ctx, id)
}

func (svc *service) Members(ctx context.Context) ([]Member, error) {
	return svc.repo.QueryMembers(ctx, svc.code)
}
