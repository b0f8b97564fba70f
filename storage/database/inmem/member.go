package inmemdb

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/repostnet/core"
	"github.com/trezcool/repostnet/core/member"
)

type MemberRepository struct {
	db *memberTable

	// Fail is consulted before every call when set.
	Fail FailFunc
}

var _ member.Repository = (*MemberRepository)(nil) // interface compliance check

func NewMemberRepository(db *DB) *MemberRepository {
	return &MemberRepository{db: db.member}
}

func (repo *MemberRepository) query(keep func(member.Member) bool) []member.Member {
	members := make([]member.Member, 0, len(repo.db.table))
	for _, m := range repo.db.table {
		if keep == nil || keep(*m) {
			members = append(members, copyMember(*m))
		}
	}
	return members
}

func (repo *MemberRepository) CreateMember(ctx context.Context, m member.Member) (member.Member, error) {
	if err := repo.Fail.check(ctx, "CreateMember"); err != nil {
		return member.Member{}, err
	}
	repo.db.Lock()
	defer repo.db.Unlock()

	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	m.Tags = core.CleanStrings(m.Tags, true /* lower */)
	if m.Tags == nil {
		m.Tags = []string{}
	}
	if err := m.Validate(); err != nil {
		return member.Member{}, err
	}
	stored := copyMember(m)
	repo.db.table[m.ID] = &stored
	return m, nil
}

func (repo *MemberRepository) QueryEligible(ctx context.Context, filter member.EligibleFilter) ([]member.Member, error) {
	if err := repo.Fail.check(ctx, "QueryEligible"); err != nil {
		return nil, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()

	members := repo.query(func(m member.Member) bool {
		if !m.Eligible() || m.Followers < filter.MinFollowers {
			return false
		}
		return len(filter.Tags) == 0 || m.HasAnyTag(filter.Tags)
	})
	member.SortByReach(members)
	if filter.Limit > 0 && len(members) > filter.Limit {
		members = members[:filter.Limit]
	}
	return members, nil
}

func (repo *MemberRepository) SearchByName(ctx context.Context, prefix string, limit int) ([]member.Member, error) {
	if err := repo.Fail.check(ctx, "SearchByName"); err != nil {
		return nil, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()

	prefix = strings.ToLower(prefix)
	members := repo.query(func(m member.Member) bool {
		return m.Eligible() && strings.HasPrefix(strings.ToLower(m.Name), prefix)
	})
	member.SortByName(members)
	if limit > 0 && len(members) > limit {
		members = members[:limit]
	}
	return members, nil
}

func (repo *MemberRepository) GetByIDs(ctx context.Context, ids []string) ([]member.Member, error) {
	if err := repo.Fail.check(ctx, "GetByIDs"); err != nil {
		return nil, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()

	members := make([]member.Member, 0, len(ids))
	for _, id := range ids {
		if m, ok := repo.db.table[id]; ok {
			members = append(members, copyMember(*m))
		}
	}
	return members, nil
}

func copyMember(m member.Member) member.Member {
	if m.Tags != nil {
		tags := make([]string, len(m.Tags))
		copy(tags, m.Tags)
		m.Tags = tags
	}
	return m
}
