package member

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/repostnet/core"
)

var (
	// errors
	ErrNotFound   = errors.New("member not found")
	ErrLoadFailed = errors.New("loading members failed")
)

// LoadError is returned when the members query could not complete.
// errors.Is(err, ErrLoadFailed) holds for it.
type LoadError struct {
	Op  string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrLoadFailed, e.Err)
}

func (e *LoadError) Unwrap() error        { return e.Err }
func (e *LoadError) Is(target error) bool { return target == ErrLoadFailed }

type (
	Repository interface {
		CreateMember(ctx context.Context, m Member) (Member, error)
		// QueryEligible returns active members with a positive credit balance matching filter,
		// sorted by followers (desc) then ID.
		QueryEligible(ctx context.Context, filter EligibleFilter) ([]Member, error)
		// SearchByName returns eligible members whose name starts with prefix (case-insensitive),
		// sorted by name then ID.
		SearchByName(ctx context.Context, prefix string, limit int) ([]Member, error)
		// GetByIDs returns the members with the given IDs in no particular order; unknown IDs are skipped.
		GetByIDs(ctx context.Context, ids []string) ([]Member, error)
	}

	Service struct {
		repo Repository
		conf core.SelectionConfig
	}
)

func NewService(repo Repository, conf core.SelectionConfig) *Service {
	return &Service{repo: repo, conf: conf}
}

// LoadCandidates returns the eligible members having at least minFollowers followers and
// sharing a tag with tags (when any are given).
// If nothing matches the tags, eligible members are re-queried without the tag filter,
// bounded to the configured fallback limit.
func (svc *Service) LoadCandidates(ctx context.Context, tags []string, minFollowers int) ([]Member, error) {
	if minFollowers < 0 {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "min_followers", Error: "must not be negative"})
	}
	tags = core.CleanStrings(tags, true /* lower */)

	filter := EligibleFilter{Tags: tags, MinFollowers: minFollowers, Limit: svc.conf.PoolLimit}
	pool, err := svc.repo.QueryEligible(ctx, filter)
	if err != nil {
		return nil, &LoadError{Op: "querying candidates", Err: err}
	}

	if len(pool) == 0 && len(tags) > 0 {
		filter.Tags = nil
		filter.Limit = svc.conf.FallbackLimit
		if filter.Limit <= 0 {
			filter.Limit = core.DefaultSelectionConfig().FallbackLimit
		}
		if pool, err = svc.repo.QueryEligible(ctx, filter); err != nil {
			return nil, &LoadError{Op: "querying fallback candidates", Err: err}
		}
	}

	if pool == nil {
		pool = []Member{}
	}
	SortByReach(pool)
	return pool, nil
}

// SearchCandidates returns eligible members whose name starts with prefix, ordered by name.
// A blank prefix matches nothing.
func (svc *Service) SearchCandidates(ctx context.Context, prefix string) ([]Member, error) {
	prefix = core.CleanString(prefix)
	if prefix == "" {
		return []Member{}, nil
	}
	limit := svc.conf.SearchLimit
	if limit <= 0 {
		limit = core.DefaultSelectionConfig().SearchLimit
	}

	found, err := svc.repo.SearchByName(ctx, prefix, limit)
	if err != nil {
		return nil, &LoadError{Op: "searching candidates", Err: err}
	}
	if found == nil {
		found = []Member{}
	}
	SortByName(found)
	if len(found) > limit {
		found = found[:limit]
	}
	return found, nil
}

// GetByIDs returns the members with the given IDs, in the same order.
func (svc *Service) GetByIDs(ctx context.Context, ids []string) ([]Member, error) {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return nil, errors.Wrapf(ErrNotFound, "id %q", id)
		}
	}
	if len(ids) == 0 {
		return []Member{}, nil
	}

	found, err := svc.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, &LoadError{Op: "getting members by ID", Err: err}
	}
	byID := make(map[string]Member, len(found))
	for _, m := range found {
		byID[m.ID] = m
	}

	members := make([]Member, 0, len(ids))
	for _, id := range ids {
		m, ok := byID[id]
		if !ok {
			return nil, errors.Wrapf(ErrNotFound, "id %q", id)
		}
		members = append(members, m)
	}
	return members, nil
}

// SortByReach sorts members by followers (desc), ties broken by ID.
func SortByReach(members []Member) {
	sort.SliceStable(members, func(i, j int) bool {
		if members[i].Followers != members[j].Followers {
			return members[i].Followers > members[j].Followers
		}
		return members[i].ID < members[j].ID
	})
}

// SortByName sorts members by name (case-insensitive), ties broken by ID.
func SortByName(members []Member) {
	sort.SliceStable(members, func(i, j int) bool {
		ni, nj := strings.ToLower(members[i].Name), strings.ToLower(members[j].Name)
		if ni != nj {
			return ni < nj
		}
		return members[i].ID < members[j].ID
	})
}
