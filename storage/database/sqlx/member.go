package sqlxrepos

import (
	"context"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/repostnet/core"
	"github.com/trezcool/repostnet/core/member"
)

const membersTable = "members"

var memberColumns = []string{"id", "name", "followers", "credits", "tags", "status", "soundcloud_url", "created_at", "updated_at"}

// memberRow is the storage shape of a member.Member.
type memberRow struct {
	ID            string         `db:"id"`
	Name          string         `db:"name"`
	Followers     int            `db:"followers"`
	Credits       int            `db:"credits"`
	Tags          pq.StringArray `db:"tags"`
	Status        string         `db:"status"`
	SoundCloudURL null.String    `db:"soundcloud_url"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func (r memberRow) member() (member.Member, error) {
	m := member.Member{
		ID:            r.ID,
		Name:          r.Name,
		Followers:     r.Followers,
		Credits:       r.Credits,
		Tags:          []string(r.Tags),
		Status:        member.Status(r.Status),
		SoundCloudURL: r.SoundCloudURL.String,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}
	if err := m.Validate(); err != nil {
		return member.Member{}, errors.Wrapf(err, "decoding member %s", r.ID)
	}
	return m, nil
}

type memberRepository struct {
	exec core.DBExecutor
}

var _ member.Repository = (*memberRepository)(nil) // interface compliance check

func NewMemberRepository(exec core.DBExecutor) *memberRepository {
	return &memberRepository{exec: exec}
}

func (repo memberRepository) selectMembers(ctx context.Context, q sq.SelectBuilder, msg string) ([]member.Member, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building "+msg+" query")
	}
	var rows []memberRow
	if err = repo.exec.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, wrapDBErr(err, msg)
	}

	members := make([]member.Member, 0, len(rows))
	for _, r := range rows {
		m, err := r.member()
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}

// eligible selects active members with a positive credit balance.
func eligible() sq.SelectBuilder {
	return psql.Select(memberColumns...).
		From(membersTable).
		Where(sq.Eq{"status": string(member.StatusActive)}).
		Where(sq.Gt{"credits": 0})
}

func eligibleQuery(filter member.EligibleFilter) sq.SelectBuilder {
	q := eligible().Where(sq.GtOrEq{"followers": filter.MinFollowers})
	if len(filter.Tags) > 0 {
		q = q.Where("tags && ?::text[]", pq.Array(filter.Tags))
	}
	q = q.OrderBy(
		core.DBOrdering{Field: "followers"}.String(),
		core.DBOrdering{Field: "id", Ascending: true}.String(),
	)
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	return q
}

func searchQuery(prefix string, limit int) sq.SelectBuilder {
	q := eligible().
		Where(sq.Like{"lower(name)": prefixPattern(strings.ToLower(prefix))}).
		OrderBy(
			core.DBOrdering{Field: "lower(name)", Ascending: true}.String(),
			core.DBOrdering{Field: "id", Ascending: true}.String(),
		)
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return q
}

func (repo memberRepository) CreateMember(ctx context.Context, m member.Member) (member.Member, error) {
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

	query, args, err := psql.Insert(membersTable).
		Columns(memberColumns...).
		Values(
			m.ID, m.Name, m.Followers, m.Credits, pq.Array(m.Tags), string(m.Status),
			null.NewString(m.SoundCloudURL, m.SoundCloudURL != ""), m.CreatedAt, m.UpdatedAt,
		).
		Suffix("RETURNING " + strings.Join(memberColumns, ", ")).
		ToSql()
	if err != nil {
		return member.Member{}, errors.Wrap(err, "building insert member query")
	}

	var row memberRow
	if err = repo.exec.GetContext(ctx, &row, query, args...); err != nil {
		return member.Member{}, wrapDBErr(err, "inserting member")
	}
	return row.member()
}

func (repo memberRepository) QueryEligible(ctx context.Context, filter member.EligibleFilter) ([]member.Member, error) {
	return repo.selectMembers(ctx, eligibleQuery(filter), "querying eligible members")
}

func (repo memberRepository) SearchByName(ctx context.Context, prefix string, limit int) ([]member.Member, error) {
	return repo.selectMembers(ctx, searchQuery(prefix, limit), "searching members")
}

func (repo memberRepository) GetByIDs(ctx context.Context, ids []string) ([]member.Member, error) {
	if len(ids) == 0 {
		return []member.Member{}, nil
	}
	q := psql.Select(memberColumns...).From(membersTable).Where(sq.Eq{"id": ids})
	return repo.selectMembers(ctx, q, "getting members by ID")
}
