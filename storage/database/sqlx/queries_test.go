package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/repostnet/core"
	"github.com/trezcool/repostnet/core/member"
	"github.com/trezcool/repostnet/core/submission"
)

func TestPrefixPattern(t *testing.T) {
	assert.Equal(t, "dj%", prefixPattern("dj"))
	assert.Equal(t, `100\%%`, prefixPattern("100%"))
	assert.Equal(t, `a\_b%`, prefixPattern("a_b"))
	assert.Equal(t, `c:\\%`, prefixPattern(`c:\`))
}

func TestEligibleQuery(t *testing.T) {
	tests := []struct {
		name      string
		filter    member.EligibleFilter
		wantParts []string
		notParts  []string
		wantArgs  []interface{}
	}{
		{
			name:      "tags and limit",
			filter:    member.EligibleFilter{Tags: []string{"house", "techno"}, MinFollowers: 1000, Limit: 50},
			wantParts: []string{"FROM members", "status = $1", "credits > $2", "followers >= $3", "tags && $4::text[]", "ORDER BY followers DESC, id ASC", "LIMIT 50"},
			wantArgs:  []interface{}{"active", 0, 1000, pq.Array([]string{"house", "techno"})},
		},
		{
			name:      "no tags, no limit",
			filter:    member.EligibleFilter{MinFollowers: 0},
			wantParts: []string{"status = $1", "credits > $2", "followers >= $3", "ORDER BY followers DESC, id ASC"},
			notParts:  []string{"tags &&", "LIMIT"},
			wantArgs:  []interface{}{"active", 0, 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := eligibleQuery(tt.filter).ToSql()
			require.NoError(t, err)
			for _, part := range tt.wantParts {
				assert.Contains(t, query, part)
			}
			for _, part := range tt.notParts {
				assert.NotContains(t, query, part)
			}
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestSearchQuery(t *testing.T) {
	query, args, err := searchQuery("DJ_", 20).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "lower(name) LIKE $3")
	assert.Contains(t, query, "ORDER BY lower(name) ASC, id ASC")
	assert.True(t, strings.HasSuffix(query, "LIMIT 20"), query)
	assert.Equal(t, []interface{}{"active", 0, `dj\_%`}, args)
}

func TestWrapDBErr(t *testing.T) {
	err := wrapDBErr(errors.New("syntax error"), "selecting members")
	assert.False(t, core.IsShutdown(err))
	assert.EqualError(t, err, "selecting members: syntax error")

	assert.True(t, core.IsShutdown(wrapDBErr(sql.ErrConnDone, "inserting member")))
	assert.True(t, core.IsShutdown(wrapDBErr(errors.New("sql: database is closed"), "inserting member")))

	assert.Equal(t, submission.ErrNotFound, trapNoRowsErr(sql.ErrNoRows, submission.ErrNotFound, "finding submission"))
	assert.True(t, core.IsShutdown(trapNoRowsErr(sql.ErrConnDone, submission.ErrNotFound, "finding submission")))
}

func TestClosedPoolIsShutdown(t *testing.T) {
	db, err := sqlx.Open("postgres", "host=localhost dbname=repostnet sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	svc := member.NewService(NewMemberRepository(db), core.DefaultSelectionConfig())
	_, err = svc.LoadCandidates(context.Background(), []string{"house"}, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, member.ErrLoadFailed))
	assert.True(t, core.IsShutdown(err))

	subs := NewSubmissionRepository(db)
	_, err = subs.GetSubmission(context.Background(), "00000000-0000-0000-0000-000000000001")
	assert.True(t, core.IsShutdown(err))
}
