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
	"github.com/trezcool/repostnet/core/submission"
)

const submissionsTable = "submissions"

var submissionColumns = []string{
	"id", "artist_name", "track_url", "genres", "expected_reach", "status",
	"suggested_supporters", "scheduled_for", "created_at", "updated_at",
}

type submissionRow struct {
	ID                  string         `db:"id"`
	ArtistName          string         `db:"artist_name"`
	TrackURL            string         `db:"track_url"`
	Genres              pq.StringArray `db:"genres"`
	ExpectedReach       int            `db:"expected_reach"`
	Status              string         `db:"status"`
	SuggestedSupporters pq.StringArray `db:"suggested_supporters"`
	ScheduledFor        null.Time      `db:"scheduled_for"`
	CreatedAt           time.Time      `db:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at"`
}

func (r submissionRow) submission() submission.Submission {
	sub := submission.Submission{
		ID:                  r.ID,
		ArtistName:          r.ArtistName,
		TrackURL:            r.TrackURL,
		Genres:              []string(r.Genres),
		ExpectedReach:       r.ExpectedReach,
		Status:              submission.Status(r.Status),
		SuggestedSupporters: []string(r.SuggestedSupporters),
		CreatedAt:           r.CreatedAt.UTC(),
		UpdatedAt:           r.UpdatedAt.UTC(),
	}
	if sub.Genres == nil {
		sub.Genres = []string{}
	}
	if sub.SuggestedSupporters == nil {
		sub.SuggestedSupporters = []string{}
	}
	if r.ScheduledFor.Valid {
		d := r.ScheduledFor.Time.UTC()
		sub.ScheduledFor = &d
	}
	return sub
}

type submissionRepository struct {
	exec core.DBExecutor
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(exec core.DBExecutor) *submissionRepository {
	return &submissionRepository{exec: exec}
}

func (repo submissionRepository) returning() string {
	return "RETURNING " + strings.Join(submissionColumns, ", ")
}

func (repo submissionRepository) CreateSubmission(ctx context.Context, sub submission.Submission) (submission.Submission, error) {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	if sub.UpdatedAt.IsZero() {
		sub.UpdatedAt = now
	}
	if sub.Status == "" {
		sub.Status = submission.StatusPending
	}
	genres := core.CleanStrings(sub.Genres, true /* lower */)
	if genres == nil {
		genres = []string{}
	}
	supporters := sub.SuggestedSupporters
	if supporters == nil {
		supporters = []string{}
	}

	query, args, err := psql.Insert(submissionsTable).
		Columns(submissionColumns...).
		Values(
			sub.ID, sub.ArtistName, sub.TrackURL, pq.Array(genres), sub.ExpectedReach, string(sub.Status),
			sq.Expr("?::uuid[]", pq.Array(supporters)), null.TimeFromPtr(sub.ScheduledFor), sub.CreatedAt, sub.UpdatedAt,
		).
		Suffix(repo.returning()).
		ToSql()
	if err != nil {
		return submission.Submission{}, errors.Wrap(err, "building insert submission query")
	}

	var row submissionRow
	if err = repo.exec.GetContext(ctx, &row, query, args...); err != nil {
		return submission.Submission{}, wrapDBErr(err, "inserting submission")
	}
	return row.submission(), nil
}

func (repo submissionRepository) GetSubmission(ctx context.Context, id string) (submission.Submission, error) {
	if _, err := uuid.Parse(id); err != nil {
		return submission.Submission{}, submission.ErrNotFound
	}
	query, args, err := psql.Select(submissionColumns...).
		From(submissionsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return submission.Submission{}, errors.Wrap(err, "building get submission query")
	}

	var row submissionRow
	if err = repo.exec.GetContext(ctx, &row, query, args...); err != nil {
		return submission.Submission{}, trapNoRowsErr(err, submission.ErrNotFound, "finding submission by ID")
	}
	return row.submission(), nil
}

func (repo submissionRepository) UpdateSuggestedSupporters(ctx context.Context, id string, memberIDs []string) (submission.Submission, error) {
	if _, err := uuid.Parse(id); err != nil {
		return submission.Submission{}, submission.ErrNotFound
	}
	if memberIDs == nil {
		memberIDs = []string{}
	}
	query, args, err := psql.Update(submissionsTable).
		Set("suggested_supporters", sq.Expr("?::uuid[]", pq.Array(memberIDs))).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Suffix(repo.returning()).
		ToSql()
	if err != nil {
		return submission.Submission{}, errors.Wrap(err, "building update supporters query")
	}

	var row submissionRow
	if err = repo.exec.GetContext(ctx, &row, query, args...); err != nil {
		return submission.Submission{}, trapNoRowsErr(err, submission.ErrNotFound, "updating suggested supporters")
	}
	return row.submission(), nil
}

func (repo submissionRepository) UpdateScheduledFor(ctx context.Context, id string, date time.Time) (submission.Submission, error) {
	if _, err := uuid.Parse(id); err != nil {
		return submission.Submission{}, submission.ErrNotFound
	}
	query, args, err := psql.Update(submissionsTable).
		Set("scheduled_for", date.Format(submission.DateLayout)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Suffix(repo.returning()).
		ToSql()
	if err != nil {
		return submission.Submission{}, errors.Wrap(err, "building update scheduled_for query")
	}

	var row submissionRow
	if err = repo.exec.GetContext(ctx, &row, query, args...); err != nil {
		return submission.Submission{}, trapNoRowsErr(err, submission.ErrNotFound, "updating scheduled_for")
	}
	return row.submission(), nil
}
