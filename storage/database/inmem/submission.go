package inmemdb

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/repostnet/core/submission"
)

type SubmissionRepository struct {
	db *submissionTable

	// Fail is consulted before every call when set.
	Fail FailFunc
}

var _ submission.Repository = (*SubmissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *DB) *SubmissionRepository {
	return &SubmissionRepository{db: db.submission}
}

func (repo *SubmissionRepository) CreateSubmission(ctx context.Context, sub submission.Submission) (submission.Submission, error) {
	if err := repo.Fail.check(ctx, "CreateSubmission"); err != nil {
		return submission.Submission{}, err
	}
	repo.db.Lock()
	defer repo.db.Unlock()

	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	stored := copySubmission(sub)
	repo.db.table[sub.ID] = &stored
	return copySubmission(sub), nil
}

func (repo *SubmissionRepository) GetSubmission(ctx context.Context, id string) (submission.Submission, error) {
	if err := repo.Fail.check(ctx, "GetSubmission"); err != nil {
		return submission.Submission{}, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sub, ok := repo.db.table[id]; ok {
		return copySubmission(*sub), nil
	}
	return submission.Submission{}, submission.ErrNotFound
}

func (repo *SubmissionRepository) UpdateSuggestedSupporters(ctx context.Context, id string, memberIDs []string) (submission.Submission, error) {
	if err := repo.Fail.check(ctx, "UpdateSuggestedSupporters"); err != nil {
		return submission.Submission{}, err
	}
	repo.db.Lock()
	defer repo.db.Unlock()

	sub, ok := repo.db.table[id]
	if !ok {
		return submission.Submission{}, submission.ErrNotFound
	}
	ids := make([]string, len(memberIDs))
	copy(ids, memberIDs)
	sub.SuggestedSupporters = ids
	sub.UpdatedAt = time.Now().UTC()
	return copySubmission(*sub), nil
}

func (repo *SubmissionRepository) UpdateScheduledFor(ctx context.Context, id string, date time.Time) (submission.Submission, error) {
	if err := repo.Fail.check(ctx, "UpdateScheduledFor"); err != nil {
		return submission.Submission{}, err
	}
	repo.db.Lock()
	defer repo.db.Unlock()

	sub, ok := repo.db.table[id]
	if !ok {
		return submission.Submission{}, submission.ErrNotFound
	}
	sub.ScheduledFor = &date
	sub.UpdatedAt = time.Now().UTC()
	return copySubmission(*sub), nil
}

func copySubmission(sub submission.Submission) submission.Submission {
	if sub.Genres != nil {
		genres := make([]string, len(sub.Genres))
		copy(genres, sub.Genres)
		sub.Genres = genres
	}
	if sub.SuggestedSupporters != nil {
		ids := make([]string, len(sub.SuggestedSupporters))
		copy(ids, sub.SuggestedSupporters)
		sub.SuggestedSupporters = ids
	}
	if sub.ScheduledFor != nil {
		d := *sub.ScheduledFor
		sub.ScheduledFor = &d
	}
	return sub
}
