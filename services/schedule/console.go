package schedulesvc

import (
	"context"
	"sync"
	"time"

	"github.com/trezcool/repostnet/core"
	"github.com/trezcool/repostnet/core/submission"
)

// Trigger is a schedule generation request seen by the ConsoleScheduler.
type Trigger struct {
	SubmissionID string
	Date         time.Time
}

// ConsoleScheduler logs triggers instead of calling the schedule function.
type ConsoleScheduler struct {
	logger core.Logger

	mu       sync.Mutex
	triggers []Trigger
}

var _ submission.Scheduler = (*ConsoleScheduler)(nil)

func NewConsoleScheduler(logger core.Logger) *ConsoleScheduler {
	return &ConsoleScheduler{logger: logger}
}

func (s *ConsoleScheduler) GenerateSchedule(ctx context.Context, submissionID string, date time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Info("schedule generation triggered", map[string]interface{}{
		"submission_id": submissionID,
		"date":          date.UTC().Format(submission.DateLayout),
	})
	s.mu.Lock()
	s.triggers = append(s.triggers, Trigger{SubmissionID: submissionID, Date: date})
	s.mu.Unlock()
	return nil
}

// Triggers returns the triggers received so far.
func (s *ConsoleScheduler) Triggers() []Trigger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Trigger(nil), s.triggers...)
}
