package schedulesvc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/repostnet/core"
	"github.com/trezcool/repostnet/core/submission"
)

type functionPayload struct {
	SubmissionID string `json:"submission_id"`
	Date         string `json:"date"`
}

// FunctionClient triggers the schedule generation function over HTTP.
type FunctionClient struct {
	url    string
	key    string
	client *http.Client
	logger core.Logger
}

var _ submission.Scheduler = (*FunctionClient)(nil)

func NewFunctionClient(conf core.SchedulerConfig, logger core.Logger) *FunctionClient {
	timeout := conf.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &FunctionClient{
		url:    conf.FunctionURL,
		key:    conf.APIKey,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (c *FunctionClient) GenerateSchedule(ctx context.Context, submissionID string, date time.Time) error {
	body, err := json.Marshal(functionPayload{
		SubmissionID: submissionID,
		Date:         date.UTC().Format(submission.DateLayout),
	})
	if err != nil {
		return errors.Wrap(err, "encoding schedule payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "building schedule request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.key != "" {
		req.Header.Set("Authorization", "Bearer "+c.key)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "calling schedule function")
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		c.logger.Warn("schedule function rejected the trigger", map[string]interface{}{
			"submission_id": submissionID,
			"status":        res.StatusCode,
		})
		return errors.Errorf("schedule function failed: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}
