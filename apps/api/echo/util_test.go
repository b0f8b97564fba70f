package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/trezcool/repostnet/core"
	"github.com/trezcool/repostnet/core/member"
	"github.com/trezcool/repostnet/core/submission"
	schedulesvc "github.com/trezcool/repostnet/services/schedule"
	inmemdb "github.com/trezcool/repostnet/storage/database/inmem"
	"github.com/trezcool/repostnet/testutil"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

// failingScheduler fails every trigger after logging it on the console scheduler.
type failingScheduler struct {
	*schedulesvc.ConsoleScheduler
	err error
}

func (s failingScheduler) GenerateSchedule(ctx context.Context, submissionID string, date time.Time) error {
	if err := s.ConsoleScheduler.GenerateSchedule(ctx, submissionID, date); err != nil {
		return err
	}
	return s.err
}

type testApp struct {
	conf      *core.Config
	server    *Server
	logger    *testutil.Logger
	memRepo   *inmemdb.MemberRepository
	subRepo   *inmemdb.SubmissionRepository
	scheduler *schedulesvc.ConsoleScheduler
}

func newTestApp(t *testing.T, scheduleErr ...error) *testApp {
	t.Helper()

	conf := &core.Config{
		AppName:  "RepostNet",
		Env:      "TEST",
		TestMode: true,
		Server: core.ServerConfig{
			DisableReqLogs: true,
			JWTSecret:      "test-secret",
		},
		Selection: core.DefaultSelectionConfig(),
	}
	logger := new(testutil.Logger)
	db := inmemdb.Open()
	memRepo := inmemdb.NewMemberRepository(db)
	subRepo := inmemdb.NewSubmissionRepository(db)
	console := schedulesvc.NewConsoleScheduler(logger)

	var scheduler submission.Scheduler = console
	if len(scheduleErr) > 0 {
		scheduler = failingScheduler{ConsoleScheduler: console, err: scheduleErr[0]}
	}

	memSvc := member.NewService(memRepo, conf.Selection)
	subSvc := submission.NewService(subRepo, memSvc, scheduler, conf.Selection)
	validate, translator := core.NewValidator()

	server := NewServer(ServerDeps{
		Conf:          conf,
		Logger:        logger,
		MemberSvc:     memSvc,
		SubmissionSvc: subSvc,
		Validate:      validate,
		Translator:    translator,
	})
	t.Cleanup(func() { _ = server.Shutdown(context.Background()) })

	return &testApp{
		conf:      conf,
		server:    server,
		logger:    logger,
		memRepo:   memRepo,
		subRepo:   subRepo,
		scheduler: console,
	}
}

func (app *testApp) getToken(t *testing.T, isAdmin bool) string {
	t.Helper()
	token, err := GenerateToken(app.conf, NewClaims(app.conf, "u-1", "Moderator", isAdmin, time.Hour))
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func (app *testApp) run(t *testing.T, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func newAuthRequest(method, path, token string, data []byte) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, httptest.NewRecorder()
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj(): %v", err)
	}
	return data
}

func marshalList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	return marshalObj(t, objs)
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	wantCode := tt.wantCode
	if wantCode == 0 {
		wantCode = http.StatusOK
	}
	if rec.Code != wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
