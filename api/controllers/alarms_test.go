package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/elcilc/clicle/api/middleware"
	"github.com/elcilc/clicle/internal/alarms"
	"github.com/elcilc/clicle/pkg/db/models"
	"github.com/elcilc/clicle/pkg/enums"
	"github.com/elcilc/clicle/pkg/logger"
	"github.com/elcilc/clicle/pkg/sse"
)

type testAlarmsService struct {
	subscribeFn   func(ctx context.Context, userID uuid.UUID, ch sse.Channel) error
	listFn        func(ctx context.Context, params alarms.ListParams) (*alarms.ListResult, error)
	markReadFn    func(ctx context.Context, userID, alarmID uuid.UUID) error
	markAllReadFn func(ctx context.Context, userID uuid.UUID) (int64, error)
}

func (s *testAlarmsService) Send(ctx context.Context, alarmType enums.AlarmType, args models.AlarmArgs, recipient *models.User) error {
	return nil
}

func (s *testAlarmsService) Subscribe(ctx context.Context, userID uuid.UUID, ch sse.Channel) error {
	if s.subscribeFn != nil {
		return s.subscribeFn(ctx, userID, ch)
	}
	return nil
}

func (s *testAlarmsService) List(ctx context.Context, params alarms.ListParams) (*alarms.ListResult, error) {
	if s.listFn != nil {
		return s.listFn(ctx, params)
	}
	return &alarms.ListResult{}, nil
}

func (s *testAlarmsService) MarkRead(ctx context.Context, userID, alarmID uuid.UUID) error {
	if s.markReadFn != nil {
		return s.markReadFn(ctx, userID, alarmID)
	}
	return nil
}

func (s *testAlarmsService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if s.markAllReadFn != nil {
		return s.markAllReadFn(ctx, userID)
	}
	return 0, nil
}

func testControllerLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func authedRequest(method, target string, userID uuid.UUID, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestSubscribeAlarmsStreamsUntilClosed(t *testing.T) {
	userID := uuid.New()
	svc := &testAlarmsService{
		subscribeFn: func(ctx context.Context, uid uuid.UUID, ch sse.Channel) error {
			if uid != userID {
				t.Fatalf("unexpected user %s", uid)
			}
			if err := ch.Send(sse.Event{ID: "id", Name: "alarm", Data: "connect completed"}); err != nil {
				t.Fatalf("ack send: %v", err)
			}
			ch.Close()
			return nil
		},
	}

	req := authedRequest(http.MethodGet, "/api/v1/alarms/subscribe", userID, nil)
	resp := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		SubscribeAlarms(svc, time.Minute, testControllerLogger())(resp, req)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not return after stream close")
	}

	if ct := resp.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}
	body := resp.Body.String()
	if !strings.Contains(body, "event: alarm") || !strings.Contains(body, `data: "connect completed"`) {
		t.Fatalf("missing ack frame in %q", body)
	}
}

func TestSubscribeAlarmsEndsOnClientDisconnect(t *testing.T) {
	userID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/alarms/subscribe", nil)
	ctx, cancel := context.WithCancel(middleware.WithUserID(req.Context(), userID.String()))
	req = req.WithContext(ctx)
	resp := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		SubscribeAlarms(&testAlarmsService{}, time.Minute, testControllerLogger())(resp, req)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not return after client disconnect")
	}
}

func TestSubscribeAlarmsRejectsMissingUser(t *testing.T) {
	resp := httptest.NewRecorder()
	SubscribeAlarms(&testAlarmsService{}, time.Minute, testControllerLogger())(resp, httptest.NewRequest(http.MethodGet, "/api/v1/alarms/subscribe", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestListAlarmsParsesQuery(t *testing.T) {
	userID := uuid.New()
	var got alarms.ListParams
	svc := &testAlarmsService{
		listFn: func(ctx context.Context, params alarms.ListParams) (*alarms.ListResult, error) {
			got = params
			return &alarms.ListResult{Items: []models.Alarm{}, Cursor: "next"}, nil
		},
	}

	req := authedRequest(http.MethodGet, "/api/v1/alarms?limit=5&cursor=abc&unreadOnly=true", userID, nil)
	resp := httptest.NewRecorder()
	ListAlarms(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if got.UserID != userID || got.Limit != 5 || got.Cursor != "abc" || !got.UnreadOnly {
		t.Fatalf("unexpected params %+v", got)
	}
	var envelope struct {
		Data alarms.ListResult `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Cursor != "next" {
		t.Fatalf("expected cursor passthrough, got %q", envelope.Data.Cursor)
	}
}

func TestListAlarmsRejectsBadLimit(t *testing.T) {
	req := authedRequest(http.MethodGet, "/api/v1/alarms?limit=zero", uuid.New(), nil)
	resp := httptest.NewRecorder()
	ListAlarms(&testAlarmsService{}, testControllerLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestMarkAlarmReadSuccess(t *testing.T) {
	userID := uuid.New()
	alarmID := uuid.New()
	called := false
	svc := &testAlarmsService{
		markReadFn: func(ctx context.Context, uid, aid uuid.UUID) error {
			called = true
			if uid != userID || aid != alarmID {
				t.Fatalf("unexpected args %s %s", uid, aid)
			}
			return nil
		},
	}

	req := authedRequest(http.MethodPost, "/api/v1/alarms/"+alarmID.String()+"/read", userID, nil)
	req = addRouteParam(req, "alarmId", alarmID.String())
	resp := httptest.NewRecorder()
	MarkAlarmRead(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if !called {
		t.Fatal("expected service called")
	}
}

func TestMarkAlarmReadInvalidID(t *testing.T) {
	req := authedRequest(http.MethodPost, "/api/v1/alarms/invalid/read", uuid.New(), nil)
	req = addRouteParam(req, "alarmId", "invalid")
	resp := httptest.NewRecorder()
	MarkAlarmRead(&testAlarmsService{}, testControllerLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestMarkAllAlarmsReadReportsCount(t *testing.T) {
	svc := &testAlarmsService{
		markAllReadFn: func(ctx context.Context, uid uuid.UUID) (int64, error) {
			return 3, nil
		},
	}
	req := authedRequest(http.MethodPost, "/api/v1/alarms/read-all", uuid.New(), nil)
	resp := httptest.NewRecorder()
	MarkAllAlarmsRead(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data map[string]float64 `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data["updated"] != 3 {
		t.Fatalf("expected updated=3 got %v", envelope.Data["updated"])
	}
}
