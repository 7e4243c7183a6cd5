package alarms

import (
	"context"
	"time"

	"github.com/elcilc/clicle/pkg/db/models"
	"github.com/elcilc/clicle/pkg/enums"
	pkgerrors "github.com/elcilc/clicle/pkg/errors"
	"github.com/elcilc/clicle/pkg/logger"
	"github.com/elcilc/clicle/pkg/metrics"
	"github.com/elcilc/clicle/pkg/pagination"
	"github.com/elcilc/clicle/pkg/sse"
	"github.com/google/uuid"
)

const (
	// alarmEventName labels every event pushed over a stream, including the
	// subscription ack.
	alarmEventName = "alarm"
	ackEventID     = "id"
	ackPayload     = "connect completed"
)

// Marker is the payload pushed to a live stream when a new alarm lands.
// Clients treat it as a refetch signal rather than a full record.
type Marker struct {
	AlarmID   uuid.UUID       `json:"alarm_id"`
	Type      enums.AlarmType `json:"alarm_type"`
	Text      string          `json:"text"`
	CreatedAt time.Time       `json:"created_at"`
}

// Service defines alarm delivery, subscription, and history operations.
type Service interface {
	Send(ctx context.Context, alarmType enums.AlarmType, args models.AlarmArgs, recipient *models.User) error
	Subscribe(ctx context.Context, userID uuid.UUID, ch sse.Channel) error
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, userID, alarmID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type service struct {
	repo     Repository
	registry *sse.Registry
	logg     *logger.Logger
	metrics  *metrics.AlarmMetrics
}

// ListParams configures pagination for the alarm history.
type ListParams struct {
	UserID     uuid.UUID
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// ListResult wraps returned alarms and the cursor for the next page.
type ListResult struct {
	Items  []models.Alarm `json:"items"`
	Cursor string         `json:"cursor"`
}

// NewService wires alarm dependencies.
func NewService(repo Repository, registry *sse.Registry, logg *logger.Logger, alarmMetrics *metrics.AlarmMetrics) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "alarms repository required")
	}
	if registry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "connection registry required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{repo: repo, registry: registry, logg: logg, metrics: alarmMetrics}, nil
}

// Send persists one alarm record for the recipient and then attempts a
// best-effort push. The record always survives; only the push is fallible.
func (s *service) Send(ctx context.Context, alarmType enums.AlarmType, args models.AlarmArgs, recipient *models.User) error {
	if recipient == nil || recipient.ID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "alarm recipient required")
	}
	if !alarmType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown alarm type")
	}

	alarm := &models.Alarm{
		UserID: recipient.ID,
		Type:   alarmType,
		Args:   args,
	}
	if err := s.repo.Create(ctx, alarm); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist alarm")
	}

	ch, ok := s.registry.Get(recipient.ID)
	if !ok {
		// No live stream is the steady state; the record waits in the list.
		s.logg.Info(s.logg.WithField(ctx, "user_id", recipient.ID.String()), "alarm stored, no live stream")
		return nil
	}

	event := sse.Event{
		ID:   alarm.ID.String(),
		Name: alarmEventName,
		Data: Marker{
			AlarmID:   alarm.ID,
			Type:      alarm.Type,
			Text:      alarm.Type.Text(),
			CreatedAt: alarm.CreatedAt,
		},
	}
	if err := ch.Send(event); err != nil {
		s.registry.RemoveChannel(recipient.ID, ch)
		ch.Close()
		s.metrics.IncFailed(string(alarmType))
		return pkgerrors.Wrap(pkgerrors.CodeNotificationConnect, err, "push alarm")
	}

	s.metrics.IncDelivered(string(alarmType))
	return nil
}

// Subscribe registers ch as the user's live stream and confirms the
// subscription with an ack event. A user holds at most one stream; a new
// subscription force-closes the previous one.
func (s *service) Subscribe(ctx context.Context, userID uuid.UUID, ch sse.Channel) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if ch == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stream required")
	}

	s.registry.Put(userID, ch)
	s.metrics.StreamOpened()

	go func() {
		<-ch.Done()
		s.registry.RemoveChannel(userID, ch)
		s.metrics.StreamClosed()
	}()

	ack := sse.Event{ID: ackEventID, Name: alarmEventName, Data: ackPayload}
	if err := ch.Send(ack); err != nil {
		s.registry.RemoveChannel(userID, ch)
		ch.Close()
		return pkgerrors.Wrap(pkgerrors.CodeNotificationConnect, err, "subscription ack")
	}

	s.logg.Info(s.logg.WithField(ctx, "user_id", userID.String()), "alarm stream subscribed")
	return nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	query := listAlarmsParams{
		UserID:     params.UserID,
		Limit:      pagination.LimitWithBuffer(params.Limit),
		UnreadOnly: params.UnreadOnly,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list alarms")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}

	return &ListResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) MarkRead(ctx context.Context, userID, alarmID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if alarmID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "alarm id required")
	}

	result, err := s.repo.MarkRead(ctx, userID, alarmID, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark alarm read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "alarm not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	count, err := s.repo.MarkAllRead(ctx, userID, time.Now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark alarms read")
	}
	return count, nil
}
