package alarms

import (
	"context"
	"time"

	"github.com/elcilc/clicle/pkg/db/models"
	"github.com/elcilc/clicle/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes persistence helpers for alarm records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, alarm *models.Alarm) error
	List(ctx context.Context, params listAlarmsParams) ([]models.Alarm, *pagination.Cursor, error)
	MarkRead(ctx context.Context, userID, alarmID uuid.UUID, now time.Time) (alarmMarkResult, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an alarms repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listAlarmsParams struct {
	UserID     uuid.UUID
	Limit      int
	Cursor     *pagination.Cursor
	UnreadOnly bool
}

type alarmMarkResult struct {
	Updated bool
	Found   bool
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, alarm *models.Alarm) error {
	return r.db.WithContext(ctx).Create(alarm).Error
}

func (r *repositoryImpl) List(ctx context.Context, params listAlarmsParams) ([]models.Alarm, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Alarm{}).Where("user_id = ?", params.UserID)
	if params.UnreadOnly {
		query = query.Where("read_at IS NULL")
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.Alarm
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		return rows, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return rows, nil, nil
}

func (r *repositoryImpl) MarkRead(ctx context.Context, userID, alarmID uuid.UUID, now time.Time) (alarmMarkResult, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Alarm{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", alarmID, userID).
		UpdateColumn("read_at", now)
	if result.Error != nil {
		return alarmMarkResult{}, result.Error
	}

	mark := alarmMarkResult{Updated: result.RowsAffected > 0}
	if result.RowsAffected > 0 {
		mark.Found = true
		return mark, nil
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Alarm{}).
		Where("id = ? AND user_id = ?", alarmID, userID).
		Count(&count).Error; err != nil {
		return alarmMarkResult{}, err
	}
	mark.Found = count > 0
	return mark, nil
}

func (r *repositoryImpl) MarkAllRead(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Alarm{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		UpdateColumn("read_at", now)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
