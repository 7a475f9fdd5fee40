package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/everytoolsapi/backend/internal/domain/requestlog"
	"github.com/everytoolsapi/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

const lastExceptionsLimit = 10

// RequestLogRepository implements requestlog.Repository with GORM
type RequestLogRepository struct {
	db *gorm.DB
}

// NewRequestLogRepository creates a new request log repository
func NewRequestLogRepository(db *gorm.DB) *RequestLogRepository {
	return &RequestLogRepository{db: db}
}

var _ requestlog.Repository = (*RequestLogRepository)(nil)

// Create inserts the request and its "started" log in one transaction
func (r *RequestLogRepository) Create(ctx context.Context, req *requestlog.Request) error {
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	m := models.NewAPIRequestModel(req)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Logs", "Exceptions").Create(m).Error; err != nil {
			return fmt.Errorf("insert api request: %w", err)
		}
		started := &models.APIRequestLogModel{
			BaseModel: models.BaseModel{CreatedAt: m.CreatedAt},
			RequestID: m.ID,
			Status:    string(requestlog.StatusStarted),
		}
		if err := tx.Create(started).Error; err != nil {
			return fmt.Errorf("insert started log: %w", err)
		}

		req.ID = m.ID
		req.Logs = []requestlog.StatusLog{started.ToDomain()}
		return nil
	})
}

func (r *RequestLogRepository) MarkSuccess(ctx context.Context, requestID int64) error {
	return r.complete(ctx, requestID, requestlog.StatusSuccess, "")
}

func (r *RequestLogRepository) MarkException(ctx context.Context, requestID int64, message string) error {
	return r.complete(ctx, requestID, requestlog.StatusException, requestlog.TruncateMessage(message))
}

// complete appends the terminal log. A request that already has a terminal
// log is rejected with requestlog.ErrAlreadyCompleted.
func (r *RequestLogRepository) complete(ctx context.Context, requestID int64, status requestlog.Status, message string) error {
	now := time.Now().UTC()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last models.APIRequestLogModel
		err := tx.Where("api_request_id = ?", requestID).Order("id DESC").Take(&last).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return requestlog.ErrRequestNotFound
		}
		if err != nil {
			return fmt.Errorf("load request status: %w", err)
		}
		if requestlog.Status(last.Status).IsTerminal() {
			return requestlog.ErrAlreadyCompleted
		}

		if status == requestlog.StatusException {
			exc := &models.APIRequestExceptionModel{
				BaseModel: models.BaseModel{CreatedAt: now},
				RequestID: requestID,
				Message:   message,
			}
			if err := tx.Create(exc).Error; err != nil {
				return fmt.Errorf("insert exception: %w", err)
			}
		}

		log := &models.APIRequestLogModel{
			BaseModel: models.BaseModel{CreatedAt: now},
			RequestID: requestID,
			Status:    string(status),
		}
		if err := tx.Create(log).Error; err != nil {
			return fmt.Errorf("insert %s log: %w", status, err)
		}
		return nil
	})
}

func (r *RequestLogRepository) FindByID(ctx context.Context, requestID int64) (*requestlog.Request, error) {
	var m models.APIRequestModel
	err := r.db.WithContext(ctx).
		Preload("Logs", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Exceptions", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&m, "id = ?", requestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, requestlog.ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

type statusCount struct {
	Status string
	Count  int64
}

// Stats counts requests since the given time. ByStatus groups requests by
// their latest status, so in-flight requests appear as "started".
func (r *RequestLogRepository) Stats(ctx context.Context, since time.Time, topRoutes int) (*requestlog.Stats, error) {
	db := r.db.WithContext(ctx)
	stats := &requestlog.Stats{
		Since:          since,
		ByStatus:       make(map[requestlog.Status]int64),
		TopRoutes:      []requestlog.RouteCount{},
		LastExceptions: []requestlog.Exception{},
	}

	recent := db.Model(&models.APIRequestModel{}).Where("created_at >= ?", since)
	if err := recent.Count(&stats.TotalRequests).Error; err != nil {
		return nil, fmt.Errorf("count requests: %w", err)
	}

	if err := db.Model(&models.APIRequestModel{}).
		Where("created_at >= ?", since).
		Distinct("origin_ip_address").
		Count(&stats.UniqueOrigins).Error; err != nil {
		return nil, fmt.Errorf("count origins: %w", err)
	}

	var counts []statusCount
	if err := db.Table("api_request_logs AS l").
		Select("l.status AS status, COUNT(*) AS count").
		Joins("JOIN api_requests AS r ON r.id = l.api_request_id").
		Where("r.created_at >= ?", since).
		Where("l.id = (SELECT MAX(l2.id) FROM api_request_logs AS l2 WHERE l2.api_request_id = l.api_request_id)").
		Group("l.status").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("count statuses: %w", err)
	}
	for _, c := range counts {
		stats.ByStatus[requestlog.Status(c.Status)] = c.Count
	}

	if topRoutes > 0 {
		if err := db.Model(&models.APIRequestModel{}).
			Select("route, COUNT(*) AS count").
			Where("created_at >= ?", since).
			Group("route").
			Order("count DESC, route ASC").
			Limit(topRoutes).
			Scan(&stats.TopRoutes).Error; err != nil {
			return nil, fmt.Errorf("top routes: %w", err)
		}
	}

	var excs []models.APIRequestExceptionModel
	if err := db.Where("created_at >= ?", since).
		Order("id DESC").
		Limit(lastExceptionsLimit).
		Find(&excs).Error; err != nil {
		return nil, fmt.Errorf("last exceptions: %w", err)
	}
	for i := range excs {
		stats.LastExceptions = append(stats.LastExceptions, excs[i].ToDomain())
	}

	return stats, nil
}
