package models

import (
	"github.com/everytoolsapi/backend/internal/domain/requestlog"
)

// APIRequestModel maps the api_requests table
type APIRequestModel struct {
	BaseModel
	Route      string                     `gorm:"type:varchar(255);not null;index"`
	Params     string                     `gorm:"type:varchar(2048);not null;default:''"`
	OriginIP   *string                    `gorm:"column:origin_ip_address;type:inet"`
	Logs       []APIRequestLogModel       `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`
	Exceptions []APIRequestExceptionModel `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`
}

func (APIRequestModel) TableName() string {
	return "api_requests"
}

// APIRequestLogModel maps the api_request_logs table
type APIRequestLogModel struct {
	BaseModel
	RequestID int64  `gorm:"column:api_request_id;not null;index"`
	Status    string `gorm:"type:varchar(16);not null"`
}

func (APIRequestLogModel) TableName() string {
	return "api_request_logs"
}

// APIRequestExceptionModel maps the api_request_exceptions table
type APIRequestExceptionModel struct {
	BaseModel
	RequestID int64  `gorm:"column:api_request_id;not null;index"`
	Message   string `gorm:"type:varchar(1024);not null"`
}

func (APIRequestExceptionModel) TableName() string {
	return "api_request_exceptions"
}

// NewAPIRequestModel builds the row for a new request
func NewAPIRequestModel(r *requestlog.Request) *APIRequestModel {
	m := &APIRequestModel{
		BaseModel: BaseModel{ID: r.ID, CreatedAt: r.CreatedAt},
		Route:     r.Route,
		Params:    r.Params,
	}
	if r.OriginIP != "" {
		ip := r.OriginIP
		m.OriginIP = &ip
	}
	return m
}

// ToDomain converts the row and any preloaded associations
func (m *APIRequestModel) ToDomain() *requestlog.Request {
	r := &requestlog.Request{
		ID:        m.ID,
		Route:     m.Route,
		Params:    m.Params,
		CreatedAt: m.CreatedAt,
	}
	if m.OriginIP != nil {
		r.OriginIP = *m.OriginIP
	}
	for i := range m.Logs {
		r.Logs = append(r.Logs, m.Logs[i].ToDomain())
	}
	for i := range m.Exceptions {
		r.Exceptions = append(r.Exceptions, m.Exceptions[i].ToDomain())
	}
	return r
}

func (m *APIRequestLogModel) ToDomain() requestlog.StatusLog {
	return requestlog.StatusLog{
		ID:        m.ID,
		RequestID: m.RequestID,
		Status:    requestlog.Status(m.Status),
		CreatedAt: m.CreatedAt,
	}
}

func (m *APIRequestExceptionModel) ToDomain() requestlog.Exception {
	return requestlog.Exception{
		ID:        m.ID,
		RequestID: m.RequestID,
		Message:   m.Message,
		CreatedAt: m.CreatedAt,
	}
}
