package dto

import (
	"time"

	"github.com/everytoolsapi/backend/internal/domain/endpoint"
)

// APIInfo is the "api" block of every API response
type APIInfo struct {
	Status       bool    `json:"status"`
	ErrorMessage *string `json:"errorMessage"`
	ElapsedTime  float64 `json:"elapsedTime" example:"0.0012"`
	Version      string  `json:"version" example:"v2"`
}

// Envelope is the body of every API response
type Envelope struct {
	API      APIInfo `json:"api"`
	Response any     `json:"response"`
}

// EmptyResponse is the "response" value of failed requests
type EmptyResponse struct{}

// NewSuccessEnvelope wraps the result of a successful request
func NewSuccessEnvelope(data any, elapsed time.Duration) Envelope {
	if data == nil {
		data = EmptyResponse{}
	}
	return Envelope{
		API: APIInfo{
			Status:      true,
			ElapsedTime: elapsed.Seconds(),
			Version:     endpoint.LatestVersion,
		},
		Response: data,
	}
}

// NewErrorEnvelope reports a failed request with the client-visible message
func NewErrorEnvelope(message string, elapsed time.Duration) Envelope {
	return Envelope{
		API: APIInfo{
			Status:       false,
			ErrorMessage: &message,
			ElapsedTime:  elapsed.Seconds(),
			Version:      endpoint.LatestVersion,
		},
		Response: EmptyResponse{},
	}
}

// StatusResponse is returned by /api/status
type StatusResponse struct {
	Status  string `json:"status" example:"ok"`
	Message string `json:"message" example:"API server is successfully running."`
}

// EndpointResponse describes a catalogue entry in /api/v2/endpoints
type EndpointResponse struct {
	endpoint.Endpoint
	Path            string `json:"path" example:"/api/v2/parser/url"`
	CacheTTLSeconds int64  `json:"cacheTtlSeconds"`
}

// NewEndpointResponse builds the public description of an endpoint
func NewEndpointResponse(e endpoint.Endpoint) EndpointResponse {
	return EndpointResponse{
		Endpoint:        e,
		Path:            "/api/" + endpoint.LatestVersion + "/" + e.Path(),
		CacheTTLSeconds: int64(e.CacheTTL / time.Second),
	}
}

// HealthResponse is returned by /health
type HealthResponse struct {
	Status  string            `json:"status" example:"healthy"`
	Uptime  string            `json:"uptime" example:"1h30m45s"`
	Version string            `json:"version" example:"v2"`
	Checks  map[string]string `json:"checks"`
}

// IDRequest is a request with a numeric id path parameter
type IDRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}
