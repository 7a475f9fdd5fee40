package handler

import "github.com/everytoolsapi/backend/internal/interfaces/http/dto"

// Envelope represents a successful API response for OpenAPI documentation
// @Description Standard API envelope with a typed response field
type Envelope[T any] struct {
	API      dto.APIInfo `json:"api"`
	Response T           `json:"response"`
}

// ErrorEnvelope represents a failed API response for OpenAPI documentation
// @Description Standard error envelope, "response" is always an empty object
type ErrorEnvelope struct {
	API      dto.APIInfo       `json:"api"`
	Response dto.EmptyResponse `json:"response"`
}
