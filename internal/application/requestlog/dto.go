package requestlog

import "github.com/everytoolsapi/backend/internal/domain/requestlog"

// LoginRequest is the admin login body
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required,max=128"`
}

// StatsRequest selects the statistics window
type StatsRequest struct {
	Since string `form:"since"`
	Top   int    `form:"top" binding:"omitempty,min=1,max=100"`
}

// StatsResponse is the request log summary returned to admins
type StatsResponse struct {
	*requestlog.Stats
	SuccessRate float64 `json:"successRate"`
}
