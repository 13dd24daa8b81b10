package dto

import "time"

// APIResponse is the envelope every endpoint answers with
type APIResponse struct {
	Success    bool            `json:"success" example:"true"`
	Message    string          `json:"message,omitempty" example:"Notes retrieved successfully"`
	Data       interface{}     `json:"data,omitempty"`
	Pagination *PaginationInfo `json:"pagination,omitempty"`
	Error      *ErrorDetail    `json:"error,omitempty"`
}

// PaginationInfo describes the page returned by a list endpoint
type PaginationInfo struct {
	Page       int   `json:"page" example:"1"`
	Limit      int   `json:"limit" example:"10"`
	Total      int64 `json:"total" example:"25"`
	TotalPages int   `json:"totalPages" example:"3"`
}

// NewSuccessResponse wraps a single payload
func NewSuccessResponse(data interface{}, message string) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// NewPaginatedResponse wraps one page of items
func NewPaginatedResponse(items interface{}, pagination PaginationInfo, message string) APIResponse {
	return APIResponse{
		Success:    true,
		Message:    message,
		Data:       items,
		Pagination: &pagination,
	}
}

// HealthResponse is returned by the health endpoints
type HealthResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}
