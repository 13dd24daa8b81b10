package dto

// UserFilterRequest represents the admin user listing filters
type UserFilterRequest struct {
	Role       string `form:"role" binding:"omitempty,oneof=student instructor admin"`
	Department string `form:"department"`
	IsActive   *bool  `form:"isActive"`
}

// DashboardStat is one entry of the admin dashboard. A failed count carries
// its error instead of failing the whole dashboard.
type DashboardStat struct {
	Total  int64  `json:"total"`
	Public *int64 `json:"public,omitempty"`
	Error  string `json:"error,omitempty"`
}

// DashboardResponse aggregates platform statistics
type DashboardResponse struct {
	Users       DashboardStat            `json:"users"`
	Notes       DashboardStat            `json:"notes"`
	Assignments DashboardStat            `json:"assignments"`
	Resources   DashboardStat            `json:"resources"`
	DriveFiles  DashboardStat            `json:"driveFiles"`
	UsersByRole map[string]DashboardStat `json:"usersByRole"`
	GeneratedAt string                   `json:"generatedAt"`
}

// ComponentHealth reports the state of one dependency
type ComponentHealth struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// SystemHealthResponse is returned by the admin health endpoint
type SystemHealthResponse struct {
	Status     string                     `json:"status"`
	Uptime     string                     `json:"uptime"`
	Version    string                     `json:"version"`
	Components map[string]ComponentHealth `json:"components"`
	Jobs       interface{}                `json:"jobs,omitempty"`
}
