package domain

import (
	"context"
)

// TextGenerator is the external narrative text-generation collaborator.
// GenerateText returns (text, true) on success and ("", false) on ANY failure:
// network error, timeout, auth failure, malformed response, or a disabled
// backend. Implementations never return an error to the caller; the engine
// always has a deterministic fallback.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, maxTokens int) (string, bool)
}

// ReportEngine produces a complete medical report from combined analysis
// results. A report is always returned, even for empty input or internal
// failure (the error-report shape).
type ReportEngine interface {
	GenerateReport(ctx context.Context, analysis *CombinedAnalysis, patientID string) *MedicalReport
}

// ReportRepository persists finished medical reports.
type ReportRepository interface {
	SaveReport(ctx context.Context, report *MedicalReport) error
	GetReport(ctx context.Context, reportID string) (*MedicalReport, error)
	ListReports(ctx context.Context, patientID string, limit int) ([]*MedicalReport, error)
	DeleteReport(ctx context.Context, reportID string) error
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetDatabaseConfig() *DatabaseConfig
	Validate() error
	Reload() error
}
