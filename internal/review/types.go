// Package review provides clinician review storage for generated medical
// reports. It stores reviewer agreements and risk-level corrections so that
// report quality can be audited over time.
package review

import (
	"context"
	"io"
	"time"

	"github.com/biomerkin/decision-engine/internal/domain"
)

// Review represents a clinician's review of a generated medical report.
type Review struct {
	ID                 int64            `json:"id,omitempty"`
	ReportID           string           `json:"report_id"`                     // Report being reviewed
	Reviewer           string           `json:"reviewer"`                      // Reviewer identifier
	SuggestedRiskLevel domain.RiskLevel `json:"suggested_risk_level"`          // Engine's assessment
	ReviewedRiskLevel  domain.RiskLevel `json:"reviewed_risk_level"`           // Reviewer's decision
	ReviewerAgreed     bool             `json:"reviewer_agreed"`               // Did reviewer agree with the engine?
	RiskFactorSummary  string           `json:"risk_factor_summary,omitempty"` // Risk factors considered
	Notes              string           `json:"notes,omitempty"`               // Reviewer notes
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// Store defines the interface for review storage operations.
type Store interface {
	// Save stores or updates a review for a report.
	// If a review by the same reviewer for the same report exists, it is updated.
	Save(ctx context.Context, review *Review) error

	// Get retrieves the review for a report by a specific reviewer.
	// If reviewer is empty, returns the first matching review.
	Get(ctx context.Context, reportID string, reviewer string) (*Review, error)

	// List returns all review entries with pagination.
	List(ctx context.Context, limit, offset int) ([]*Review, error)

	// Count returns the total number of review entries.
	Count(ctx context.Context) (int64, error)

	// Delete removes a review entry by ID.
	Delete(ctx context.Context, id int64) error

	// ExportJSON exports all reviews to a JSON writer.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// ImportJSON imports reviews from a JSON reader.
	// Returns the number of imported and skipped entries.
	ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error)

	// Close closes the store and releases resources.
	Close() error
}

// ReviewExport represents the JSON export format.
type ReviewExport struct {
	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Count      int       `json:"count"`
	Reviews    []*Review `json:"reviews"`
}
