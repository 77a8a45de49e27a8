// Package repository persists generated medical reports.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/biomerkin/decision-engine/internal/domain"
)

// ReportRepository handles medical report persistence in Postgres. The full
// report is stored as JSONB alongside indexed lookup columns.
type ReportRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *pgxpool.Pool, logger *logrus.Logger) *ReportRepository {
	return &ReportRepository{
		db:  db,
		log: logger,
	}
}

// SaveReport inserts a generated report
func (r *ReportRepository) SaveReport(ctx context.Context, report *domain.MedicalReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}

	query := `
		INSERT INTO medical_reports (
			report_id, patient_id, risk_level, confidence_score,
			is_error, report, generated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)`

	_, err = r.db.Exec(ctx, query,
		report.ReportID,
		report.PatientID,
		report.RiskAssessment.OverallRiskLevel.String(),
		report.RiskAssessment.ConfidenceScore,
		report.IsErrorReport(),
		reportJSON,
		report.GeneratedDate,
	)

	if err != nil {
		r.log.WithFields(logrus.Fields{
			"report_id":  report.ReportID,
			"patient_id": report.PatientID,
			"error":      err,
		}).Error("Failed to save medical report")
		return fmt.Errorf("saving report: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"report_id":  report.ReportID,
		"patient_id": report.PatientID,
		"risk_level": report.RiskAssessment.OverallRiskLevel.String(),
	}).Info("Medical report saved")

	return nil
}

// GetReport retrieves a report by its id
func (r *ReportRepository) GetReport(ctx context.Context, reportID string) (*domain.MedicalReport, error) {
	query := `SELECT report FROM medical_reports WHERE report_id = $1`

	var reportJSON []byte
	err := r.db.QueryRow(ctx, query, reportID).Scan(&reportJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("report %s: %w", reportID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting report: %w", err)
	}

	var report domain.MedicalReport
	if err := json.Unmarshal(reportJSON, &report); err != nil {
		return nil, fmt.Errorf("unmarshaling report: %w", err)
	}

	return &report, nil
}

// ListReports returns the most recent reports for a patient, newest first
func (r *ReportRepository) ListReports(ctx context.Context, patientID string, limit int) ([]*domain.MedicalReport, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT report FROM medical_reports
		WHERE patient_id = $1
		ORDER BY generated_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, patientID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	var reports []*domain.MedicalReport
	for rows.Next() {
		var reportJSON []byte
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("scanning report row: %w", err)
		}
		var report domain.MedicalReport
		if err := json.Unmarshal(reportJSON, &report); err != nil {
			return nil, fmt.Errorf("unmarshaling report: %w", err)
		}
		reports = append(reports, &report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating report rows: %w", err)
	}

	return reports, nil
}

// DeleteReport removes a report by its id
func (r *ReportRepository) DeleteReport(ctx context.Context, reportID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM medical_reports WHERE report_id = $1`, reportID)
	if err != nil {
		return fmt.Errorf("deleting report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("report %s: %w", reportID, domain.ErrNotFound)
	}
	return nil
}
