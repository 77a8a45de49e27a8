package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/biomerkin/decision-engine/internal/domain"
	"github.com/biomerkin/decision-engine/internal/review"
)

// generateReportRequest is the body of POST /api/v1/reports.
type generateReportRequest struct {
	PatientID string                   `json:"patient_id"`
	Analysis  *domain.CombinedAnalysis `json:"analysis"`
}

// saveReviewRequest is the body of POST /api/v1/reports/:id/reviews.
type saveReviewRequest struct {
	Reviewer           string           `json:"reviewer"`
	SuggestedRiskLevel domain.RiskLevel `json:"suggested_risk_level"`
	ReviewedRiskLevel  domain.RiskLevel `json:"reviewed_risk_level"`
	ReviewerAgreed     bool             `json:"reviewer_agreed"`
	RiskFactorSummary  string           `json:"risk_factor_summary"`
	Notes              string           `json:"notes"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"version":   domain.ReportVersion,
	})
}

// handleGenerateReport runs the decision engine over a combined analysis
// document and returns the resulting medical report. The report is persisted
// when a repository is configured. An error report is still a report: it is
// returned with 200 and persisted like any other.
func (s *Server) handleGenerateReport(c *gin.Context) {
	var req generateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	report := s.engine.GenerateReport(c.Request.Context(), req.Analysis, req.PatientID)

	if s.reports != nil {
		if err := s.reports.SaveReport(c.Request.Context(), report); err != nil {
			s.log.WithError(err).WithField("report_id", report.ReportID).Error("Failed to persist report")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist report"})
			return
		}
	}

	c.JSON(http.StatusOK, report)
}

// handleGetReport retrieves a persisted report by ID.
func (s *Server) handleGetReport(c *gin.Context) {
	if s.reports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report persistence is not configured"})
		return
	}

	report, err := s.reports.GetReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}
		s.log.WithError(err).Error("Failed to load report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load report"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// handleDeleteReport removes a persisted report.
func (s *Server) handleDeleteReport(c *gin.Context) {
	if s.reports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report persistence is not configured"})
		return
	}

	if err := s.reports.DeleteReport(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}
		s.log.WithError(err).Error("Failed to delete report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete report"})
		return
	}

	c.Status(http.StatusNoContent)
}

// handleListPatientReports lists persisted reports for a patient, newest first.
func (s *Server) handleListPatientReports(c *gin.Context) {
	if s.reports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report persistence is not configured"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	reports, err := s.reports.ListReports(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		s.log.WithError(err).Error("Failed to list reports")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reports"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"patient_id": c.Param("id"),
		"count":      len(reports),
		"reports":    reports,
	})
}

// handleSaveReview records a clinician's review of a generated report.
func (s *Server) handleSaveReview(c *gin.Context) {
	if s.reviews == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "review storage is not configured"})
		return
	}

	var req saveReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	if !req.ReviewedRiskLevel.IsValid() {
		verr := domain.NewValidationError("reviewed_risk_level", "must be a known risk level", req.ReviewedRiskLevel)
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
		return
	}

	rv := &review.Review{
		ReportID:           c.Param("id"),
		Reviewer:           req.Reviewer,
		SuggestedRiskLevel: req.SuggestedRiskLevel,
		ReviewedRiskLevel:  req.ReviewedRiskLevel,
		ReviewerAgreed:     req.ReviewerAgreed,
		RiskFactorSummary:  req.RiskFactorSummary,
		Notes:              req.Notes,
	}

	if err := s.reviews.Save(c.Request.Context(), rv); err != nil {
		s.log.WithError(err).WithField("report_id", rv.ReportID).Error("Failed to save review")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save review"})
		return
	}

	c.JSON(http.StatusCreated, rv)
}

// handleGetReview retrieves a review for a report by reviewer.
func (s *Server) handleGetReview(c *gin.Context) {
	if s.reviews == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "review storage is not configured"})
		return
	}

	rv, err := s.reviews.Get(c.Request.Context(), c.Param("id"), c.Query("reviewer"))
	if err != nil {
		s.log.WithError(err).Error("Failed to load review")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load review"})
		return
	}
	if rv == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "review not found"})
		return
	}

	c.JSON(http.StatusOK, rv)
}
