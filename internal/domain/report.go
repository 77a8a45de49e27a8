package domain

import (
	"errors"
	"fmt"
	"time"
)

// ReportVersion is stamped on every generated report.
const ReportVersion = "1.0"

// RiskFactor represents a single genetic or clinical risk factor contributing
// to the overall assessment.
type RiskFactor struct {
	FactorName   string    `json:"factor_name"`
	RiskLevel    RiskLevel `json:"risk_level"`
	Description  string    `json:"description"`
	GeneticBasis string    `json:"genetic_basis,omitempty"`
	Prevalence   *float64  `json:"prevalence,omitempty"`
}

// RiskAssessment is the engine's risk synthesis over genomic and protein data.
// The overall level is never lower than the highest pathogenic-mutation factor.
type RiskAssessment struct {
	OverallRiskLevel  RiskLevel    `json:"overall_risk_level"`
	RiskFactors       []RiskFactor `json:"risk_factors"`
	ProtectiveFactors []string     `json:"protective_factors"`
	Recommendations   []string     `json:"recommendations"`
	ConfidenceScore   float64      `json:"confidence_score"`
}

// Validate ensures the assessment can be released into a clinical report.
func (ra *RiskAssessment) Validate() error {
	if !ra.OverallRiskLevel.IsValid() {
		return fmt.Errorf("risk assessment validation: %w", ErrInvalidRiskLevel)
	}
	if err := ValidateConfidence(ra.ConfidenceScore); err != nil {
		return fmt.Errorf("risk assessment validation: %w", err)
	}
	for i := range ra.RiskFactors {
		if !ra.RiskFactors[i].RiskLevel.IsValid() {
			return fmt.Errorf("risk assessment validation: factor %q: %w",
				ra.RiskFactors[i].FactorName, ErrInvalidRiskLevel)
		}
	}
	return nil
}

// MaxFactorLevel returns the highest risk level among the factors, or LOW when
// there are none.
func (ra *RiskAssessment) MaxFactorLevel() RiskLevel {
	max := LOW
	for i := range ra.RiskFactors {
		if ra.RiskFactors[i].RiskLevel.Rank() > max.Rank() {
			max = ra.RiskFactors[i].RiskLevel
		}
	}
	return max
}

// DrugRecommendation is one ranked, personalized drug suggestion.
type DrugRecommendation struct {
	DrugName             string   `json:"drug_name"`
	DrugID               string   `json:"drug_id"`
	DosageRecommendation string   `json:"dosage_recommendation"`
	Rationale            string   `json:"rationale"`
	ExpectedBenefit      string   `json:"expected_benefit"`
	MonitoringParameters []string `json:"monitoring_parameters"`
	Duration             string   `json:"duration,omitempty"`
	Alternatives         []string `json:"alternatives,omitempty"`
}

// TreatmentOption is one entry in the ordered treatment plan.
type TreatmentOption struct {
	TreatmentID            string        `json:"treatment_id"`
	Name                   string        `json:"name"`
	TreatmentType          TreatmentType `json:"treatment_type"`
	Description            string        `json:"description"`
	EffectivenessRating    float64       `json:"effectiveness_rating"`
	EvidenceLevel          EvidenceLevel `json:"evidence_level"`
	Contraindications      []string      `json:"contraindications"`
	MonitoringRequirements []string      `json:"monitoring_requirements"`
}

// Validate ensures the treatment option is well-formed.
func (t *TreatmentOption) Validate() error {
	if t.TreatmentID == "" {
		return fmt.Errorf("treatment option validation: %w", errors.New("treatment ID is required"))
	}
	if !t.TreatmentType.IsValid() {
		return fmt.Errorf("treatment option validation: %w", ErrInvalidTreatmentType)
	}
	if !t.EvidenceLevel.IsValid() {
		return fmt.Errorf("treatment option validation: %w", ErrInvalidEvidenceLevel)
	}
	return nil
}

// ReportConfidence summarizes how much trust a reader should place in the
// assembled report.
type ReportConfidence struct {
	OverallConfidence     float64 `json:"overall_confidence"`
	DataCompleteness      float64 `json:"data_completeness"`
	EvidenceStrength      string  `json:"evidence_strength"`
	ClinicalActionability string  `json:"clinical_actionability"`
}

// MedicalReport is the engine's sole output. One is always produced per
// invocation, including the degraded error-report shape — there is no separate
// error channel.
type MedicalReport struct {
	PatientID                string               `json:"patient_id"`
	ReportID                 string               `json:"report_id"`
	AnalysisSummary          string               `json:"analysis_summary"`
	GeneticFindings          string               `json:"genetic_findings"`
	ProteinAnalysis          string               `json:"protein_analysis"`
	LiteratureInsights       string               `json:"literature_insights"`
	DrugRecommendations      []DrugRecommendation `json:"drug_recommendations"`
	TreatmentOptions         []TreatmentOption    `json:"treatment_options"`
	RiskAssessment           RiskAssessment       `json:"risk_assessment"`
	ClinicalRecommendations  []string             `json:"clinical_recommendations"`
	FollowUpRecommendations  []string             `json:"follow_up_recommendations"`
	Confidence               ReportConfidence     `json:"confidence"`
	GeneratedDate            time.Time            `json:"generated_date"`
	ReportVersion            string               `json:"report_version"`
}

// IsErrorReport reports whether this is the degraded shape produced after an
// unexpected internal failure.
func (r *MedicalReport) IsErrorReport() bool {
	return len(r.ReportID) >= 4 && r.ReportID[:4] == "ERR_"
}

// TreatmentsOfType filters treatment options by category, preserving order.
func (r *MedicalReport) TreatmentsOfType(tt TreatmentType) []TreatmentOption {
	var out []TreatmentOption
	for _, opt := range r.TreatmentOptions {
		if opt.TreatmentType == tt {
			out = append(out, opt)
		}
	}
	return out
}
