package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/biomerkin/decision-engine/internal/domain"
)

// ReportAssembler composes the final medical report: clinical and follow-up
// recommendation lists, the confidence block, and the degraded error-report
// shape used when generation fails.
type ReportAssembler struct {
	logger *logrus.Logger
}

// NewReportAssembler creates a new assembler.
func NewReportAssembler(logger *logrus.Logger) *ReportAssembler {
	return &ReportAssembler{logger: logger}
}

// ClinicalRecommendations derives the ordered clinical recommendation list
// from the analysis and the risk assessment. Risk-driven entries come first,
// then drug- and literature-driven entries, then the fixed general block.
func (a *ReportAssembler) ClinicalRecommendations(analysis *domain.CombinedAnalysis,
	risk domain.RiskAssessment) []string {

	var recommendations []string

	switch risk.OverallRiskLevel {
	case domain.HIGH, domain.CRITICAL:
		recommendations = append(recommendations,
			"Immediate referral to genetic counselor for comprehensive risk assessment",
			"Consider enhanced screening protocols based on identified genetic variants",
			"Family cascade testing recommended for first-degree relatives",
			"Multidisciplinary team approach for treatment planning",
		)
	case domain.MODERATE:
		recommendations = append(recommendations,
			"Genetic counseling consultation recommended",
			"Modified screening intervals based on genetic risk profile",
			"Consider family history assessment",
		)
	}

	if analysis != nil && analysis.HasDrugCandidates() {
		recommendations = append(recommendations,
			"Pharmacogenomic testing results should guide medication selection and dosing")
		if len(analysis.DrugResults.DrugCandidates) > 1 {
			recommendations = append(recommendations,
				"Monitor for potential drug-drug interactions with multiple therapeutic options")
		}
	}

	if analysis != nil && analysis.LiteratureResults != nil {
		confidence := analysis.LiteratureResults.Summary.ConfidenceLevel
		if confidence > 0.7 {
			recommendations = append(recommendations,
				"Strong literature support for genetic findings - follow evidence-based guidelines")
		} else if confidence < 0.5 {
			recommendations = append(recommendations,
				"Limited literature evidence - consider consultation with genetics specialist")
		}
	}

	recommendations = append(recommendations,
		"Regular follow-up to monitor treatment response and adjust therapy as needed",
		"Patient education regarding genetic findings and their implications",
		"Documentation of genetic findings in medical record for future reference",
	)

	return recommendations
}

// FollowUpRecommendations derives the follow-up schedule from the risk level
// and the planned treatments.
func (a *ReportAssembler) FollowUpRecommendations(risk domain.RiskAssessment,
	options []domain.TreatmentOption) []string {

	var followUp []string

	switch risk.OverallRiskLevel {
	case domain.HIGH, domain.CRITICAL:
		followUp = append(followUp,
			"Follow-up appointment in 3-6 months to assess treatment response",
			"Annual genetic counseling review",
			"Quarterly monitoring of relevant biomarkers",
		)
	case domain.MODERATE:
		followUp = append(followUp,
			"Follow-up appointment in 6-12 months",
			"Annual review of genetic risk factors",
			"Biannual monitoring as clinically indicated",
		)
	default:
		followUp = append(followUp,
			"Annual follow-up for routine monitoring",
			"Re-evaluation if new symptoms develop",
		)
	}

	hasMedication := false
	for _, option := range options {
		if option.TreatmentType == domain.MEDICATION {
			hasMedication = true
			break
		}
	}
	if hasMedication {
		followUp = append(followUp,
			"Regular monitoring for medication efficacy and side effects",
			"Dose adjustments based on clinical response and genetic factors",
			"Laboratory monitoring as per medication-specific protocols",
		)
	}

	followUp = append(followUp,
		"Update family history and genetic information as new data becomes available",
		"Consider re-analysis if new genetic testing technologies become available",
		"Maintain communication with genetic counselor for ongoing support",
	)

	return followUp
}

// Confidence computes the report-level confidence block. Data completeness is
// the fraction of the four input sources present.
func (a *ReportAssembler) Confidence(analysis *domain.CombinedAnalysis,
	risk domain.RiskAssessment, drugRecs []domain.DrugRecommendation) domain.ReportConfidence {

	present := 0
	if analysis != nil {
		if analysis.HasGenomics() {
			present++
		}
		if analysis.ProteomicsResults != nil {
			present++
		}
		if analysis.LiteratureResults != nil {
			present++
		}
		if analysis.DrugResults != nil {
			present++
		}
	}

	evidenceStrength := "Moderate"
	if risk.ConfidenceScore > 0.8 {
		evidenceStrength = "Strong"
	}

	actionability := "Moderate"
	hasActionableDrug := false
	for i := range drugRecs {
		if drugRecs[i].DrugID != "N/A" {
			hasActionableDrug = true
			break
		}
	}
	if hasActionableDrug {
		actionability = "High"
	}

	return domain.ReportConfidence{
		OverallConfidence:     risk.ConfidenceScore,
		DataCompleteness:      float64(present) / 4.0,
		EvidenceStrength:      evidenceStrength,
		ClinicalActionability: actionability,
	}
}

// ErrorReport builds the degraded report returned after an internal failure.
// The error message is surfaced in the analysis summary; all other narrative
// sections carry fixed placeholder text and the risk confidence is zero.
func (a *ReportAssembler) ErrorReport(patientID, errorMessage string) *domain.MedicalReport {
	if patientID == "" {
		patientID = newPatientID()
	}

	if a.logger != nil {
		a.logger.WithFields(logrus.Fields{
			"patient_id": patientID,
			"error":      errorMessage,
		}).Error("Report generation failed, returning error report")
	}

	return &domain.MedicalReport{
		PatientID:           patientID,
		ReportID:            fmt.Sprintf("ERR_%s", shortID()),
		AnalysisSummary:     fmt.Sprintf("Error occurred during report generation: %s", errorMessage),
		GeneticFindings:     "Unable to generate genetic findings due to processing error",
		ProteinAnalysis:     "Unable to generate protein analysis due to processing error",
		LiteratureInsights:  "Unable to generate literature insights due to processing error",
		DrugRecommendations: []domain.DrugRecommendation{},
		TreatmentOptions:    []domain.TreatmentOption{},
		RiskAssessment: domain.RiskAssessment{
			OverallRiskLevel:  domain.LOW,
			RiskFactors:       []domain.RiskFactor{},
			ProtectiveFactors: []string{},
			Recommendations:   []string{"Manual review recommended due to processing error"},
			ConfidenceScore:   0.0,
		},
		ClinicalRecommendations: []string{"Manual review and analysis recommended"},
		FollowUpRecommendations: []string{"Contact genetics specialist for comprehensive evaluation"},
		Confidence: domain.ReportConfidence{
			OverallConfidence:     0.0,
			DataCompleteness:      0.0,
			EvidenceStrength:      "Moderate",
			ClinicalActionability: "Moderate",
		},
		GeneratedDate: time.Now().UTC(),
		ReportVersion: domain.ReportVersion,
	}
}

func shortID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func newPatientID() string {
	return fmt.Sprintf("PAT_%s", shortID())
}
