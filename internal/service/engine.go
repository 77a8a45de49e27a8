package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/biomerkin/decision-engine/internal/domain"
)

// DecisionEngine synthesizes a complete medical report from combined analysis
// results. It is stateless across invocations: the same input always produces
// the same report content apart from identifiers and timestamps.
//
// GenerateReport never fails. Internal errors and panics are converted into
// the degraded error-report shape so callers always receive a report.
type DecisionEngine struct {
	logger       *logrus.Logger
	aggregator   *DataAggregator
	riskAssessor *RiskAssessor
	drugs        *DrugRecommender
	treatments   *TreatmentPlanner
	narrative    *NarrativeSynthesizer
	assembler    *ReportAssembler
}

// NewDecisionEngine wires the engine components. A nil generator disables
// narrative generation; the deterministic fallbacks are used instead.
func NewDecisionEngine(logger *logrus.Logger, cfg domain.EngineConfig, generator domain.TextGenerator) *DecisionEngine {
	return &DecisionEngine{
		logger:       logger,
		aggregator:   NewDataAggregator(logger),
		riskAssessor: NewRiskAssessor(logger),
		drugs:        NewDrugRecommender(logger, cfg.MaxDrugRecommendations),
		treatments:   NewTreatmentPlanner(logger, cfg.MaxMedicationOptions),
		narrative:    NewNarrativeSynthesizer(logger, generator, cfg.NarrativeMaxTokens),
		assembler:    NewReportAssembler(logger),
	}
}

// GenerateReport produces a medical report for the given analysis. An empty
// patientID is replaced with a generated one. The returned report is never
// nil.
func (e *DecisionEngine) GenerateReport(ctx context.Context, analysis *domain.CombinedAnalysis,
	patientID string) (report *domain.MedicalReport) {

	if patientID == "" && analysis != nil {
		patientID = analysis.PatientID
	}

	defer func() {
		if r := recover(); r != nil {
			if e.logger != nil {
				e.logger.WithFields(logrus.Fields{
					"code":       domain.ErrCodeInternal,
					"patient_id": patientID,
				}).Error("Report generation panicked")
			}
			report = e.assembler.ErrorReport(patientID, fmt.Sprintf("%v", r))
		}
	}()

	if e.logger != nil {
		e.logger.WithField("patient_id", patientID).Info("Starting medical report generation")
	}

	generated, err := e.generate(ctx, analysis, patientID)
	if err != nil {
		return e.assembler.ErrorReport(patientID, err.Error())
	}

	if e.logger != nil {
		e.logger.WithFields(logrus.Fields{
			"report_id":        generated.ReportID,
			"overall_risk":     generated.RiskAssessment.OverallRiskLevel.String(),
			"max_factor_level": generated.RiskAssessment.MaxFactorLevel().String(),
		}).Info("Medical report generated successfully")
	}

	return generated
}

func (e *DecisionEngine) generate(ctx context.Context, analysis *domain.CombinedAnalysis,
	patientID string) (*domain.MedicalReport, error) {

	reportID := fmt.Sprintf("RPT_%s", shortID())
	if patientID == "" {
		patientID = newPatientID()
	}

	aggregated := e.aggregator.Aggregate(analysis)

	var genomics *domain.GenomicsResults
	var proteomics *domain.ProteomicsResults
	var drugResults *domain.DrugResults
	if analysis != nil {
		genomics = analysis.GenomicsResults
		proteomics = analysis.ProteomicsResults
		drugResults = analysis.DrugResults
	}

	riskAssessment := e.riskAssessor.Assess(genomics, proteomics)
	if err := riskAssessment.Validate(); err != nil {
		return nil, domain.NewEngineError(domain.ErrCodeValidation,
			"risk assessment failed validation", err.Error(), reportID)
	}

	drugRecommendations := e.drugs.Recommend(drugResults, genomics, riskAssessment)
	treatmentOptions := e.treatments.Plan(analysis, riskAssessment)
	sections := e.narrative.Synthesize(ctx, aggregated)

	return &domain.MedicalReport{
		PatientID:               patientID,
		ReportID:                reportID,
		AnalysisSummary:         sections.AnalysisSummary,
		GeneticFindings:         sections.GeneticFindings,
		ProteinAnalysis:         sections.ProteinAnalysis,
		LiteratureInsights:      sections.LiteratureInsights,
		DrugRecommendations:     drugRecommendations,
		TreatmentOptions:        treatmentOptions,
		RiskAssessment:          riskAssessment,
		ClinicalRecommendations: e.assembler.ClinicalRecommendations(analysis, riskAssessment),
		FollowUpRecommendations: e.assembler.FollowUpRecommendations(riskAssessment, treatmentOptions),
		Confidence:              e.assembler.Confidence(analysis, riskAssessment, drugRecommendations),
		GeneratedDate:           time.Now().UTC(),
		ReportVersion:           domain.ReportVersion,
	}, nil
}

// ExecuteResult is the decomposed view of a generated report, convenient for
// callers that consume the sub-results separately.
type ExecuteResult struct {
	MedicalReport       *domain.MedicalReport       `json:"medical_report"`
	RiskAssessment      domain.RiskAssessment       `json:"risk_assessment"`
	TreatmentOptions    []domain.TreatmentOption    `json:"treatment_options"`
	DrugRecommendations []domain.DrugRecommendation `json:"drug_recommendations"`
}

// Execute runs report generation and returns the report together with its
// risk, treatment, and drug sub-views.
func (e *DecisionEngine) Execute(ctx context.Context, analysis *domain.CombinedAnalysis,
	patientID string) ExecuteResult {

	report := e.GenerateReport(ctx, analysis, patientID)
	return ExecuteResult{
		MedicalReport:       report,
		RiskAssessment:      report.RiskAssessment,
		TreatmentOptions:    report.TreatmentOptions,
		DrugRecommendations: report.DrugRecommendations,
	}
}
