package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biomerkin/decision-engine/internal/domain"
)

func newTestEngine(generator domain.TextGenerator) *DecisionEngine {
	return NewDecisionEngine(nil, domain.EngineConfig{}, generator)
}

func brca1Analysis() *domain.CombinedAnalysis {
	return &domain.CombinedAnalysis{
		GenomicsResults: &domain.GenomicsResults{
			Genes: []domain.Gene{
				{ID: "GENE_001", Name: "BRCA1", Function: "tumor suppressor involved in DNA repair", ConfidenceScore: 0.95},
			},
			Mutations: []domain.Mutation{
				{
					GeneID:               "GENE_001",
					Position:             43045712,
					ReferenceBase:        "A",
					AlternateBase:        "G",
					MutationType:         domain.SNP,
					ClinicalSignificance: "Pathogenic",
				},
			},
			QualityMetrics: domain.QualityMetrics{QualityScore: 0.92},
		},
	}
}

func TestDecisionEngine_PathogenicBRCA1(t *testing.T) {
	engine := newTestEngine(nil)

	report := engine.GenerateReport(context.Background(), brca1Analysis(), "PAT_TEST01")

	require.NotNil(t, report)
	assert.False(t, report.IsErrorReport())
	assert.Equal(t, "PAT_TEST01", report.PatientID)
	assert.True(t, strings.HasPrefix(report.ReportID, "RPT_"))
	assert.Equal(t, domain.ReportVersion, report.ReportVersion)

	assert.Equal(t, domain.HIGH, report.RiskAssessment.OverallRiskLevel)
	assert.Equal(t, 0.8, report.RiskAssessment.ConfidenceScore)
	assert.GreaterOrEqual(t, len(report.RiskAssessment.RiskFactors), 2)

	counseling := report.TreatmentsOfType(domain.GENETIC_COUNSELING)
	require.Len(t, counseling, 1)
	assert.Equal(t, "GEN_001", counseling[0].TreatmentID)

	preventive := report.TreatmentsOfType(domain.PREVENTIVE)
	require.Len(t, preventive, 1)
	assert.Equal(t, "PRV_001", preventive[0].TreatmentID)

	assert.Contains(t, report.ClinicalRecommendations,
		"Immediate referral to genetic counselor for comprehensive risk assessment")
	assert.Contains(t, report.FollowUpRecommendations,
		"Follow-up appointment in 3-6 months to assess treatment response")

	assert.Equal(t, 0.8, report.Confidence.OverallConfidence)
	assert.Equal(t, 0.25, report.Confidence.DataCompleteness)
}

func TestDecisionEngine_EmptyAnalysis(t *testing.T) {
	engine := newTestEngine(nil)

	report := engine.GenerateReport(context.Background(), &domain.CombinedAnalysis{}, "")

	require.NotNil(t, report)
	assert.False(t, report.IsErrorReport())
	assert.True(t, strings.HasPrefix(report.PatientID, "PAT_"))

	assert.Equal(t, domain.LOW, report.RiskAssessment.OverallRiskLevel)
	assert.Equal(t, 0.1, report.RiskAssessment.ConfidenceScore)
	assert.Empty(t, report.RiskAssessment.RiskFactors)

	require.Len(t, report.DrugRecommendations, 1)
	assert.Equal(t, "No specific drugs identified", report.DrugRecommendations[0].DrugName)

	require.Len(t, report.TreatmentOptions, 2)
	assert.Equal(t, "LIF_001", report.TreatmentOptions[0].TreatmentID)
	assert.Equal(t, "MON_001", report.TreatmentOptions[1].TreatmentID)

	assert.NotEmpty(t, report.AnalysisSummary)
	assert.NotEmpty(t, report.GeneticFindings)
	assert.NotEmpty(t, report.ProteinAnalysis)
	assert.NotEmpty(t, report.LiteratureInsights)
}

func TestDecisionEngine_NilAnalysis(t *testing.T) {
	engine := newTestEngine(nil)

	report := engine.GenerateReport(context.Background(), nil, "")

	require.NotNil(t, report)
	assert.False(t, report.IsErrorReport())
	assert.Equal(t, domain.LOW, report.RiskAssessment.OverallRiskLevel)
	require.Len(t, report.DrugRecommendations, 1)
	require.Len(t, report.TreatmentOptions, 2)
}

func TestDecisionEngine_InjectedFailureYieldsErrorReport(t *testing.T) {
	engine := newTestEngine(panicGenerator{})

	report := engine.GenerateReport(context.Background(), brca1Analysis(), "PAT_ERR01")

	require.NotNil(t, report)
	assert.True(t, report.IsErrorReport())
	assert.Equal(t, "PAT_ERR01", report.PatientID)
	assert.True(t, strings.HasPrefix(report.ReportID, "ERR_"))

	assert.Contains(t, report.AnalysisSummary, "Error occurred during report generation:")
	assert.Contains(t, report.AnalysisSummary, "text generation backend exploded")
	assert.Equal(t, "Unable to generate genetic findings due to processing error", report.GeneticFindings)
	assert.Equal(t, "Unable to generate protein analysis due to processing error", report.ProteinAnalysis)
	assert.Equal(t, "Unable to generate literature insights due to processing error", report.LiteratureInsights)

	assert.Equal(t, 0.0, report.RiskAssessment.ConfidenceScore)
	assert.Equal(t, domain.LOW, report.RiskAssessment.OverallRiskLevel)
	assert.Empty(t, report.DrugRecommendations)
	assert.Empty(t, report.TreatmentOptions)
	assert.Equal(t, []string{"Manual review recommended due to processing error"}, report.RiskAssessment.Recommendations)
	assert.Equal(t, []string{"Manual review and analysis recommended"}, report.ClinicalRecommendations)
	assert.Equal(t, []string{"Contact genetics specialist for comprehensive evaluation"}, report.FollowUpRecommendations)
	assert.Equal(t, 0.0, report.Confidence.OverallConfidence)
}

func TestDecisionEngine_Idempotence(t *testing.T) {
	engine := newTestEngine(nil)
	analysis := brca1Analysis()
	analysis.DrugResults = &domain.DrugResults{
		DrugCandidates: []domain.DrugCandidate{
			{DrugID: "D1", Name: "Olaparib", MechanismOfAction: "PARP inhibitor", EffectivenessScore: 0.85, TrialPhase: "Phase III"},
			{DrugID: "D2", Name: "Talazoparib", MechanismOfAction: "PARP inhibitor", EffectivenessScore: 0.85, TrialPhase: "Phase III"},
			{DrugID: "D3", Name: "Carboplatin", MechanismOfAction: "DNA crosslinker", EffectivenessScore: 0.6},
		},
	}

	first := engine.GenerateReport(context.Background(), analysis, "PAT_SAME")
	second := engine.GenerateReport(context.Background(), analysis, "PAT_SAME")

	// Identifiers and timestamps differ per run; everything else must not.
	second.ReportID = first.ReportID
	second.GeneratedDate = first.GeneratedDate
	assert.Equal(t, first, second)
}

func TestDecisionEngine_TieBreakPreservesInputOrder(t *testing.T) {
	engine := newTestEngine(nil)
	analysis := &domain.CombinedAnalysis{
		DrugResults: &domain.DrugResults{
			DrugCandidates: []domain.DrugCandidate{
				{DrugID: "D1", Name: "First", EffectivenessScore: 0.7},
				{DrugID: "D2", Name: "Second", EffectivenessScore: 0.7},
				{DrugID: "D3", Name: "Third", EffectivenessScore: 0.7},
			},
		},
	}

	report := engine.GenerateReport(context.Background(), analysis, "PAT_TIE")

	require.Len(t, report.DrugRecommendations, 3)
	assert.Equal(t, "First", report.DrugRecommendations[0].DrugName)
	assert.Equal(t, "Second", report.DrugRecommendations[1].DrugName)
	assert.Equal(t, "Third", report.DrugRecommendations[2].DrugName)
}

func TestDecisionEngine_DrugRelatedRecommendations(t *testing.T) {
	engine := newTestEngine(nil)
	analysis := &domain.CombinedAnalysis{
		DrugResults: &domain.DrugResults{
			DrugCandidates: []domain.DrugCandidate{
				{DrugID: "D1", Name: "Alpha", EffectivenessScore: 0.8},
				{DrugID: "D2", Name: "Beta", EffectivenessScore: 0.7},
			},
		},
		LiteratureResults: &domain.LiteratureResults{
			Summary: domain.LiteratureSummary{ConfidenceLevel: 0.9},
		},
	}

	report := engine.GenerateReport(context.Background(), analysis, "")

	assert.Contains(t, report.ClinicalRecommendations,
		"Pharmacogenomic testing results should guide medication selection and dosing")
	assert.Contains(t, report.ClinicalRecommendations,
		"Monitor for potential drug-drug interactions with multiple therapeutic options")
	assert.Contains(t, report.ClinicalRecommendations,
		"Strong literature support for genetic findings - follow evidence-based guidelines")
	assert.Contains(t, report.FollowUpRecommendations,
		"Regular monitoring for medication efficacy and side effects")

	assert.Equal(t, "High", report.Confidence.ClinicalActionability)
	assert.Equal(t, 0.5, report.Confidence.DataCompleteness)
}

func TestDecisionEngine_PatientIDFromAnalysis(t *testing.T) {
	engine := newTestEngine(nil)
	analysis := &domain.CombinedAnalysis{PatientID: "PAT_FROM_INPUT"}

	report := engine.GenerateReport(context.Background(), analysis, "")

	assert.Equal(t, "PAT_FROM_INPUT", report.PatientID)
}

func TestDecisionEngine_Execute(t *testing.T) {
	engine := newTestEngine(nil)

	result := engine.Execute(context.Background(), brca1Analysis(), "PAT_EXEC")

	require.NotNil(t, result.MedicalReport)
	assert.Equal(t, result.MedicalReport.RiskAssessment, result.RiskAssessment)
	assert.Equal(t, result.MedicalReport.TreatmentOptions, result.TreatmentOptions)
	assert.Equal(t, result.MedicalReport.DrugRecommendations, result.DrugRecommendations)
}

func TestDecisionEngine_GeneratedNarrativeUsed(t *testing.T) {
	generator := &stubGenerator{text: "LLM narrative", ok: true}
	engine := newTestEngine(generator)

	report := engine.GenerateReport(context.Background(), brca1Analysis(), "")

	assert.Equal(t, "LLM narrative", report.AnalysisSummary)
	assert.Equal(t, "LLM narrative", report.GeneticFindings)
	assert.Equal(t, 4, generator.calls)
}
