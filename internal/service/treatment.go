package service

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/biomerkin/decision-engine/internal/domain"
)

const (
	maxMedicationOptions       = 3
	defaultEffectivenessRating = 0.5
	maxContraindicationEntries = 3
)

// TreatmentPlanner builds the treatment option list in a fixed order:
// medication options first, then conditional genetic counseling and
// preventive screening, with lifestyle and monitoring options always last.
type TreatmentPlanner struct {
	logger *logrus.Logger
	limit  int
}

// NewTreatmentPlanner creates a planner. A non-positive limit falls back to
// the default of three medication options.
func NewTreatmentPlanner(logger *logrus.Logger, limit int) *TreatmentPlanner {
	if limit <= 0 {
		limit = maxMedicationOptions
	}
	return &TreatmentPlanner{logger: logger, limit: limit}
}

// Plan derives treatment options from the combined analysis and the risk
// assessment. The returned list always ends with exactly one lifestyle and
// one monitoring option, in that order.
func (t *TreatmentPlanner) Plan(analysis *domain.CombinedAnalysis, risk domain.RiskAssessment) []domain.TreatmentOption {
	options := []domain.TreatmentOption{}

	if analysis != nil && analysis.HasDrugCandidates() {
		options = append(options, t.medicationOptions(analysis.DrugResults.DrugCandidates)...)
	}

	if risk.OverallRiskLevel.RequiresEscalation() {
		options = append(options, domain.TreatmentOption{
			TreatmentID:            "GEN_001",
			Name:                   "Genetic Counseling",
			TreatmentType:          domain.GENETIC_COUNSELING,
			Description:            "Professional genetic counseling to discuss implications of genetic findings",
			EffectivenessRating:    0.9,
			EvidenceLevel:          domain.EVIDENCE_A,
			Contraindications:      []string{},
			MonitoringRequirements: []string{"Follow-up counseling sessions as needed"},
		})
	}

	if risk.OverallRiskLevel == domain.HIGH || risk.OverallRiskLevel == domain.CRITICAL {
		options = append(options, domain.TreatmentOption{
			TreatmentID:            "PRV_001",
			Name:                   "Enhanced Preventive Screening",
			TreatmentType:          domain.PREVENTIVE,
			Description:            "Intensive screening and preventive measures based on genetic risk factors",
			EffectivenessRating:    0.8,
			EvidenceLevel:          domain.EVIDENCE_A,
			Contraindications:      []string{},
			MonitoringRequirements: []string{"Regular screening intervals", "Specialist consultations"},
		})
	}

	options = append(options,
		domain.TreatmentOption{
			TreatmentID:            "LIF_001",
			Name:                   "Lifestyle Modifications",
			TreatmentType:          domain.LIFESTYLE,
			Description:            "Targeted lifestyle interventions based on genetic predispositions",
			EffectivenessRating:    0.7,
			EvidenceLevel:          domain.EVIDENCE_B,
			Contraindications:      []string{},
			MonitoringRequirements: []string{"Regular lifestyle assessment", "Progress monitoring"},
		},
		domain.TreatmentOption{
			TreatmentID:            "MON_001",
			Name:                   "Genetic-Based Monitoring Protocol",
			TreatmentType:          domain.MONITORING,
			Description:            "Customized monitoring protocol based on genetic risk profile",
			EffectivenessRating:    0.8,
			EvidenceLevel:          domain.EVIDENCE_B,
			Contraindications:      []string{},
			MonitoringRequirements: []string{"Regular biomarker assessment", "Clinical evaluations"},
		},
	)

	if t.logger != nil {
		t.logger.WithFields(logrus.Fields{
			"options":      len(options),
			"overall_risk": risk.OverallRiskLevel.String(),
		}).Info("Treatment options generated")
	}

	return options
}

func (t *TreatmentPlanner) medicationOptions(candidates []domain.DrugCandidate) []domain.TreatmentOption {
	sorted := make([]domain.DrugCandidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EffectivenessScore > sorted[j].EffectivenessScore
	})

	limit := t.limit
	if limit > len(sorted) {
		limit = len(sorted)
	}

	options := make([]domain.TreatmentOption, 0, limit)
	for i, drug := range sorted[:limit] {
		rating := drug.EffectivenessScore
		if rating == 0 {
			rating = defaultEffectivenessRating
		}

		contraindications := []string{}
		for j, effect := range drug.SideEffects {
			if j >= maxContraindicationEntries {
				break
			}
			contraindications = append(contraindications, effect.Name)
		}

		options = append(options, domain.TreatmentOption{
			TreatmentID:            fmt.Sprintf("MED_%03d", i+1),
			Name:                   fmt.Sprintf("Pharmacological therapy with %s", drug.Name),
			TreatmentType:          domain.MEDICATION,
			Description:            fmt.Sprintf("Treatment with %s based on genetic profile analysis", drug.Name),
			EffectivenessRating:    rating,
			EvidenceLevel:          medicationEvidenceLevel(drug.TrialPhase),
			Contraindications:      contraindications,
			MonitoringRequirements: []string{"Regular clinical assessment", "Laboratory monitoring as indicated"},
		})
	}
	return options
}

func medicationEvidenceLevel(trialPhase string) domain.EvidenceLevel {
	if trialPhase == "Phase III" || trialPhase == "Phase IV" {
		return domain.EVIDENCE_B
	}
	return domain.EVIDENCE_C
}
