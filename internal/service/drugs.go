package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/biomerkin/decision-engine/internal/domain"
)

var dosageMetabolicTerms = []string{"metabol", "enzyme", "cyp"}

const (
	maxDrugRecommendations  = 5
	maxMonitoringSideEffect = 3
	maxAlternatives         = 3
)

// DrugRecommender ranks drug candidates by effectiveness and turns the top
// candidates into dosage-annotated recommendations. With no candidates it
// returns the single standard-guidelines placeholder.
type DrugRecommender struct {
	logger *logrus.Logger
	limit  int
}

// NewDrugRecommender creates a recommender. A non-positive limit falls back
// to the default of five recommendations.
func NewDrugRecommender(logger *logrus.Logger, limit int) *DrugRecommender {
	if limit <= 0 {
		limit = maxDrugRecommendations
	}
	return &DrugRecommender{logger: logger, limit: limit}
}

// Recommend produces at most limit recommendations in descending
// effectiveness order. The risk assessment is accepted for call-site symmetry
// with treatment planning and does not currently alter the output.
func (d *DrugRecommender) Recommend(drugs *domain.DrugResults, genomics *domain.GenomicsResults,
	risk domain.RiskAssessment) []domain.DrugRecommendation {

	if drugs == nil || len(drugs.DrugCandidates) == 0 {
		return []domain.DrugRecommendation{placeholderRecommendation()}
	}

	sorted := make([]domain.DrugCandidate, len(drugs.DrugCandidates))
	copy(sorted, drugs.DrugCandidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EffectivenessScore > sorted[j].EffectivenessScore
	})

	limit := d.limit
	if limit > len(sorted) {
		limit = len(sorted)
	}

	recommendations := make([]domain.DrugRecommendation, 0, limit)
	for _, drug := range sorted[:limit] {
		recommendations = append(recommendations, d.buildRecommendation(drug, sorted, genomics))
	}

	if d.logger != nil {
		d.logger.WithFields(logrus.Fields{
			"candidates":      len(drugs.DrugCandidates),
			"recommendations": len(recommendations),
		}).Info("Drug recommendations generated")
	}

	return recommendations
}

func (d *DrugRecommender) buildRecommendation(drug domain.DrugCandidate, sorted []domain.DrugCandidate,
	genomics *domain.GenomicsResults) domain.DrugRecommendation {

	rationaleParts := []string{}
	if drug.MechanismOfAction != "" {
		rationaleParts = append(rationaleParts, fmt.Sprintf("Mechanism: %s", drug.MechanismOfAction))
	}
	if drug.EffectivenessScore > 0 {
		rationaleParts = append(rationaleParts, fmt.Sprintf("Effectiveness score: %.2f", drug.EffectivenessScore))
	}
	if drug.TrialPhase != "" {
		rationaleParts = append(rationaleParts, fmt.Sprintf("Clinical trial phase: %s", drug.TrialPhase))
	}
	rationale := "Based on genetic profile analysis"
	if len(rationaleParts) > 0 {
		rationale = strings.Join(rationaleParts, "; ")
	}

	var expectedBenefit string
	switch {
	case drug.EffectivenessScore > 0.7:
		expectedBenefit = "High potential therapeutic benefit"
	case drug.EffectivenessScore > 0.5:
		expectedBenefit = "Moderate potential therapeutic benefit"
	default:
		expectedBenefit = "Potential therapeutic benefit requires further evaluation"
	}

	monitoring := []string{"Standard drug monitoring protocols"}
	for i, effect := range drug.SideEffects {
		if i >= maxMonitoringSideEffect {
			break
		}
		monitoring = append(monitoring, fmt.Sprintf("Monitor for %s", effect.Name))
	}
	if genomics != nil {
		for _, gene := range genomics.Genes {
			if gene.Function != "" && strings.Contains(strings.ToLower(gene.Function), "metabol") {
				monitoring = append(monitoring, "Enhanced pharmacokinetic monitoring due to metabolic gene variants")
				break
			}
		}
	}

	var alternatives []string
	if len(sorted) > 1 {
		for _, other := range sorted {
			if other.DrugID == drug.DrugID {
				continue
			}
			alternatives = append(alternatives, other.Name)
			if len(alternatives) == maxAlternatives {
				break
			}
		}
	}

	return domain.DrugRecommendation{
		DrugName:             drug.Name,
		DrugID:               drug.DrugID,
		DosageRecommendation: d.DetermineDosage(drug, genomics),
		Rationale:            rationale,
		ExpectedBenefit:      expectedBenefit,
		MonitoringParameters: monitoring,
		Duration:             "As determined by treating physician",
		Alternatives:         alternatives,
	}
}

// DetermineDosage adjusts the standard dosing guidance when metabolic gene
// variants are present: pathogenic metabolic mutations reduce the dose,
// non-pathogenic ones add monitoring.
func (d *DrugRecommender) DetermineDosage(drug domain.DrugCandidate, genomics *domain.GenomicsResults) string {
	const base = "Standard dosing as per clinical guidelines"

	if genomics == nil {
		return base
	}

	metabolicGeneIDs := map[string]bool{}
	for _, gene := range genomics.Genes {
		if gene.Function == "" {
			continue
		}
		if containsAnyTerm(strings.ToLower(gene.Function), dosageMetabolicTerms) {
			metabolicGeneIDs[gene.ID] = true
		}
	}
	if len(metabolicGeneIDs) == 0 {
		return base
	}

	hasMetabolicMutation := false
	hasPathogenicMetabolic := false
	for _, mutation := range genomics.Mutations {
		if !metabolicGeneIDs[mutation.GeneID] {
			continue
		}
		hasMetabolicMutation = true
		if strings.Contains(strings.ToLower(mutation.ClinicalSignificance), "pathogenic") {
			hasPathogenicMetabolic = true
		}
	}

	switch {
	case hasPathogenicMetabolic:
		return "Reduced dosing recommended due to metabolic gene variants - consult pharmacogenomics specialist"
	case hasMetabolicMutation:
		return "Standard dosing with enhanced monitoring due to metabolic gene variants"
	default:
		return base
	}
}

func placeholderRecommendation() domain.DrugRecommendation {
	return domain.DrugRecommendation{
		DrugName:             "No specific drugs identified",
		DrugID:               "N/A",
		DosageRecommendation: "Standard protocols apply",
		Rationale:            "Insufficient data for specific drug recommendations",
		ExpectedBenefit:      "Follow standard treatment guidelines",
		MonitoringParameters: []string{"Standard monitoring protocols"},
		Duration:             "As per standard guidelines",
		Alternatives:         []string{"Consult with specialist for treatment options"},
	}
}
