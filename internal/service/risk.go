package service

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/biomerkin/decision-engine/internal/domain"
)

var (
	cancerFunctionTerms    = []string{"tumor suppressor", "oncogene", "cancer", "carcinogen"}
	metabolicFunctionTerms = []string{"metabolic", "enzyme", "metabolism"}
)

// geneFunctionConfidenceFloor gates gene-function risk factors: annotations at
// or below this confidence are ignored.
const geneFunctionConfidenceFloor = 0.7

// RiskAssessor derives a risk assessment from genomic and proteomic results.
// Proteomic results are accepted for interface symmetry but do not currently
// influence the assessment.
type RiskAssessor struct {
	logger *logrus.Logger
}

// NewRiskAssessor creates a new risk assessor.
func NewRiskAssessor(logger *logrus.Logger) *RiskAssessor {
	return &RiskAssessor{logger: logger}
}

// Assess evaluates genetic risk. Absent genomics yields the minimal-confidence
// low-risk assessment with no risk factors.
func (r *RiskAssessor) Assess(genomics *domain.GenomicsResults, proteomics *domain.ProteomicsResults) domain.RiskAssessment {
	if genomics == nil {
		return domain.RiskAssessment{
			OverallRiskLevel:  domain.LOW,
			RiskFactors:       []domain.RiskFactor{},
			ProtectiveFactors: []string{"No genetic data available for risk assessment"},
			Recommendations:   []string{"Genetic testing recommended for comprehensive risk assessment"},
			ConfidenceScore:   0.1,
		}
	}

	riskFactors := []domain.RiskFactor{}
	protectiveFactors := []string{}

	pathogenicMutations := 0
	benignMutations := 0

	for _, mutation := range genomics.Mutations {
		switch domain.ClassifySignificance(mutation.ClinicalSignificance) {
		case domain.SIGNIFICANCE_PATHOGENIC:
			pathogenicMutations++
			riskFactors = append(riskFactors, domain.RiskFactor{
				FactorName: fmt.Sprintf("Pathogenic mutation in %s", genomics.ResolveGeneName(mutation.GeneID)),
				RiskLevel:  domain.HIGH,
				Description: fmt.Sprintf("%s mutation with clinical significance: %s",
					mutation.MutationType.String(), mutation.ClinicalSignificance),
				GeneticBasis: mutation.GeneticBasis(),
			})
		case domain.SIGNIFICANCE_BENIGN:
			benignMutations++
			protectiveFactors = append(protectiveFactors, "Benign variant identified (no increased risk)")
		case domain.SIGNIFICANCE_UNCERTAIN:
			riskFactors = append(riskFactors, domain.RiskFactor{
				FactorName:   "Variant of uncertain significance",
				RiskLevel:    domain.MODERATE,
				Description:  fmt.Sprintf("Mutation requires further investigation: %s", mutation.ClinicalSignificance),
				GeneticBasis: mutation.GeneticBasis(),
			})
		}
	}

	for _, gene := range genomics.Genes {
		if gene.Function == "" || gene.ConfidenceScore <= geneFunctionConfidenceFloor {
			continue
		}
		function := strings.ToLower(gene.Function)

		switch {
		case containsAnyTerm(function, cancerFunctionTerms):
			riskFactors = append(riskFactors, domain.RiskFactor{
				FactorName:   fmt.Sprintf("Cancer-associated gene: %s", gene.Name),
				RiskLevel:    domain.MODERATE,
				Description:  fmt.Sprintf("Gene function: %s", gene.Function),
				GeneticBasis: fmt.Sprintf("Gene ID: %s", gene.ID),
			})
		case containsAnyTerm(function, metabolicFunctionTerms):
			riskFactors = append(riskFactors, domain.RiskFactor{
				FactorName:   fmt.Sprintf("Metabolic pathway gene: %s", gene.Name),
				RiskLevel:    domain.LOW,
				Description:  fmt.Sprintf("May affect drug metabolism: %s", gene.Function),
				GeneticBasis: fmt.Sprintf("Gene ID: %s", gene.ID),
			})
		}
	}

	var overallRisk domain.RiskLevel
	var confidenceScore float64
	switch {
	case pathogenicMutations > 0:
		overallRisk = domain.HIGH
		confidenceScore = 0.8
	case len(riskFactors) > 2:
		overallRisk = domain.MODERATE
		confidenceScore = 0.6
	case len(riskFactors) > 0:
		overallRisk = domain.LOW
		confidenceScore = 0.7
	default:
		overallRisk = domain.LOW
		confidenceScore = 0.5
	}

	recommendations := riskRecommendations(overallRisk)

	if len(riskFactors) == 0 && benignMutations > 0 {
		protectiveFactors = append(protectiveFactors,
			fmt.Sprintf("Multiple benign variants identified (%d variants)", benignMutations))
	}

	if r.logger != nil {
		r.logger.WithFields(logrus.Fields(overallRisk.LogFields())).WithFields(logrus.Fields{
			"risk_factors":         len(riskFactors),
			"pathogenic_mutations": pathogenicMutations,
			"confidence":           confidenceScore,
		}).Info("Genetic risk assessment completed")
	}

	return domain.RiskAssessment{
		OverallRiskLevel:  overallRisk,
		RiskFactors:       riskFactors,
		ProtectiveFactors: protectiveFactors,
		Recommendations:   recommendations,
		ConfidenceScore:   confidenceScore,
	}
}

func riskRecommendations(level domain.RiskLevel) []string {
	switch level {
	case domain.HIGH, domain.CRITICAL:
		return []string{
			"Immediate genetic counseling recommended",
			"Consider preventive screening protocols",
			"Family history assessment advised",
			"Regular monitoring with specialist care",
		}
	case domain.MODERATE:
		return []string{
			"Genetic counseling may be beneficial",
			"Enhanced screening protocols recommended",
			"Lifestyle modifications to reduce risk",
		}
	default:
		return []string{
			"Standard screening protocols appropriate",
			"Maintain healthy lifestyle practices",
		}
	}
}

func containsAnyTerm(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
