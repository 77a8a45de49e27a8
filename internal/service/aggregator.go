// Package service implements the clinical decision-synthesis engine: data
// aggregation, genetic risk assessment, drug recommendation ranking, treatment
// planning, narrative synthesis, and report assembly.
package service

import (
	"github.com/sirupsen/logrus"

	"github.com/biomerkin/decision-engine/internal/domain"
)

// GeneSummary is the flattened view of an analyzed gene.
type GeneSummary struct {
	Name       string  `json:"name"`
	Function   string  `json:"function"`
	Confidence float64 `json:"confidence"`
}

// MutationSummary is the flattened view of an identified variant.
type MutationSummary struct {
	Type         string `json:"type"`
	Position     int64  `json:"position"`
	Significance string `json:"significance"`
	Reference    string `json:"reference"`
	Alternate    string `json:"alternate"`
}

// ProteinFunctionSummary is the flattened view of a functional annotation.
type ProteinFunctionSummary struct {
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
	Source      string  `json:"source"`
}

// DrugCandidateSummary is the flattened view of a drug candidate.
type DrugCandidateSummary struct {
	Name          string  `json:"name"`
	Mechanism     string  `json:"mechanism"`
	TrialPhase    string  `json:"trial_phase"`
	Effectiveness float64 `json:"effectiveness"`
}

// GenomicsQuality carries per-domain quality counters for genomics.
type GenomicsQuality struct {
	GenesCount     int     `json:"genes_count"`
	MutationsCount int     `json:"mutations_count"`
	QualityScore   float64 `json:"quality_score"`
}

// ProteomicsQuality carries per-domain quality counters for proteomics.
type ProteomicsQuality struct {
	AnnotationsCount int `json:"annotations_count"`
	DomainsCount     int `json:"domains_count"`
}

// DrugQuality carries per-domain quality counters for drug discovery.
type DrugQuality struct {
	CandidatesCount int `json:"candidates_count"`
}

// LiteratureQuality carries per-domain quality counters for literature mining.
type LiteratureQuality struct {
	ArticlesAnalyzed int     `json:"articles_analyzed"`
	Confidence       float64 `json:"confidence"`
}

// AnalysisQuality groups the per-domain counters. A nil entry means the
// corresponding input source was absent.
type AnalysisQuality struct {
	Genomics   *GenomicsQuality   `json:"genomics,omitempty"`
	Proteomics *ProteomicsQuality `json:"proteomics,omitempty"`
	Drugs      *DrugQuality       `json:"drugs,omitempty"`
	Literature *LiteratureQuality `json:"literature,omitempty"`
}

// AggregatedAnalysis is the flat view of all present input sources. Absent
// sources contribute empty (non-nil) slices so downstream consumers never
// branch on nil.
type AggregatedAnalysis struct {
	GenesAnalyzed      []GeneSummary            `json:"genes_analyzed"`
	MutationsFound     []MutationSummary        `json:"mutations_found"`
	ProteinFunctions   []ProteinFunctionSummary `json:"protein_functions"`
	DrugCandidates     []DrugCandidateSummary   `json:"drug_candidates"`
	LiteratureFindings []string                 `json:"literature_findings"`
	Quality            AnalysisQuality          `json:"analysis_quality"`
}

// DataAggregator normalizes the four optional result-sets into the flat
// aggregate used by risk assessment, narrative synthesis, and assembly.
// The transformation is pure: no side effects, no retained state.
type DataAggregator struct {
	logger *logrus.Logger
}

// NewDataAggregator creates a new aggregator.
func NewDataAggregator(logger *logrus.Logger) *DataAggregator {
	return &DataAggregator{logger: logger}
}

// Aggregate flattens the combined analysis. Every absent sub-result yields an
// empty slice for its domain; aggregation never fails.
func (a *DataAggregator) Aggregate(analysis *domain.CombinedAnalysis) *AggregatedAnalysis {
	agg := &AggregatedAnalysis{
		GenesAnalyzed:      []GeneSummary{},
		MutationsFound:     []MutationSummary{},
		ProteinFunctions:   []ProteinFunctionSummary{},
		DrugCandidates:     []DrugCandidateSummary{},
		LiteratureFindings: []string{},
	}

	if analysis == nil {
		return agg
	}

	if genomics := analysis.GenomicsResults; genomics != nil {
		for _, gene := range genomics.Genes {
			agg.GenesAnalyzed = append(agg.GenesAnalyzed, GeneSummary{
				Name:       gene.Name,
				Function:   gene.Function,
				Confidence: gene.ConfidenceScore,
			})
		}
		for _, mutation := range genomics.Mutations {
			agg.MutationsFound = append(agg.MutationsFound, MutationSummary{
				Type:         mutation.MutationType.String(),
				Position:     mutation.Position,
				Significance: mutation.ClinicalSignificance,
				Reference:    mutation.ReferenceBase,
				Alternate:    mutation.AlternateBase,
			})
		}
		agg.Quality.Genomics = &GenomicsQuality{
			GenesCount:     len(genomics.Genes),
			MutationsCount: len(genomics.Mutations),
			QualityScore:   genomics.QualityMetrics.QualityScore,
		}
	}

	if proteomics := analysis.ProteomicsResults; proteomics != nil {
		for _, annotation := range proteomics.FunctionalAnnotations {
			agg.ProteinFunctions = append(agg.ProteinFunctions, ProteinFunctionSummary{
				Description: annotation.Description,
				Confidence:  annotation.ConfidenceScore,
				Source:      annotation.Source,
			})
		}
		agg.Quality.Proteomics = &ProteomicsQuality{
			AnnotationsCount: len(proteomics.FunctionalAnnotations),
			DomainsCount:     proteomics.DomainCount,
		}
	}

	if drugs := analysis.DrugResults; drugs != nil {
		for _, drug := range drugs.DrugCandidates {
			agg.DrugCandidates = append(agg.DrugCandidates, DrugCandidateSummary{
				Name:          drug.Name,
				Mechanism:     drug.MechanismOfAction,
				TrialPhase:    drug.TrialPhase,
				Effectiveness: drug.EffectivenessScore,
			})
		}
		agg.Quality.Drugs = &DrugQuality{
			CandidatesCount: len(drugs.DrugCandidates),
		}
	}

	if literature := analysis.LiteratureResults; literature != nil {
		agg.LiteratureFindings = append(agg.LiteratureFindings, literature.Summary.KeyFindings...)
		agg.Quality.Literature = &LiteratureQuality{
			ArticlesAnalyzed: literature.Summary.ArticlesAnalyzed,
			Confidence:       literature.Summary.ConfidenceLevel,
		}
	}

	if a.logger != nil {
		a.logger.WithFields(logrus.Fields{
			"genes":     len(agg.GenesAnalyzed),
			"mutations": len(agg.MutationsFound),
			"proteins":  len(agg.ProteinFunctions),
			"drugs":     len(agg.DrugCandidates),
			"findings":  len(agg.LiteratureFindings),
		}).Debug("Aggregated analysis data")
	}

	return agg
}
