package domain

import (
	"errors"
	"fmt"
)

// Gene represents a gene identified by upstream genomic analysis.
type Gene struct {
	ID              string   `json:"id" validate:"required"`
	Name            string   `json:"name" validate:"required"`
	Function        string   `json:"function"`
	ConfidenceScore float64  `json:"confidence_score" validate:"min=0,max=1"`
	Synonyms        []string `json:"synonyms,omitempty"`
}

// Validate ensures gene data meets the engine's integrity requirements.
func (g *Gene) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("gene validation: %w", errors.New("ID is required"))
	}
	if g.Name == "" {
		return fmt.Errorf("gene validation: %w", errors.New("name is required"))
	}
	if err := ValidateConfidence(g.ConfidenceScore); err != nil {
		return fmt.Errorf("gene validation: %w", err)
	}
	return nil
}

// Mutation represents a single genetic variant. GeneID may be empty or
// unresolvable; consumers must treat that as "unknown gene", not an error.
type Mutation struct {
	GeneID               string       `json:"gene_id,omitempty"`
	Position             int64        `json:"position"`
	ReferenceBase        string       `json:"reference_base"`
	AlternateBase        string       `json:"alternate_base"`
	MutationType         MutationType `json:"mutation_type"`
	ClinicalSignificance string       `json:"clinical_significance"`
}

// GeneticBasis returns the position/allele description used in risk factors.
func (m *Mutation) GeneticBasis() string {
	return fmt.Sprintf("Position %d: %s>%s", m.Position, m.ReferenceBase, m.AlternateBase)
}

// FunctionAnnotation represents one protein functional annotation.
type FunctionAnnotation struct {
	Description     string  `json:"description"`
	ConfidenceScore float64 `json:"confidence_score"`
	Source          string  `json:"source"`
}

// SideEffect represents a known drug side effect.
type SideEffect struct {
	Name      string `json:"name"`
	Severity  string `json:"severity"`            // mild, moderate, severe
	Frequency string `json:"frequency,omitempty"` // common, uncommon, rare
}

// DrugCandidate represents a potential therapeutic compound. A missing
// effectiveness score is treated as 0 for ranking purposes.
type DrugCandidate struct {
	DrugID             string       `json:"drug_id"`
	Name               string       `json:"name"`
	MechanismOfAction  string       `json:"mechanism_of_action"`
	EffectivenessScore float64      `json:"effectiveness_score"`
	SideEffects        []SideEffect `json:"side_effects,omitempty"`
	TrialPhase         string       `json:"trial_phase,omitempty"`
}

// QualityMetrics carries the quality summary of an upstream analysis run.
type QualityMetrics struct {
	QualityScore    float64 `json:"quality_score"`
	CoverageDepth   float64 `json:"coverage_depth,omitempty"`
	ConfidenceLevel float64 `json:"confidence_level,omitempty"`
}

// GenomicsResults holds the output of the genomics analysis stage.
type GenomicsResults struct {
	Genes          []Gene         `json:"genes"`
	Mutations      []Mutation     `json:"mutations"`
	QualityMetrics QualityMetrics `json:"quality_metrics"`
}

// ProteomicsResults holds the output of the proteomics analysis stage.
type ProteomicsResults struct {
	FunctionalAnnotations []FunctionAnnotation `json:"functional_annotations"`
	DomainCount           int                  `json:"domain_count,omitempty"`
}

// LiteratureSummary condenses the literature-mining stage.
type LiteratureSummary struct {
	KeyFindings      []string `json:"key_findings"`
	ArticlesAnalyzed int      `json:"articles_analyzed"`
	ConfidenceLevel  float64  `json:"confidence_level"`
}

// LiteratureResults holds the output of the literature analysis stage.
type LiteratureResults struct {
	Summary LiteratureSummary `json:"summary"`
}

// DrugResults holds the output of the drug discovery stage.
type DrugResults struct {
	DrugCandidates []DrugCandidate `json:"drug_candidates"`
	TargetGenes    []string        `json:"target_genes,omitempty"`
}

// CombinedAnalysis is the engine's input: the four upstream result-sets, each
// of which may be absent. Absence is expressed as a nil pointer and every
// consumer handles it explicitly — a missing sub-result is a degraded input,
// never an error.
type CombinedAnalysis struct {
	PatientID         string             `json:"patient_id,omitempty"`
	GenomicsResults   *GenomicsResults   `json:"genomics_results,omitempty"`
	ProteomicsResults *ProteomicsResults `json:"proteomics_results,omitempty"`
	LiteratureResults *LiteratureResults `json:"literature_results,omitempty"`
	DrugResults       *DrugResults       `json:"drug_results,omitempty"`
}

// HasGenomics reports whether genomic data is present.
func (c *CombinedAnalysis) HasGenomics() bool {
	return c.GenomicsResults != nil
}

// HasDrugCandidates reports whether at least one drug candidate is present.
func (c *CombinedAnalysis) HasDrugCandidates() bool {
	return c.DrugResults != nil && len(c.DrugResults.DrugCandidates) > 0
}

// ResolveGeneName looks up a mutation's gene by id within the genomics
// result-set. An unresolvable or empty gene id yields "Unknown gene".
func (g *GenomicsResults) ResolveGeneName(geneID string) string {
	if geneID != "" {
		for i := range g.Genes {
			if g.Genes[i].ID == geneID {
				return g.Genes[i].Name
			}
		}
	}
	return "Unknown gene"
}
