package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biomerkin/decision-engine/internal/domain"
)

func TestDataAggregator_NilAnalysis(t *testing.T) {
	aggregator := NewDataAggregator(nil)

	agg := aggregator.Aggregate(nil)

	require.NotNil(t, agg)
	assert.NotNil(t, agg.GenesAnalyzed)
	assert.NotNil(t, agg.MutationsFound)
	assert.NotNil(t, agg.ProteinFunctions)
	assert.NotNil(t, agg.DrugCandidates)
	assert.NotNil(t, agg.LiteratureFindings)
	assert.Empty(t, agg.GenesAnalyzed)
	assert.Nil(t, agg.Quality.Genomics)
	assert.Nil(t, agg.Quality.Proteomics)
	assert.Nil(t, agg.Quality.Drugs)
	assert.Nil(t, agg.Quality.Literature)
}

func TestDataAggregator_AbsentSourcesYieldEmptySlices(t *testing.T) {
	aggregator := NewDataAggregator(nil)

	agg := aggregator.Aggregate(&domain.CombinedAnalysis{})

	assert.Empty(t, agg.GenesAnalyzed)
	assert.Empty(t, agg.MutationsFound)
	assert.Empty(t, agg.ProteinFunctions)
	assert.Empty(t, agg.DrugCandidates)
	assert.Empty(t, agg.LiteratureFindings)
}

func TestDataAggregator_FlattensAllSources(t *testing.T) {
	aggregator := NewDataAggregator(nil)

	agg := aggregator.Aggregate(&domain.CombinedAnalysis{
		GenomicsResults: &domain.GenomicsResults{
			Genes: []domain.Gene{
				{ID: "G1", Name: "BRCA1", Function: "tumor suppressor", ConfidenceScore: 0.95},
			},
			Mutations: []domain.Mutation{
				{GeneID: "G1", Position: 101, ReferenceBase: "A", AlternateBase: "T",
					MutationType: domain.SNP, ClinicalSignificance: "Pathogenic"},
			},
			QualityMetrics: domain.QualityMetrics{QualityScore: 0.9},
		},
		ProteomicsResults: &domain.ProteomicsResults{
			FunctionalAnnotations: []domain.FunctionAnnotation{
				{Description: "DNA repair", ConfidenceScore: 0.8, Source: "UniProt"},
			},
			DomainCount: 3,
		},
		LiteratureResults: &domain.LiteratureResults{
			Summary: domain.LiteratureSummary{
				KeyFindings:      []string{"finding one", "finding two"},
				ArticlesAnalyzed: 10,
				ConfidenceLevel:  0.75,
			},
		},
		DrugResults: &domain.DrugResults{
			DrugCandidates: []domain.DrugCandidate{
				{DrugID: "D1", Name: "Olaparib", MechanismOfAction: "PARP inhibitor",
					EffectivenessScore: 0.85, TrialPhase: "Phase III"},
			},
		},
	})

	require.Len(t, agg.GenesAnalyzed, 1)
	assert.Equal(t, GeneSummary{Name: "BRCA1", Function: "tumor suppressor", Confidence: 0.95}, agg.GenesAnalyzed[0])

	require.Len(t, agg.MutationsFound, 1)
	assert.Equal(t, MutationSummary{
		Type:         "single_nucleotide_polymorphism",
		Position:     101,
		Significance: "Pathogenic",
		Reference:    "A",
		Alternate:    "T",
	}, agg.MutationsFound[0])

	require.Len(t, agg.ProteinFunctions, 1)
	assert.Equal(t, "UniProt", agg.ProteinFunctions[0].Source)

	require.Len(t, agg.DrugCandidates, 1)
	assert.Equal(t, "PARP inhibitor", agg.DrugCandidates[0].Mechanism)

	assert.Equal(t, []string{"finding one", "finding two"}, agg.LiteratureFindings)

	require.NotNil(t, agg.Quality.Genomics)
	assert.Equal(t, 1, agg.Quality.Genomics.GenesCount)
	assert.Equal(t, 1, agg.Quality.Genomics.MutationsCount)
	assert.Equal(t, 0.9, agg.Quality.Genomics.QualityScore)

	require.NotNil(t, agg.Quality.Proteomics)
	assert.Equal(t, 1, agg.Quality.Proteomics.AnnotationsCount)
	assert.Equal(t, 3, agg.Quality.Proteomics.DomainsCount)

	require.NotNil(t, agg.Quality.Drugs)
	assert.Equal(t, 1, agg.Quality.Drugs.CandidatesCount)

	require.NotNil(t, agg.Quality.Literature)
	assert.Equal(t, 10, agg.Quality.Literature.ArticlesAnalyzed)
	assert.Equal(t, 0.75, agg.Quality.Literature.Confidence)
}
