package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biomerkin/decision-engine/internal/domain"
)

func TestDrugRecommender_NoCandidates(t *testing.T) {
	recommender := NewDrugRecommender(nil, 0)
	risk := domain.RiskAssessment{OverallRiskLevel: domain.LOW}

	tests := []struct {
		name  string
		drugs *domain.DrugResults
	}{
		{name: "nil results", drugs: nil},
		{name: "empty candidates", drugs: &domain.DrugResults{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := recommender.Recommend(tt.drugs, nil, risk)

			require.Len(t, recs, 1)
			placeholder := recs[0]
			assert.Equal(t, "No specific drugs identified", placeholder.DrugName)
			assert.Equal(t, "N/A", placeholder.DrugID)
			assert.Equal(t, "Standard protocols apply", placeholder.DosageRecommendation)
			assert.Equal(t, "Insufficient data for specific drug recommendations", placeholder.Rationale)
			assert.Equal(t, []string{"Standard monitoring protocols"}, placeholder.MonitoringParameters)
			assert.Equal(t, []string{"Consult with specialist for treatment options"}, placeholder.Alternatives)
		})
	}
}

func TestDrugRecommender_RankingAndLimit(t *testing.T) {
	recommender := NewDrugRecommender(nil, 0)
	risk := domain.RiskAssessment{OverallRiskLevel: domain.LOW}

	var candidates []domain.DrugCandidate
	for i := 0; i < 7; i++ {
		candidates = append(candidates, domain.DrugCandidate{
			DrugID:             fmt.Sprintf("DRUG_%d", i),
			Name:               fmt.Sprintf("Drug %d", i),
			EffectivenessScore: float64(i) * 0.1,
		})
	}

	recs := recommender.Recommend(&domain.DrugResults{DrugCandidates: candidates}, nil, risk)

	require.Len(t, recs, 5)
	for i := 0; i < len(recs); i++ {
		assert.Equal(t, fmt.Sprintf("Drug %d", 6-i), recs[i].DrugName)
	}
}

func TestDrugRecommender_RationaleAndBenefit(t *testing.T) {
	recommender := NewDrugRecommender(nil, 0)
	risk := domain.RiskAssessment{OverallRiskLevel: domain.LOW}

	tests := []struct {
		name          string
		drug          domain.DrugCandidate
		wantRationale string
		wantBenefit   string
	}{
		{
			name: "full rationale",
			drug: domain.DrugCandidate{
				DrugID:             "D1",
				Name:               "Olaparib",
				MechanismOfAction:  "PARP inhibitor",
				EffectivenessScore: 0.85,
				TrialPhase:         "Phase III",
			},
			wantRationale: "Mechanism: PARP inhibitor; Effectiveness score: 0.85; Clinical trial phase: Phase III",
			wantBenefit:   "High potential therapeutic benefit",
		},
		{
			name: "moderate benefit",
			drug: domain.DrugCandidate{
				DrugID:             "D2",
				Name:               "Tamoxifen",
				EffectivenessScore: 0.6,
			},
			wantRationale: "Effectiveness score: 0.60",
			wantBenefit:   "Moderate potential therapeutic benefit",
		},
		{
			name:          "no data falls back",
			drug:          domain.DrugCandidate{DrugID: "D3", Name: "Unknown"},
			wantRationale: "Based on genetic profile analysis",
			wantBenefit:   "Potential therapeutic benefit requires further evaluation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := recommender.Recommend(&domain.DrugResults{
				DrugCandidates: []domain.DrugCandidate{tt.drug},
			}, nil, risk)

			require.Len(t, recs, 1)
			assert.Equal(t, tt.wantRationale, recs[0].Rationale)
			assert.Equal(t, tt.wantBenefit, recs[0].ExpectedBenefit)
			assert.Equal(t, "As determined by treating physician", recs[0].Duration)
			assert.Nil(t, recs[0].Alternatives)
		})
	}
}

func TestDrugRecommender_MonitoringParameters(t *testing.T) {
	recommender := NewDrugRecommender(nil, 0)
	risk := domain.RiskAssessment{OverallRiskLevel: domain.LOW}

	drug := domain.DrugCandidate{
		DrugID:             "D1",
		Name:               "Cisplatin",
		EffectivenessScore: 0.7,
		SideEffects: []domain.SideEffect{
			{Name: "nausea"},
			{Name: "nephrotoxicity"},
			{Name: "neuropathy"},
			{Name: "ototoxicity"},
		},
	}
	genomics := &domain.GenomicsResults{
		Genes: []domain.Gene{
			{ID: "G1", Name: "CYP2C9", Function: "drug metabolism", ConfidenceScore: 0.9},
		},
	}

	recs := recommender.Recommend(&domain.DrugResults{
		DrugCandidates: []domain.DrugCandidate{drug},
	}, genomics, risk)

	require.Len(t, recs, 1)
	assert.Equal(t, []string{
		"Standard drug monitoring protocols",
		"Monitor for nausea",
		"Monitor for nephrotoxicity",
		"Monitor for neuropathy",
		"Enhanced pharmacokinetic monitoring due to metabolic gene variants",
	}, recs[0].MonitoringParameters)
}

func TestDrugRecommender_Alternatives(t *testing.T) {
	recommender := NewDrugRecommender(nil, 0)
	risk := domain.RiskAssessment{OverallRiskLevel: domain.LOW}

	candidates := []domain.DrugCandidate{
		{DrugID: "D1", Name: "First", EffectivenessScore: 0.9},
		{DrugID: "D2", Name: "Second", EffectivenessScore: 0.8},
		{DrugID: "D3", Name: "Third", EffectivenessScore: 0.7},
		{DrugID: "D4", Name: "Fourth", EffectivenessScore: 0.6},
		{DrugID: "D5", Name: "Fifth", EffectivenessScore: 0.5},
	}

	recs := recommender.Recommend(&domain.DrugResults{DrugCandidates: candidates}, nil, risk)

	require.Len(t, recs, 5)
	assert.Equal(t, []string{"Second", "Third", "Fourth"}, recs[0].Alternatives)
	assert.Equal(t, []string{"First", "Third", "Fourth"}, recs[1].Alternatives)
}

func TestDrugRecommender_DetermineDosage(t *testing.T) {
	recommender := NewDrugRecommender(nil, 0)
	drug := domain.DrugCandidate{DrugID: "D1", Name: "Warfarin"}

	metabolicGenes := []domain.Gene{
		{ID: "G1", Name: "CYP2C9", Function: "cyp enzyme drug metabolism", ConfidenceScore: 0.9},
	}

	tests := []struct {
		name     string
		genomics *domain.GenomicsResults
		want     string
	}{
		{
			name:     "no genomics",
			genomics: nil,
			want:     "Standard dosing as per clinical guidelines",
		},
		{
			name: "no metabolic genes",
			genomics: &domain.GenomicsResults{
				Genes: []domain.Gene{{ID: "G1", Name: "BRCA1", Function: "tumor suppressor", ConfidenceScore: 0.9}},
			},
			want: "Standard dosing as per clinical guidelines",
		},
		{
			name: "metabolic gene without mutations",
			genomics: &domain.GenomicsResults{
				Genes: metabolicGenes,
			},
			want: "Standard dosing as per clinical guidelines",
		},
		{
			name: "benign metabolic mutation",
			genomics: &domain.GenomicsResults{
				Genes: metabolicGenes,
				Mutations: []domain.Mutation{
					{GeneID: "G1", Position: 1, MutationType: domain.SNP, ClinicalSignificance: "benign"},
				},
			},
			want: "Standard dosing with enhanced monitoring due to metabolic gene variants",
		},
		{
			name: "pathogenic metabolic mutation",
			genomics: &domain.GenomicsResults{
				Genes: metabolicGenes,
				Mutations: []domain.Mutation{
					{GeneID: "G1", Position: 1, MutationType: domain.SNP, ClinicalSignificance: "Likely pathogenic"},
				},
			},
			want: "Reduced dosing recommended due to metabolic gene variants - consult pharmacogenomics specialist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, recommender.DetermineDosage(drug, tt.genomics))
		})
	}
}
