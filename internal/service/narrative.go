package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/biomerkin/decision-engine/internal/domain"
)

const (
	defaultNarrativeMaxTokens = 1500
	narrativeItemLimit        = 5
	highConfidenceThreshold   = 0.7
)

// ReportSections holds the four narrative sections of a medical report.
type ReportSections struct {
	AnalysisSummary    string
	GeneticFindings    string
	ProteinAnalysis    string
	LiteratureInsights string
}

// NarrativeSynthesizer produces the narrative report sections. Each section
// is requested from the text-generation backend exactly once; any failure
// falls back to a deterministic template built from the aggregated data. The
// synthesizer works correctly with a nil generator.
type NarrativeSynthesizer struct {
	logger    *logrus.Logger
	generator domain.TextGenerator
	maxTokens int
}

// NewNarrativeSynthesizer creates a synthesizer. A nil generator disables
// generation entirely; a non-positive maxTokens falls back to the default.
func NewNarrativeSynthesizer(logger *logrus.Logger, generator domain.TextGenerator, maxTokens int) *NarrativeSynthesizer {
	if maxTokens <= 0 {
		maxTokens = defaultNarrativeMaxTokens
	}
	return &NarrativeSynthesizer{logger: logger, generator: generator, maxTokens: maxTokens}
}

// Synthesize fills all four report sections. It never fails: every section
// ends up non-empty, generated or templated.
func (n *NarrativeSynthesizer) Synthesize(ctx context.Context, agg *AggregatedAnalysis) ReportSections {
	return ReportSections{
		AnalysisSummary:    n.section(ctx, "analysis_summary", summaryPrompt(agg), func() string { return fallbackSummary(agg) }),
		GeneticFindings:    n.section(ctx, "genetic_findings", geneticFindingsPrompt(agg), func() string { return fallbackGeneticFindings(agg) }),
		ProteinAnalysis:    n.section(ctx, "protein_analysis", proteinAnalysisPrompt(agg), func() string { return fallbackProteinAnalysis(agg) }),
		LiteratureInsights: n.section(ctx, "literature_insights", literatureInsightsPrompt(agg), func() string { return fallbackLiteratureInsights(agg) }),
	}
}

func (n *NarrativeSynthesizer) section(ctx context.Context, name, prompt string, fallback func() string) string {
	if n.generator != nil {
		if text, ok := n.generator.GenerateText(ctx, prompt, n.maxTokens); ok && text != "" {
			return text
		}
		if n.logger != nil {
			n.logger.WithField("section", name).Warn("Text generation unavailable, using fallback template")
		}
	}
	return fallback()
}

// analysisContext summarizes the aggregate for prompt construction.
func analysisContext(agg *AggregatedAnalysis) string {
	var parts []string

	if len(agg.GenesAnalyzed) > 0 {
		parts = append(parts, fmt.Sprintf("Genes analyzed: %d genes", len(agg.GenesAnalyzed)))
		for _, gene := range head(agg.GenesAnalyzed) {
			parts = append(parts, fmt.Sprintf("- %s: %s (confidence: %.2f)", gene.Name, gene.Function, gene.Confidence))
		}
	}
	if len(agg.MutationsFound) > 0 {
		parts = append(parts, fmt.Sprintf("Mutations identified: %d variants", len(agg.MutationsFound)))
		for _, mutation := range head(agg.MutationsFound) {
			parts = append(parts, fmt.Sprintf("- %s at position %d: %s", mutation.Type, mutation.Position, mutation.Significance))
		}
	}
	if len(agg.ProteinFunctions) > 0 {
		parts = append(parts, fmt.Sprintf("Protein functions: %d annotations", len(agg.ProteinFunctions)))
	}
	if len(agg.DrugCandidates) > 0 {
		parts = append(parts, fmt.Sprintf("Drug candidates: %d identified", len(agg.DrugCandidates)))
	}
	if len(agg.LiteratureFindings) > 0 {
		parts = append(parts, fmt.Sprintf("Literature findings: %d key insights", len(agg.LiteratureFindings)))
	}

	return strings.Join(parts, "\n")
}

func summaryPrompt(agg *AggregatedAnalysis) string {
	return fmt.Sprintf(`You are a medical geneticist writing a comprehensive analysis summary. Based on the following data, provide a concise but thorough summary of the genetic analysis:

%s

Please provide a professional medical summary that includes:
1. Overview of genes analyzed and their significance
2. Key mutations identified and their clinical implications
3. Protein function insights
4. Integration of literature findings
5. Overall assessment of the genetic profile

Keep the summary clinical, accurate, and suitable for medical professionals.`, analysisContext(agg))
}

func geneticFindingsPrompt(agg *AggregatedAnalysis) string {
	var genes []string
	for _, gene := range agg.GenesAnalyzed {
		genes = append(genes, fmt.Sprintf("%s (%s, confidence %.2f)", gene.Name, gene.Function, gene.Confidence))
	}
	var mutations []string
	for _, mutation := range agg.MutationsFound {
		mutations = append(mutations, fmt.Sprintf("%s at position %d (%s>%s): %s",
			mutation.Type, mutation.Position, mutation.Reference, mutation.Alternate, mutation.Significance))
	}

	return fmt.Sprintf(`You are a clinical geneticist documenting genetic findings. Based on this genetic analysis data:

Genes analyzed: %s
Mutations found: %s

Provide a detailed genetic findings section that includes:
1. Specific genes identified and their functions
2. Pathogenic, benign, and uncertain variants
3. Clinical significance of each finding
4. Inheritance patterns where applicable
5. Recommendations for genetic counseling

Format this as a clinical genetics report section.`, strings.Join(genes, "; "), strings.Join(mutations, "; "))
}

func proteinAnalysisPrompt(agg *AggregatedAnalysis) string {
	var functions []string
	for _, protein := range agg.ProteinFunctions {
		functions = append(functions, fmt.Sprintf("%s (confidence %.2f, source %s)",
			protein.Description, protein.Confidence, protein.Source))
	}

	return fmt.Sprintf(`You are a protein biochemist documenting protein analysis findings. Based on this data:

Protein functions: %s

Provide a protein analysis section that includes:
1. Functional annotations and their confidence levels
2. Protein domains and structural insights
3. Functional implications of identified proteins
4. Potential therapeutic targets
5. Relationship between protein function and clinical phenotype

Format this as a clinical protein analysis report.`, strings.Join(functions, "; "))
}

func literatureInsightsPrompt(agg *AggregatedAnalysis) string {
	quality := ""
	if agg.Quality.Literature != nil {
		quality = fmt.Sprintf("%d articles analyzed, confidence %.2f",
			agg.Quality.Literature.ArticlesAnalyzed, agg.Quality.Literature.Confidence)
	}

	return fmt.Sprintf(`You are a medical researcher summarizing literature insights. Based on this literature analysis:

Key findings: %s
Analysis quality: %s

Provide a literature insights section that includes:
1. Summary of current research relevant to the genetic findings
2. Clinical evidence supporting or contradicting findings
3. Gaps in current knowledge
4. Implications for treatment and prognosis
5. Recommendations for further research

Format this as a clinical literature review section.`, strings.Join(agg.LiteratureFindings, "; "), quality)
}

func fallbackSummary(agg *AggregatedAnalysis) string {
	var parts []string

	if len(agg.GenesAnalyzed) > 0 {
		parts = append(parts, fmt.Sprintf("Genetic analysis identified %d genes with functional annotations.", len(agg.GenesAnalyzed)))

		highConfidence := 0
		for _, gene := range agg.GenesAnalyzed {
			if gene.Confidence > highConfidenceThreshold {
				highConfidence++
			}
		}
		if highConfidence > 0 {
			parts = append(parts, fmt.Sprintf("%d genes showed high-confidence functional predictions.", highConfidence))
		}
	}

	if len(agg.MutationsFound) > 0 {
		parts = append(parts, fmt.Sprintf("Analysis revealed %d genetic variants requiring clinical interpretation.", len(agg.MutationsFound)))

		pathogenic := 0
		for _, mutation := range agg.MutationsFound {
			if strings.Contains(strings.ToLower(mutation.Significance), "pathogenic") {
				pathogenic++
			}
		}
		if pathogenic > 0 {
			parts = append(parts, fmt.Sprintf("%d variants were classified as potentially pathogenic.", pathogenic))
		}
	}

	if len(agg.ProteinFunctions) > 0 {
		parts = append(parts, fmt.Sprintf("Protein functional analysis provided %d functional annotations.", len(agg.ProteinFunctions)))
	}
	if len(agg.DrugCandidates) > 0 {
		parts = append(parts, fmt.Sprintf("Drug discovery analysis identified %d potential therapeutic candidates.", len(agg.DrugCandidates)))
	}
	if len(agg.LiteratureFindings) > 0 {
		parts = append(parts, fmt.Sprintf("Literature review yielded %d key research findings relevant to the genetic profile.", len(agg.LiteratureFindings)))
	}

	if len(parts) == 0 {
		return "Comprehensive genetic analysis completed with limited findings requiring further investigation."
	}
	return strings.Join(parts, " ")
}

func fallbackGeneticFindings(agg *AggregatedAnalysis) string {
	var lines []string

	if len(agg.GenesAnalyzed) > 0 {
		lines = append(lines, "GENETIC ANALYSIS RESULTS:")
		lines = append(lines, fmt.Sprintf("Total genes analyzed: %d", len(agg.GenesAnalyzed)))
		for _, gene := range head(agg.GenesAnalyzed) {
			lines = append(lines, fmt.Sprintf("- Gene: %s", gene.Name))
			lines = append(lines, fmt.Sprintf("  Function: %s", gene.Function))
			lines = append(lines, fmt.Sprintf("  Confidence Score: %.2f", gene.Confidence))
		}
	}

	if len(agg.MutationsFound) > 0 {
		lines = append(lines, "\nVARIANT ANALYSIS:")
		lines = append(lines, fmt.Sprintf("Total variants identified: %d", len(agg.MutationsFound)))
		for _, mutation := range head(agg.MutationsFound) {
			lines = append(lines, fmt.Sprintf("- Position %d: %s>%s", mutation.Position, mutation.Reference, mutation.Alternate))
			lines = append(lines, fmt.Sprintf("  Type: %s", mutation.Type))
			lines = append(lines, fmt.Sprintf("  Clinical Significance: %s", mutation.Significance))
		}
	}

	if len(lines) == 0 {
		return "No significant genetic findings identified in the current analysis."
	}
	return strings.Join(lines, "\n")
}

func fallbackProteinAnalysis(agg *AggregatedAnalysis) string {
	if len(agg.ProteinFunctions) == 0 {
		return "No protein functional annotations available for analysis."
	}

	lines := []string{
		"PROTEIN FUNCTIONAL ANALYSIS:",
		fmt.Sprintf("Total functional annotations: %d", len(agg.ProteinFunctions)),
	}

	highConfidence := 0
	for _, protein := range agg.ProteinFunctions {
		if protein.Confidence > highConfidenceThreshold {
			highConfidence++
		}
	}
	if highConfidence > 0 {
		lines = append(lines, fmt.Sprintf("High-confidence annotations: %d", highConfidence))
	}

	for _, protein := range head(agg.ProteinFunctions) {
		lines = append(lines, fmt.Sprintf("- Function: %s", protein.Description))
		lines = append(lines, fmt.Sprintf("  Confidence: %.2f", protein.Confidence))
		lines = append(lines, fmt.Sprintf("  Source: %s", protein.Source))
	}

	return strings.Join(lines, "\n")
}

func fallbackLiteratureInsights(agg *AggregatedAnalysis) string {
	if len(agg.LiteratureFindings) == 0 {
		return "Limited literature evidence available for the identified genetic variants.\n" +
			"Further research may be needed to establish clinical significance."
	}

	articles := "Unknown"
	confidence := 0.0
	if agg.Quality.Literature != nil {
		articles = fmt.Sprintf("%d", agg.Quality.Literature.ArticlesAnalyzed)
		confidence = agg.Quality.Literature.Confidence
	}

	lines := []string{
		"LITERATURE REVIEW SUMMARY:",
		fmt.Sprintf("Articles analyzed: %s", articles),
		fmt.Sprintf("Confidence level: %.2f", confidence),
		"\nKey findings from literature:",
	}
	for _, finding := range head(agg.LiteratureFindings) {
		lines = append(lines, fmt.Sprintf("- %s", finding))
	}

	return strings.Join(lines, "\n")
}

// head returns at most the first narrativeItemLimit elements.
func head[T any](items []T) []T {
	if len(items) > narrativeItemLimit {
		return items[:narrativeItemLimit]
	}
	return items
}
