// Package domain contains the core entities and types for clinical decision
// synthesis: turning already-computed multi-omics analysis results (genes,
// mutations, protein annotations, literature summaries, drug candidates) into a
// risk assessment, ranked drug recommendations, treatment options, and a
// narrative medical report.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// RiskLevel represents the tier of a genetic or clinical risk. Levels are
// ordered LOW < MODERATE < HIGH < CRITICAL; Rank exposes the ordering for
// comparisons.
type RiskLevel string

const (
	LOW      RiskLevel = "low"
	MODERATE RiskLevel = "moderate"
	HIGH     RiskLevel = "high"
	CRITICAL RiskLevel = "critical"
)

// TreatmentType represents the category of a treatment option.
type TreatmentType string

const (
	MEDICATION         TreatmentType = "medication"
	SURGERY            TreatmentType = "surgery"
	LIFESTYLE          TreatmentType = "lifestyle"
	MONITORING         TreatmentType = "monitoring"
	GENETIC_COUNSELING TreatmentType = "genetic_counseling"
	PREVENTIVE         TreatmentType = "preventive"
)

// MutationType represents the structural class of a genetic mutation.
type MutationType string

const (
	SNP           MutationType = "single_nucleotide_polymorphism"
	INSERTION     MutationType = "insertion"
	DELETION      MutationType = "deletion"
	SUBSTITUTION  MutationType = "substitution"
	FRAMESHIFT    MutationType = "frameshift"
	MISSENSE      MutationType = "missense"
	NONSENSE      MutationType = "nonsense"
	SILENT        MutationType = "silent"
	INVERSION     MutationType = "inversion"
	TRANSLOCATION MutationType = "translocation"
)

// SignificanceClass is the controlled classification of a mutation's free-text
// clinical significance. The free-text matching is inherently brittle; it is
// kept as an explicit tagged classifier so the priority order is visible and
// testable rather than buried in branch logic.
type SignificanceClass string

const (
	SIGNIFICANCE_PATHOGENIC   SignificanceClass = "pathogenic"
	SIGNIFICANCE_BENIGN       SignificanceClass = "benign"
	SIGNIFICANCE_UNCERTAIN    SignificanceClass = "uncertain"
	SIGNIFICANCE_UNCLASSIFIED SignificanceClass = "unclassified"
)

// Keyword sets for free-text significance classification. Matching is
// case-insensitive substring search, evaluated in pathogenic > benign >
// uncertain priority order (first match wins).
//
// NOTE: "disease" is intentionally grouped with the pathogenic keywords to
// match long-standing pipeline behavior, even though it can over-classify
// unrelated free text.
var (
	pathogenicKeywords = []string{"pathogenic", "likely pathogenic", "disease"}
	benignKeywords     = []string{"benign", "likely benign"}
	uncertainKeywords  = []string{"uncertain", "unknown", "vus"}
)

// ClassifySignificance maps free-text clinical significance onto a
// SignificanceClass. Empty or unmatched text yields SIGNIFICANCE_UNCLASSIFIED,
// which consumers must treat as "skip", never as an error.
func ClassifySignificance(text string) SignificanceClass {
	if text == "" {
		return SIGNIFICANCE_UNCLASSIFIED
	}

	lower := strings.ToLower(text)

	if containsAny(lower, pathogenicKeywords) {
		return SIGNIFICANCE_PATHOGENIC
	}
	if containsAny(lower, benignKeywords) {
		return SIGNIFICANCE_BENIGN
	}
	if containsAny(lower, uncertainKeywords) {
		return SIGNIFICANCE_UNCERTAIN
	}

	return SIGNIFICANCE_UNCLASSIFIED
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// Validation errors for clinical data integrity
var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidRiskLevel     = errors.New("invalid risk level")
	ErrInvalidTreatmentType = errors.New("invalid treatment type")
	ErrInvalidConfidence    = errors.New("confidence score must be within [0, 1]")
	ErrInvalidEvidenceLevel = errors.New("invalid evidence level")
)

// IsValid validates the risk level.
func (r RiskLevel) IsValid() bool {
	switch r {
	case LOW, MODERATE, HIGH, CRITICAL:
		return true
	default:
		return false
	}
}

// Rank returns the ordinal position of the risk level for comparisons.
// Invalid levels rank below LOW so they never win a max().
func (r RiskLevel) Rank() int {
	switch r {
	case LOW:
		return 0
	case MODERATE:
		return 1
	case HIGH:
		return 2
	case CRITICAL:
		return 3
	default:
		return -1
	}
}

// String returns the serialized form used in reports and logs.
func (r RiskLevel) String() string {
	return string(r)
}

// RequiresEscalation reports whether the risk level warrants specialist
// involvement (genetic counseling, enhanced screening).
func (r RiskLevel) RequiresEscalation() bool {
	return r.Rank() >= MODERATE.Rank()
}

// LogFields returns structured logging fields for audit trails.
func (r RiskLevel) LogFields() map[string]any {
	return map[string]any{
		"risk_level":          string(r),
		"risk_rank":           r.Rank(),
		"requires_escalation": r.RequiresEscalation(),
		"is_valid":            r.IsValid(),
	}
}

// IsValid validates the treatment type.
func (t TreatmentType) IsValid() bool {
	switch t {
	case MEDICATION, SURGERY, LIFESTYLE, MONITORING, GENETIC_COUNSELING, PREVENTIVE:
		return true
	default:
		return false
	}
}

// String returns the serialized form of the treatment type.
func (t TreatmentType) String() string {
	return string(t)
}

// IsValid validates the mutation type.
func (m MutationType) IsValid() bool {
	switch m {
	case SNP, INSERTION, DELETION, SUBSTITUTION, FRAMESHIFT,
		MISSENSE, NONSENSE, SILENT, INVERSION, TRANSLOCATION:
		return true
	default:
		return false
	}
}

// String returns the serialized form of the mutation type.
func (m MutationType) String() string {
	return string(m)
}

// EvidenceLevel grades the strength of clinical evidence behind a treatment
// option, A (strongest) through D.
type EvidenceLevel string

const (
	EVIDENCE_A EvidenceLevel = "A"
	EVIDENCE_B EvidenceLevel = "B"
	EVIDENCE_C EvidenceLevel = "C"
	EVIDENCE_D EvidenceLevel = "D"
)

// IsValid validates the evidence level.
func (e EvidenceLevel) IsValid() bool {
	switch e {
	case EVIDENCE_A, EVIDENCE_B, EVIDENCE_C, EVIDENCE_D:
		return true
	default:
		return false
	}
}

// String returns the serialized form of the evidence level.
func (e EvidenceLevel) String() string {
	return string(e)
}

// ValidateConfidence checks a 0-1 confidence score.
func ValidateConfidence(score float64) error {
	if score < 0 || score > 1 {
		return fmt.Errorf("confidence %.4f: %w", score, ErrInvalidConfidence)
	}
	return nil
}
