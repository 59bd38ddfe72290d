package entities

import (
	"fmt"
	"math"
	"time"
)

// Domain score bounds on the RCGP 1-5 scale
const (
	MinDomainScore = 1.0
	MaxDomainScore = 5.0
)

// overallScoreEpsilon is the tolerance when checking that the evaluator's
// overall score equals the mean of the three domains.
const overallScoreEpsilon = 0.05

// CoverageStatus classifies how well a transcript addressed a case item
type CoverageStatus string

const (
	CoverageCovered          CoverageStatus = "COVERED"
	CoveragePartiallyCovered CoverageStatus = "PARTIALLY_COVERED"
	CoverageNotCovered       CoverageStatus = "NOT_COVERED"
)

// Valid reports whether the status is one of the three allowed values. Any
// other value from the evaluator is a contract violation, not a new category.
func (s CoverageStatus) Valid() bool {
	switch s {
	case CoverageCovered, CoveragePartiallyCovered, CoverageNotCovered:
		return true
	}
	return false
}

// DomainScore is one scored assessment domain with supporting evidence
type DomainScore struct {
	Score               float64  `json:"score"`
	Examples            []string `json:"examples"`
	AreasForImprovement []string `json:"areas_for_improvement"`
}

// DomainScores holds the three fixed RCGP assessment domains
type DomainScores struct {
	DataGathering       DomainScore `json:"data_gathering"`
	ClinicalManagement  DomainScore `json:"clinical_management"`
	InterpersonalSkills DomainScore `json:"interpersonal_skills"`
}

// Mean returns the unweighted average of the three domain scores
func (d DomainScores) Mean() float64 {
	return (d.DataGathering.Score + d.ClinicalManagement.Score + d.InterpersonalSkills.Score) / 3
}

// ICECoverageItem is the coverage verdict for one ICE entry
type ICECoverageItem struct {
	ID             string         `json:"id"`
	ICEType        ICEType        `json:"ice_type"`
	Description    string         `json:"description"`
	CoverageStatus CoverageStatus `json:"coverage_status"`
	Evidence       string         `json:"evidence"`
}

// InformationCoverageItem is the coverage verdict for one divulged-information entry
type InformationCoverageItem struct {
	ID             string         `json:"id"`
	DivulgenceType DivulgenceType `json:"divulgence_type"`
	Description    string         `json:"description"`
	CoverageStatus CoverageStatus `json:"coverage_status"`
	Evidence       string         `json:"evidence"`
}

// BackgroundCoverageItem is the coverage verdict for one background detail
type BackgroundCoverageItem struct {
	ID             string         `json:"id"`
	Description    string         `json:"description"`
	CoverageStatus CoverageStatus `json:"coverage_status"`
	Evidence       string         `json:"evidence"`
}

// CoverageAnalysis maps every case item to a coverage verdict
type CoverageAnalysis struct {
	ICECoverage         []ICECoverageItem         `json:"ice_coverage"`
	InformationCoverage []InformationCoverageItem `json:"information_coverage"`
	BackgroundCoverage  []BackgroundCoverageItem  `json:"background_coverage"`
}

// ScoringResult is the parsed, validated output of the consultation evaluator
type ScoringResult struct {
	Scores           DomainScores     `json:"scores"`
	OverallScore     float64          `json:"overall_score"`
	Feedback         string           `json:"feedback"`
	CoverageAnalysis CoverageAnalysis `json:"coverage_analysis"`
	Timestamp        time.Time        `json:"timestamp"`
}

// Validate checks the evaluator's response against the scoring contract.
// Violations are rejected, never coerced.
func (r *ScoringResult) Validate() error {
	domains := map[string]float64{
		"data_gathering":       r.Scores.DataGathering.Score,
		"clinical_management":  r.Scores.ClinicalManagement.Score,
		"interpersonal_skills": r.Scores.InterpersonalSkills.Score,
	}
	for name, score := range domains {
		if score < MinDomainScore || score > MaxDomainScore {
			return fmt.Errorf("domain score %s is %.2f, outside [%.0f, %.0f]", name, score, MinDomainScore, MaxDomainScore)
		}
	}

	if mean := r.Scores.Mean(); math.Abs(r.OverallScore-mean) > overallScoreEpsilon {
		return fmt.Errorf("overall score %.2f is not the mean of the domain scores (%.2f)", r.OverallScore, mean)
	}

	for _, item := range r.CoverageAnalysis.ICECoverage {
		if !item.CoverageStatus.Valid() {
			return fmt.Errorf("invalid coverage status %q for ice entry %s", item.CoverageStatus, item.ID)
		}
	}
	for _, item := range r.CoverageAnalysis.InformationCoverage {
		if !item.CoverageStatus.Valid() {
			return fmt.Errorf("invalid coverage status %q for information entry %s", item.CoverageStatus, item.ID)
		}
	}
	for _, item := range r.CoverageAnalysis.BackgroundCoverage {
		if !item.CoverageStatus.Valid() {
			return fmt.Errorf("invalid coverage status %q for background entry %s", item.CoverageStatus, item.ID)
		}
	}

	return nil
}

// GeneratedCase is a synthesized patient case from the case generator
type GeneratedCase struct {
	Name       string `json:"name"`
	Age        int    `json:"age"`
	Presenting string `json:"presenting"`
	Context    string `json:"context"`
}
