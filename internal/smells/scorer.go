package smells

import (
	"math"
	"regexp"

	"learninghour/internal/models"
	"learninghour/internal/utils"
)

const (
	baseConfidence       = 0.7
	featureEnvyBonus     = 0.2
	longMethodBonus      = 0.15
	maxConfidence        = 0.95
	longMethodMinLines   = 30
	minChainedCalls      = 2
	highComplexityLines  = 50
	highComplexityBranch = 10
	midComplexityLines   = 20
	midComplexityBranch  = 5
)

var (
	chainedCallRe = regexp.MustCompile(`\.\w+\(\)\.`)
	branchRe      = regexp.MustCompile(`\b(?:if|else|for|while|switch)\b`)
)

// Confidence scores how strongly snippet exemplifies smell, in [0.7, 0.95].
func Confidence(snippet, smell string) float64 {
	score := baseConfidence
	switch utils.NormalizeName(smell) {
	case utils.NormalizeName(FeatureEnvy):
		if len(chainedCallRe.FindAllStringIndex(snippet, -1)) >= minChainedCalls {
			score += featureEnvyBonus
		}
	case utils.NormalizeName(LongMethod):
		if utils.CountLines(snippet) > longMethodMinLines {
			score += longMethodBonus
		}
	}
	score = math.Min(score, maxConfidence)
	return math.Round(score*100) / 100
}

// Complexity buckets snippet by line count and branching keyword count.
func Complexity(snippet string) models.ComplexityRating {
	lines := utils.CountLines(snippet)
	branches := len(branchRe.FindAllStringIndex(snippet, -1))
	switch {
	case lines > highComplexityLines || branches > highComplexityBranch:
		return models.ComplexityHigh
	case lines > midComplexityLines || branches > midComplexityBranch:
		return models.ComplexityMedium
	default:
		return models.ComplexityLow
	}
}

// ExperienceFor maps complexity one-to-one onto an audience level.
func ExperienceFor(c models.ComplexityRating) models.ExperienceLevel {
	switch c {
	case models.ComplexityHigh:
		return models.ExperienceAdvanced
	case models.ComplexityMedium:
		return models.ExperienceIntermediate
	default:
		return models.ExperienceBeginner
	}
}

// Score is Confidence, Complexity and ExperienceFor in one call.
func Score(snippet, smell string) (float64, models.ComplexityRating, models.ExperienceLevel) {
	complexity := Complexity(snippet)
	return Confidence(snippet, smell), complexity, ExperienceFor(complexity)
}
