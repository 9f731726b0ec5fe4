package models

type ComplexityRating string

const (
	ComplexityLow    ComplexityRating = "low"
	ComplexityMedium ComplexityRating = "medium"
	ComplexityHigh   ComplexityRating = "high"
)

type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
)

type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// CodeRegion is a named block of source, e.g. the function enclosing a match.
type CodeRegion struct {
	Name     string    `json:"name"`
	NodeType string    `json:"nodeType"`
	Lines    LineRange `json:"lineNumbers"`
	Content  string    `json:"content"`
}

type CodeExample struct {
	FilePath          string           `json:"filePath"`
	LineNumbers       LineRange        `json:"lineNumbers"`
	ConfidenceScore   float64          `json:"confidenceScore"`
	ComplexityRating  ComplexityRating `json:"complexityRating"`
	ExperienceLevel   ExperienceLevel  `json:"experienceLevel"`
	CodeSnippet       string           `json:"codeSnippet"`
	EnclosingFunction *CodeRegion      `json:"enclosingFunction,omitempty"`
}

type AnalysisResult struct {
	Examples      []CodeExample `json:"examples"`
	CodeSmell     string        `json:"codeSmell"`
	RepositoryURL string        `json:"repositoryUrl"`
}

// AnonymizedExample reports what was scrubbed. IsSafeToUse is always true;
// FlaggedElements is the field to act on.
type AnonymizedExample struct {
	AnonymizedCode  string   `json:"anonymizedCode"`
	IsSafeToUse     bool     `json:"isSafeToUse"`
	FlaggedElements []string `json:"flaggedElements"`
}

type TechStackProfile struct {
	PrimaryLanguages      []string `json:"primaryLanguages"`
	Frameworks            []string `json:"frameworks"`
	TestingFrameworks     []string `json:"testingFrameworks"`
	BuildTools            []string `json:"buildTools"`
	ArchitecturalPatterns []string `json:"architecturalPatterns"`
	PackageDependencies   []string `json:"packageDependencies"`
}

type StackSpecificContent struct {
	Examples                 string `json:"examples"`
	TestExamples             string `json:"testExamples"`
	RefactoringOpportunities string `json:"refactoringOpportunities"`
	PackageReferences        string `json:"packageReferences"`
}
