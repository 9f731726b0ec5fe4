package generator

// Section types a generated board may contain.
const (
	SectionTextFrame    = "text_frame"
	SectionStickyNotes  = "sticky_notes"
	SectionCodeExamples = "code_examples"
	SectionCodeBlock    = "code_block"
)

// Board styles.
const (
	StyleSlide    = "slide"
	StyleVertical = "vertical"
	StyleWorkshop = "workshop"
)

// SessionContent is a complete Learning Hour plan.
type SessionContent struct {
	Topic              string      `json:"topic" validate:"required"`
	SessionOverview    string      `json:"sessionOverview" validate:"required,min=10"`
	LearningObjectives []string    `json:"learningObjectives" validate:"min=3,dive,min=10"`
	Activities         []Activity  `json:"activities" validate:"min=2,dive"`
	DiscussionPrompts  []string    `json:"discussionPrompts" validate:"min=4,dive,min=5"`
	KeyTakeaways       []string    `json:"keyTakeaways" validate:"min=3,dive,min=5"`
	MiroContent        MiroContent `json:"miroContent"`
}

type Activity struct {
	Title        string   `json:"title" validate:"required"`
	Duration     string   `json:"duration" validate:"required"`
	Description  string   `json:"description" validate:"required,min=10"`
	Instructions []string `json:"instructions" validate:"min=1,dive,required"`
}

// MiroContent describes how the session is laid out on a board.
type MiroContent struct {
	BoardTitle string    `json:"boardTitle" validate:"required"`
	Style      string    `json:"style,omitempty" validate:"omitempty,oneof=slide vertical workshop"`
	Sections   []Section `json:"sections" validate:"min=1,dive"`
}

// Section is one board region. Which optional fields apply depends on Type.
type Section struct {
	Title      string   `json:"title" validate:"required"`
	Type       string   `json:"type" validate:"required,oneof=text_frame sticky_notes code_examples code_block"`
	Content    string   `json:"content,omitempty"`
	Color      string   `json:"color,omitempty"`
	Items      []string `json:"items,omitempty"`
	Language   string   `json:"language,omitempty"`
	BeforeCode string   `json:"beforeCode,omitempty"`
	AfterCode  string   `json:"afterCode,omitempty"`
	Code       string   `json:"code,omitempty"`
}

// CodeExampleContent is a multi-step refactoring walkthrough.
type CodeExampleContent struct {
	Topic                  string            `json:"topic" validate:"required"`
	Language               string            `json:"language" validate:"required"`
	Context                string            `json:"context" validate:"required"`
	ProblemStatement       string            `json:"problemStatement" validate:"required"`
	LearningHourConnection string            `json:"learningHourConnection" validate:"required"`
	RefactoringSteps       []RefactoringStep `json:"refactoringSteps" validate:"min=2,dive"`
	AdditionalExercises    []string          `json:"additionalExercises" validate:"required"`
	FacilitationNotes      FacilitationNotes `json:"facilitationNotes"`
}

type RefactoringStep struct {
	StepNumber      int      `json:"stepNumber" validate:"gt=0"`
	Description     string   `json:"description" validate:"required"`
	Code            string   `json:"code" validate:"required"`
	TestCode        string   `json:"testCode,omitempty"`
	CodeSmells      []string `json:"codeSmells" validate:"required"`
	Improvements    []string `json:"improvements" validate:"required"`
	FacilitationTip string   `json:"facilitationTip" validate:"required"`
}

type FacilitationNotes struct {
	TimeAllocation      string   `json:"timeAllocation" validate:"required"`
	CommonMistakes      []string `json:"commonMistakes" validate:"required"`
	DiscussionPoints    []string `json:"discussionPoints" validate:"required"`
	PairProgrammingTips []string `json:"pairProgrammingTips" validate:"required"`
}
