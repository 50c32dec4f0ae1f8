// Package evaluation holds the business evaluation entity, its contract,
// and the parsers that turn model output into typed values.
package evaluation

// Result is the structured business evaluation produced by the first stage.
// Values are shared read-only once parsed.
type Result struct {
	BusinessName         string               `json:"businessName" prompt_desc:"A short, brandable name for the venture."`
	ElevatorPitch        string               `json:"elevatorPitch" prompt_desc:"Two or three sentences pitching the idea to an investor."`
	Swot                 Swot                 `json:"swot" prompt_desc:"SWOT analysis of the idea."`
	Risks                Risks                `json:"risks" prompt_desc:"Risk assessment per category."`
	SuccessRate          float64              `json:"successRate" prompt_desc:"Estimated probability of success as a percentage from 0 to 100."`
	StrategicSuggestions []string             `json:"strategicSuggestions" prompt_desc:"Concrete next steps that would improve the odds of success."`
	PsychologicalAspects PsychologicalAspects `json:"psychologicalAspects" prompt_desc:"Human factors behind the venture."`
	PrototypePrompt      string               `json:"prototypePrompt" prompt_desc:"A visual description of the product for an image generator."`
}

type Swot struct {
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Opportunities []string `json:"opportunities"`
	Threats       []string `json:"threats"`
}

// Risks has one assessment per fixed category.
type Risks struct {
	Market      RiskAssessment `json:"market"`
	Financial   RiskAssessment `json:"financial"`
	Operational RiskAssessment `json:"operational"`
	Competitive RiskAssessment `json:"competitive"`
}

type RiskAssessment struct {
	Score       int    `json:"score" prompt_desc:"Integer from 1 (low risk) to 10 (high risk)."`
	Description string `json:"description" prompt_desc:"One or two sentences explaining the score."`
}

type PsychologicalAspects struct {
	FounderMindset     string `json:"founderMindset" prompt_desc:"The mindset a founder needs for this venture."`
	ConsumerPsychology string `json:"consumerPsychology" prompt_desc:"Why customers would or would not buy."`
}

// Request is the submitted idea for one pipeline run.
type Request struct {
	Idea string `json:"idea"`
}
