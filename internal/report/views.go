package report

import (
	"github.com/mitchellh/mapstructure"

	"github.com/spigell/resume-optimizer/internal/agents"
)

// RankedExperience is one entry of the experience matching reply.
type RankedExperience struct {
	Experience            string   `mapstructure:"experience"`
	RelevanceScore        *float64 `mapstructure:"relevance_score"`
	MatchingPoints        []string `mapstructure:"matching_points"`
	SuggestedImprovements []string `mapstructure:"suggested_improvements"`
	RecommendedPosition   int      `mapstructure:"recommended_position"`
}

type ExperienceView struct {
	RankedExperiences []RankedExperience `mapstructure:"ranked_experiences"`
}

type KeywordView struct {
	MissingKeywords []string `mapstructure:"missing_keywords"`
	IndustryTerms   []string `mapstructure:"industry_terms"`
	ATSScore        *float64 `mapstructure:"ats_score"`
	Recommendations []string `mapstructure:"recommendations"`
}

type DesignView struct {
	RecommendedTemplate string   `mapstructure:"recommended_template"`
	LayoutSuggestions   []string `mapstructure:"layout_suggestions"`
	FormattingRules     []string `mapstructure:"formatting_rules"`
	SectionsOrder       []string `mapstructure:"sections_order"`
}

type GrammarFix struct {
	Original    string `mapstructure:"original"`
	Corrected   string `mapstructure:"corrected"`
	Explanation string `mapstructure:"explanation"`
}

type EditingView struct {
	GrammarErrors   []GrammarFix `mapstructure:"grammar_errors"`
	OverallScore    *float64     `mapstructure:"overall_score"`
	SummaryFeedback string       `mapstructure:"summary_feedback"`
}

// decodeView fills target from a structured result. Replies are loosely typed,
// so numbers given as strings and similar drift are accepted; anything beyond
// that reports false and the caller shows the raw reply instead.
func decodeView(result agents.Result, target any) bool {
	if !result.Structured() {
		return false
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return false
	}

	return decoder.Decode(result.Data) == nil
}
