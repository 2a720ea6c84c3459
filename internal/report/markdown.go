package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spigell/resume-optimizer/internal/agents"
	"github.com/spigell/resume-optimizer/internal/optimizer"
)

const (
	maxExperiences     = 3
	maxMatchingPoints  = 3
	maxMissingKeywords = 10
	maxRecommendations = 3
	maxLayoutTips      = 5
	maxGrammarFixes    = 3

	notAvailable = "N/A"
)

// Tabs holds the markdown shown for each agent in the web view.
type Tabs struct {
	Summary    string `json:"summary"`
	Experience string `json:"experience"`
	Keywords   string `json:"keywords"`
	Design     string `json:"design"`
	Editing    string `json:"editing"`
}

// Render formats every agent result. Missing results render as empty strings and
// replies that do not fit the expected shape are shown verbatim.
func Render(results optimizer.Results) Tabs {
	return Tabs{
		Summary:    renderSummary(results),
		Experience: renderExperience(results),
		Keywords:   renderKeywords(results),
		Design:     renderDesign(results),
		Editing:    renderEditing(results),
	}
}

func renderSummary(results optimizer.Results) string {
	result, ok := results[agents.Summary]
	if !ok || strings.TrimSpace(result.String()) == "" {
		return "No summary generated"
	}
	return strings.TrimSpace(result.String())
}

func renderExperience(results optimizer.Results) string {
	result, ok := results[agents.ExperienceMatching]
	if !ok {
		return ""
	}

	var view ExperienceView
	if !decodeView(result, &view) || len(view.RankedExperiences) == 0 {
		return result.String()
	}

	var b strings.Builder
	b.WriteString("**Experience Relevance Analysis**\n\n")
	for i, exp := range head(view.RankedExperiences, maxExperiences) {
		label := fmt.Sprintf("Experience %d", i+1)
		if exp.Experience != "" {
			label += ": " + exp.Experience
		}
		fmt.Fprintf(&b, "**%s** (score %s/10)\n", label, formatScore(exp.RelevanceScore))
		if points := head(exp.MatchingPoints, maxMatchingPoints); len(points) > 0 {
			fmt.Fprintf(&b, "Key matches: %s\n", strings.Join(points, ", "))
		}
		b.WriteString("\n")
	}

	return strings.TrimSpace(b.String())
}

func renderKeywords(results optimizer.Results) string {
	result, ok := results[agents.KeywordOptimization]
	if !ok {
		return ""
	}

	var view KeywordView
	if !decodeView(result, &view) {
		return result.String()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**ATS Optimization Score:** %s/100\n\n", formatScore(view.ATSScore))
	if missing := head(view.MissingKeywords, maxMissingKeywords); len(missing) > 0 {
		fmt.Fprintf(&b, "**Missing Keywords:** %s\n\n", strings.Join(missing, ", "))
	}
	writeList(&b, "Recommendations", head(view.Recommendations, maxRecommendations))

	return strings.TrimSpace(b.String())
}

func renderDesign(results optimizer.Results) string {
	result, ok := results[agents.DesignSuggestions]
	if !ok {
		return ""
	}

	var view DesignView
	if !decodeView(result, &view) {
		return result.String()
	}

	template := view.RecommendedTemplate
	if template == "" {
		template = "Standard"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Recommended Template:** %s\n\n", template)
	writeList(&b, "Layout Suggestions", head(view.LayoutSuggestions, maxLayoutTips))

	return strings.TrimSpace(b.String())
}

func renderEditing(results optimizer.Results) string {
	result, ok := results[agents.EditingSuggestions]
	if !ok {
		return ""
	}

	var view EditingView
	if !decodeView(result, &view) {
		return result.String()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Overall Quality Score:** %s/100\n\n", formatScore(view.OverallScore))
	if view.SummaryFeedback != "" {
		fmt.Fprintf(&b, "**Feedback:** %s\n\n", view.SummaryFeedback)
	}

	fixes := make([]string, 0, maxGrammarFixes)
	for _, fix := range head(view.GrammarErrors, maxGrammarFixes) {
		fixes = append(fixes, fmt.Sprintf("'%s' → '%s'", fix.Original, fix.Corrected))
	}
	writeList(&b, "Grammar Improvements", fixes)

	return strings.TrimSpace(b.String())
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "**%s:**\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

func formatScore(score *float64) string {
	if score == nil {
		return notAvailable
	}
	return strconv.FormatFloat(*score, 'f', -1, 64)
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
