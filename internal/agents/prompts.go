package agents

import (
	"embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/spigell/resume-optimizer/internal/resume"
)

//go:embed prompts/*.md
var promptFiles embed.FS

const (
	notProvided      = "Not provided."
	defaultIndustry  = "General"
	maxIndustryWords = 5
)

// placeholderOrder fixes the substitution order of the template placeholders.
var placeholderOrder = []string{
	"{{RESUME}}",
	"{{JOB_DESCRIPTION}}",
	"{{SUMMARY}}",
	"{{SKILLS}}",
	"{{EXPERIENCE}}",
	"{{INDUSTRY}}",
	"{{STRUCTURE}}",
}

func loadTemplate(name string) (string, error) {
	data, err := promptFiles.ReadFile("prompts/" + name + ".md")
	if err != nil {
		return "", fmt.Errorf("load prompt template %q: %w", name, err)
	}
	return string(data), nil
}

// Input carries the two user-supplied texts and the section view derived from the resume.
type Input struct {
	Resume         string
	JobDescription string
	Document       resume.Document
}

// NewInput trims both texts and parses the resume once for all agents.
func NewInput(resumeText, jobDescription string) Input {
	resumeText = strings.TrimSpace(resumeText)
	return Input{
		Resume:         resumeText,
		JobDescription: strings.TrimSpace(jobDescription),
		Document:       resume.Parse(resumeText),
	}
}

func (in Input) placeholders() map[string]string {
	return map[string]string{
		"{{RESUME}}":          orNotProvided(in.Resume),
		"{{JOB_DESCRIPTION}}": orNotProvided(in.JobDescription),
		"{{SUMMARY}}":         orNotProvided(in.Document.Summary),
		"{{SKILLS}}":          orNotProvided(strings.Join(in.Document.Skills, ", ")),
		"{{EXPERIENCE}}":      in.experience(),
		"{{INDUSTRY}}":        in.industry(),
		"{{STRUCTURE}}":       in.structure(),
	}
}

// experience falls back to the full resume when no experience section was found.
func (in Input) experience() string {
	if len(in.Document.Experience) == 0 {
		return orNotProvided(in.Resume)
	}
	return strings.Join(in.Document.Experience, "\n")
}

// industry is the role headline: the first line of the job description, cut
// before the employer and capped at maxIndustryWords words.
func (in Input) industry() string {
	for _, line := range strings.Split(in.JobDescription, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		for _, sep := range []string{" at ", " - ", ",", ":"} {
			if idx := strings.Index(line, sep); idx > 0 {
				line = line[:idx]
			}
		}

		words := strings.Fields(line)
		if len(words) > maxIndustryWords {
			words = words[:maxIndustryWords]
		}
		if len(words) > 0 {
			return strings.Join(words, " ")
		}
	}
	return defaultIndustry
}

func (in Input) structure() string {
	doc := in.Document
	lines := []string{
		"- Contact lines: " + strconv.Itoa(len(doc.Contact)),
		"- Summary present: " + strconv.FormatBool(doc.Summary != ""),
		"- Experience lines: " + strconv.Itoa(len(doc.Experience)),
		"- Skills listed: " + strconv.Itoa(len(doc.Skills)),
		"- Education lines: " + strconv.Itoa(len(doc.Education)),
	}
	return strings.Join(lines, "\n")
}

// render substitutes every placeholder in a single pass, so placeholder-like text
// inside the user's resume or job description is never expanded.
func render(template string, in Input) string {
	values := in.placeholders()
	pairs := make([]string, 0, 2*len(placeholderOrder))
	for _, placeholder := range placeholderOrder {
		pairs = append(pairs, placeholder, values[placeholder])
	}
	return strings.TrimSpace(strings.NewReplacer(pairs...).Replace(template))
}

func orNotProvided(s string) string {
	if strings.TrimSpace(s) == "" {
		return notProvided
	}
	return s
}
