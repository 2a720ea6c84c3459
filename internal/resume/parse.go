// Package resume turns free-form resume text into a loose section view used to
// fill prompt templates. It never fails: text it cannot place is simply ignored.
package resume

import (
	"strings"
	"unicode"
)

// Section identifies a resume heading group.
type Section string

const (
	SectionNone       Section = ""
	SectionSummary    Section = "summary"
	SectionExperience Section = "experience"
	SectionSkills     Section = "skills"
	SectionEducation  Section = "education"
)

// maxHeadingWords bounds how long a line may be and still count as a heading.
const maxHeadingWords = 4

var headingKeywords = map[string]Section{
	"summary":   SectionSummary,
	"profile":   SectionSummary,
	"objective": SectionSummary,
	"about":     SectionSummary,

	"experience": SectionExperience,
	"work":       SectionExperience,
	"employment": SectionExperience,
	"career":     SectionExperience,

	"skills":       SectionSkills,
	"technical":    SectionSkills,
	"technologies": SectionSkills,

	"education":      SectionEducation,
	"academic":       SectionEducation,
	"certifications": SectionEducation,
}

// Document is the parsed view of a resume.
type Document struct {
	Contact    []string `json:"contact" mapstructure:"contact"`
	Summary    string   `json:"summary" mapstructure:"summary"`
	Experience []string `json:"experience" mapstructure:"experience"`
	Skills     []string `json:"skills" mapstructure:"skills"`
	Education  []string `json:"education" mapstructure:"education"`
}

// Parse splits text into sections by heading lines. Lines before the first
// heading are treated as contact details.
func Parse(text string) Document {
	doc := Document{}
	current := SectionNone
	seenHeading := false

	var summary []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if section, ok := headingSection(line); ok {
			current = section
			seenHeading = true
			continue
		}

		if !seenHeading {
			doc.Contact = append(doc.Contact, line)
			continue
		}

		entry := strings.TrimSpace(strings.TrimLeft(line, "-*•·"))
		if entry == "" {
			continue
		}

		switch current {
		case SectionSummary:
			summary = append(summary, entry)
		case SectionExperience:
			doc.Experience = append(doc.Experience, entry)
		case SectionSkills:
			doc.Skills = append(doc.Skills, splitSkills(entry)...)
		case SectionEducation:
			doc.Education = append(doc.Education, entry)
		}
	}

	doc.Summary = strings.Join(summary, " ")
	return doc
}

// IsEmpty reports whether no section content was recognized.
func (d Document) IsEmpty() bool {
	return len(d.Contact) == 0 && d.Summary == "" && len(d.Experience) == 0 &&
		len(d.Skills) == 0 && len(d.Education) == 0
}

// headingSection recognizes short lines naming a section. The keyword must be the
// last word unless the line is upper-case or ends with a colon, so that lines like
// "Technical Lead at Acme" stay content.
func headingSection(line string) (Section, bool) {
	if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") || strings.HasPrefix(line, "•") {
		return SectionNone, false
	}

	words := strings.FieldsFunc(strings.ToLower(line), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if len(words) == 0 || len(words) > maxHeadingWords {
		return SectionNone, false
	}

	if section, ok := headingKeywords[words[len(words)-1]]; ok {
		return section, true
	}

	if line != strings.ToUpper(line) && !strings.HasSuffix(line, ":") {
		return SectionNone, false
	}

	for _, word := range words {
		if section, ok := headingKeywords[word]; ok {
			return section, true
		}
	}

	return SectionNone, false
}

func splitSkills(line string) []string {
	parts := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ';' || r == '|' || r == '•'
	})

	skills := make([]string, 0, len(parts))
	for _, part := range parts {
		if skill := strings.TrimSpace(part); skill != "" {
			skills = append(skills, skill)
		}
	}
	return skills
}
