// Package agents binds the resume prompt templates to a text generator. Each agent
// is one template plus the rule for reading its reply.
package agents

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-optimizer/internal/ai"
	"github.com/spigell/resume-optimizer/internal/logger"
	"github.com/spigell/resume-optimizer/internal/utils"
)

// Agent names double as keys of the optimization result.
const (
	Summary             = "summary"
	ExperienceMatching  = "experience_matching"
	KeywordOptimization = "keyword_optimization"
	DesignSuggestions   = "design_suggestions"
	EditingSuggestions  = "editing_suggestions"
)

// Names returns all agent names in dispatch order.
func Names() []string {
	return []string{Summary, ExperienceMatching, KeywordOptimization, DesignSuggestions, EditingSuggestions}
}

// textReplies lists agents whose reply is never parsed.
var textReplies = map[string]bool{
	Summary: true,
}

const defaultMaxLogLength = 200

// Error marks a failure of the external completion call made by one agent.
type Error struct {
	Agent string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("agent %s: %v", e.Agent, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type Agent struct {
	name      string
	template  string
	generator ai.Generator
	logger    *zap.Logger
	maxLogLen int
}

// New builds the named agent. It fails for unknown names.
func New(name string, generator ai.Generator, log *zap.Logger) (*Agent, error) {
	if generator == nil {
		return nil, fmt.Errorf("agent %s: generator is required", name)
	}

	template, err := loadTemplate(name)
	if err != nil {
		return nil, err
	}

	return &Agent{
		name:      name,
		template:  template,
		generator: generator,
		logger:    logger.WithAgent(log, name),
		maxLogLen: defaultMaxLogLength,
	}, nil
}

// All builds every agent in dispatch order.
func All(generator ai.Generator, log *zap.Logger) ([]*Agent, error) {
	names := Names()
	all := make([]*Agent, 0, len(names))
	for _, name := range names {
		agent, err := New(name, generator, log)
		if err != nil {
			return nil, err
		}
		all = append(all, agent)
	}
	return all, nil
}

func (a *Agent) Name() string { return a.name }

// Prompt renders the agent's template for in.
func (a *Agent) Prompt(in Input) string {
	return render(a.template, in)
}

// Run sends the rendered prompt and interprets the reply. Generator failures are
// returned as *Error; unparseable replies are kept as text.
func (a *Agent) Run(ctx context.Context, in Input) (Result, error) {
	prompt := a.Prompt(in)

	a.logger.Debug("agent prompt",
		zap.Int("prompt_length", len([]rune(prompt))),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	started := time.Now()
	raw, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return Result{}, &Error{Agent: a.name, Err: err}
	}

	var result Result
	if textReplies[a.name] {
		result = TextResult(raw)
	} else {
		result = ParseResult(raw)
		if !result.Structured() {
			a.logger.Warn("agent reply is not a json object, keeping raw text",
				zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
			)
		}
	}

	a.logger.Debug("agent reply",
		zap.Duration("took", time.Since(started)),
		zap.Bool("structured", result.Structured()),
	)

	return result, nil
}
