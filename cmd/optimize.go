package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-optimizer/internal/agents"
	"github.com/spigell/resume-optimizer/internal/document"
	"github.com/spigell/resume-optimizer/internal/logger"
	"github.com/spigell/resume-optimizer/internal/optimizer"
	"github.com/spigell/resume-optimizer/internal/report"
	"github.com/spigell/resume-optimizer/internal/resume"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var confirmPrompt = promptui.Select{
	Label: "Start optimization?",
	Items: []string{PromptYes, PromptNo},
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Run all agents on a resume and a job description and save the report",
	Run: func(cmd *cobra.Command, _ []string) {
		optimize(cmd)
	},
}

func init() {
	rootCmd.AddCommand(optimizeCmd)

	optimizeCmd.Flags().StringP("resume", "r", "", "resume file (.txt, .md, .pdf or .docx). Asked interactively when unset")
	optimizeCmd.Flags().StringP("job", "J", "", "job description file. Asked interactively when unset")
	optimizeCmd.Flags().BoolP("yes", "y", false, "do not ask anything: use samples for missing inputs and start right away")
	optimizeCmd.Flags().StringP("output-dir", "o", "", "directory for the json report (default is current directory)")
	optimizeCmd.Flags().BoolP("parallel", "p", false, "run the agents concurrently")

	viper.BindPFlag("output-dir", optimizeCmd.Flags().Lookup("output-dir"))
}

func optimize(cmd *cobra.Command) {
	logger, err := logger.New(logger.Options{
		JSON:   viper.GetBool("json"),
		Debug:  viper.GetBool("debug"),
		Output: "stderr",
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the resume-optimizer", zap.String("version", version))

	if flagBool(cmd, "parallel") {
		config.AI.Parallel = true
	}

	if err := checkProvider(config.AI); err != nil {
		logger.Fatal("checking ai provider", zap.Error(err))
	}

	apiKey, err := resolveAPIKey(config.AI.Gemini)
	if err != nil {
		logger.Fatal("loading gemini api key", zap.Error(err), zap.String("hint", apiKeyHint))
	}

	interactive := !flagBool(cmd, "yes")

	resumeText, err := loadInput(cmd, "resume", "Resume file path (empty for the sample resume)", resume.SampleResume(), interactive, logger)
	if err != nil {
		logger.Fatal("reading resume", zap.Error(err))
	}

	jobText, err := loadInput(cmd, "job", "Job description file path (empty for the sample job)", resume.SampleJobDescription(), interactive, logger)
	if err != nil {
		logger.Fatal("reading job description", zap.Error(err))
	}

	if interactive {
		_, answer, err := confirmPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if answer == PromptNo {
			logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, requestTimeout(config))
	defer cancel()

	generator, err := generatorFactory(config.AI.Gemini, logger)(ctx, apiKey)
	if err != nil {
		logger.Fatal("creating gemini generator", zap.Error(err))
	}

	all, err := agents.All(generator, logger)
	if err != nil {
		logger.Fatal("building agents", zap.Error(err))
	}

	opt := optimizer.New(optimizer.FromAgents(all), optimizer.Options{Parallel: config.AI.Parallel}, logger)

	results, err := opt.Optimize(ctx, resumeText, jobText)
	if err != nil {
		fields := []zap.Field{zap.Error(err)}
		var agentErr *agents.Error
		if errors.As(err, &agentErr) {
			fields = append(fields, zap.String("agent", agentErr.Agent))
		}
		logger.Fatal("optimization failed", fields...)
	}

	rep := report.New(results, generator.Model(), resumeText, jobText)

	printResults(os.Stdout, results)

	path, err := rep.Save(viper.GetString("output-dir"))
	if err != nil {
		logger.Fatal("saving report", zap.Error(err))
	}

	logger.Info("report saved", zap.String("filename", path), zap.String("report_id", rep.ID.String()))
}

// loadInput returns the text of the file named by flag, asking for the path when
// the flag is empty and prompts are allowed. An empty path selects sample; an
// unreadable file falls back to sample with a warning.
func loadInput(cmd *cobra.Command, flag, label, sample string, interactive bool, log *zap.Logger) (string, error) {
	path := ""
	if f := cmd.Flag(flag); f != nil {
		path = strings.TrimSpace(f.Value.String())
	}

	if path == "" && interactive {
		prompt := promptui.Prompt{Label: label}
		answer, err := prompt.Run()
		if err != nil {
			return "", err
		}
		path = strings.TrimSpace(answer)
	}

	if path == "" {
		log.Info("using built-in sample", zap.String("input", flag))
		return sample, nil
	}

	text, err := document.ReadFile(path)
	if err != nil {
		log.Warn("falling back to built-in sample", zap.String("input", flag), zap.String("filename", path), zap.Error(err))
		return sample, nil
	}

	log.Info("loaded input", zap.String("input", flag), zap.String("filename", path), zap.Int("length", len(text)))
	return text, nil
}

func printResults(w io.Writer, results optimizer.Results) {
	tabs := report.Render(results)

	fmt.Fprintln(w, "NEW SUMMARY:")
	fmt.Fprintln(w, tabs.Summary)

	if score, ok := results[agents.KeywordOptimization].Score(); ok {
		fmt.Fprintf(w, "\nATS SCORE: %s/100\n", strconv.FormatFloat(score, 'f', -1, 64))
	}

	if template := results[agents.DesignSuggestions].Get("recommended_template"); template.Exists() {
		fmt.Fprintf(w, "\nRECOMMENDED TEMPLATE: %s\n", template.String())
	}
}

func flagBool(cmd *cobra.Command, name string) bool {
	f := cmd.Flag(name)
	return f != nil && strings.EqualFold(f.Value.String(), "true")
}
