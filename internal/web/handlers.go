package web

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/resume-optimizer/internal/agents"
	"github.com/spigell/resume-optimizer/internal/document"
	"github.com/spigell/resume-optimizer/internal/logger"
	"github.com/spigell/resume-optimizer/internal/optimizer"
	"github.com/spigell/resume-optimizer/internal/report"
	"github.com/spigell/resume-optimizer/internal/resume"
	"github.com/spigell/resume-optimizer/internal/secrets"
)

//go:embed form.html
var formHTML []byte

const maxTextLength = 200000

type optimizeRequest struct {
	APIKey     string `json:"api_key" form:"api_key" validate:"omitempty,max=256"`
	ResumeText string `json:"resume_text" form:"resume_text" validate:"omitempty,max=200000"`
	JobText    string `json:"job_text" form:"job_text" validate:"omitempty,max=200000"`
}

type optimizeResponse struct {
	ID     uuid.UUID      `json:"id"`
	Tabs   report.Tabs    `json:"tabs"`
	Report *report.Report `json:"report"`
}

type samplesResponse struct {
	Resume         string `json:"resume"`
	JobDescription string `json:"job_description"`
}

func (s *Server) handleForm(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.Send(formHTML)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "healthy",
		"time":   time.Now(),
	})
}

func (s *Server) handleSamples(c *fiber.Ctx) error {
	return c.JSON(samplesResponse{
		Resume:         resume.SampleResume(),
		JobDescription: resume.SampleJobDescription(),
	})
}

func (s *Server) handleOptimize(c *fiber.Ctx) error {
	var req optimizeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
	}

	if err := s.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, validationMessage(err))
	}

	apiKey, err := secrets.First(
		secrets.Source{Name: "gemini api key", Value: req.APIKey},
		secrets.Source{Name: "gemini api key", Value: s.apiKey},
	)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "please provide a valid Gemini API key")
	}

	resumeText, err := s.content(c, "resume_file", req.ResumeText, resume.SampleResume())
	if err != nil {
		return err
	}

	jobText, err := s.content(c, "job_file", req.JobText, resume.SampleJobDescription())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), s.cfg.RequestTimeout)
	defer cancel()

	generator, err := s.newGenerator(ctx, apiKey)
	if err != nil {
		return fmt.Errorf("create generator: %w", err)
	}

	all, err := agents.All(generator, s.logger)
	if err != nil {
		return fmt.Errorf("build agents: %w", err)
	}

	opt := optimizer.New(optimizer.FromAgents(all), optimizer.Options{Parallel: s.cfg.Parallel}, s.logger)

	results, err := opt.Optimize(ctx, resumeText, jobText)
	if err != nil {
		return fmt.Errorf("optimize resume: %w", err)
	}

	rep := report.New(results, generator.Model(), resumeText, jobText)
	s.reports.put(rep)

	logger.WithReport(s.logger, rep.ID.String()).Info("report stored", zap.Int("stored", s.reports.len()))

	return c.JSON(optimizeResponse{
		ID:     rep.ID,
		Tabs:   report.Render(results),
		Report: rep,
	})
}

func (s *Server) handleDownload(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid report id")
	}

	rep, ok := s.reports.get(id)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "report not found")
	}

	data, err := rep.Marshal()
	if err != nil {
		return err
	}

	c.Attachment(rep.FileName())
	return c.Send(data)
}

// content picks the uploaded file named field, then the pasted text, then sample.
func (s *Server) content(c *fiber.Ctx, field, text, sample string) (string, error) {
	if file := uploadedFile(c, field); file != nil {
		extracted, err := readUpload(file)
		if err != nil {
			return "", fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("reading %s: %v", field, err))
		}
		if len(extracted) > maxTextLength {
			return "", fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%s is too long", field))
		}
		return extracted, nil
	}

	if trimmed := strings.TrimSpace(text); trimmed != "" {
		return trimmed, nil
	}

	return sample, nil
}

func uploadedFile(c *fiber.Ctx, field string) *multipart.FileHeader {
	if !strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		return nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}

	files := form.File[field]
	if len(files) == 0 || files[0].Size == 0 {
		return nil
	}

	return files[0]
}

func readUpload(file *multipart.FileHeader) (string, error) {
	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}

	return document.Extract(file.Filename, data)
}

func validationMessage(err error) string {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		return fmt.Sprintf("validation error: %s - %s", errs[0].Field(), errs[0].Tag())
	}
	return "validation error: invalid request"
}
