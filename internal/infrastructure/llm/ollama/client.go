package ollama

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
	"github.com/kirillkom/acceptance-verifier/internal/core/ports"
	"github.com/kirillkom/acceptance-verifier/internal/infrastructure/resilience"
	"github.com/kirillkom/acceptance-verifier/internal/infrastructure/summary"
)

type Client struct {
	baseURL    string
	genModel   string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, genModel string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		genModel:   genModel,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		executor:   executor,
	}
}

// Summarizer asks the generation model for a Markdown summary and renders it
// to HTML.
type Summarizer struct {
	client *Client
}

var _ ports.Summarizer = (*Summarizer)(nil)

func NewSummarizer(client *Client) *Summarizer {
	return &Summarizer{client: client}
}

func (s *Summarizer) Summarize(ctx context.Context, texts []string, classes []domain.Category) (string, error) {
	md, err := s.client.generateText(ctx, buildSummaryPrompt(texts, classes))
	if err != nil {
		return "", err
	}
	if md == "" {
		return "", nil
	}
	return summary.RenderMarkdown(md)
}

// summaryTokenBudget bounds the generated Markdown; the report only shows a
// short digest.
const summaryTokenBudget = 512

func (c *Client) generateText(ctx context.Context, prompt string) (string, error) {
	payload := generateRequest{
		Model:  c.genModel,
		Prompt: prompt,
		Options: generateOptions{
			Temperature: 0,
			NumPredict:  summaryTokenBudget,
		},
	}

	var response generateResponse
	call := func(ctx context.Context) error {
		var err error
		response, err = c.postGenerate(ctx, payload)
		return err
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "ollama.generate", call, ollamaRules.Classify)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", ollamaRules.WrapTemporary("ollama generate", err)
	}
	return strings.TrimSpace(response.Response), nil
}
