package generation

import (
	"context"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/RentoYabuki06/wikipedia-rag/internal/domain"
)

// Generator produces answer text from a question and its retrieved
// context via a chat completion model. It is the external collaborator
// downstream of the retrieval core: callers hand it a non-empty,
// best-first candidate list and render the result. It must never be
// invoked with zero evidence.
type Generator struct {
	client          *openai.Client
	model           string
	maxTokens       int
	maxContexts     int
	maxContextChars int
}

const systemPrompt = "以下は質問応答タスクです。与えられた文脈を参考にして、質問に日本語で回答してください。文脈にない情報は推測せず、その旨を述べてください。"

func NewGenerator(apiKeyEnv, model string, maxTokens, maxContexts, maxContextChars int) (*Generator, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key not found in environment variable %s", domain.ErrModelLoad, apiKeyEnv)
	}
	if maxContexts <= 0 {
		maxContexts = 2
	}
	if maxContextChars <= 0 {
		maxContextChars = 200
	}

	return &Generator{
		client:          openai.NewClient(apiKey),
		model:           model,
		maxTokens:       maxTokens,
		maxContexts:     maxContexts,
		maxContextChars: maxContextChars,
	}, nil
}

// GenerateAnswer builds the prompt from the top candidates, runs the
// model and appends the source reference footer.
func (g *Generator) GenerateAnswer(ctx context.Context, question string, candidates []domain.RankedCandidate) (string, error) {
	if len(candidates) == 0 {
		return "", fmt.Errorf("generate answer: no context candidates")
	}

	prompt := g.buildPrompt(question, candidates)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty response")
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	return answer + sourceReferences(candidates), nil
}

func (g *Generator) ModelName() string {
	return g.model
}

// buildPrompt numbers the contexts and caps both their count and their
// individual length so the prompt stays within budget.
func (g *Generator) buildPrompt(question string, candidates []domain.RankedCandidate) string {
	n := len(candidates)
	if n > g.maxContexts {
		n = g.maxContexts
	}

	var b strings.Builder
	b.WriteString("【文脈】\n")
	for i := 0; i < n; i++ {
		text := candidates[i].Text
		if runes := []rune(text); len(runes) > g.maxContextChars {
			text = string(runes[:g.maxContextChars])
		}
		fmt.Fprintf(&b, "[%d] %s\n\n", i, text)
	}
	fmt.Fprintf(&b, "【質問】\n%s\n\n【回答】", question)
	return b.String()
}

// sourceReferences formats the citation footer as <source>#chunk=<n>.
func sourceReferences(candidates []domain.RankedCandidate) string {
	var b strings.Builder
	b.WriteString("\n\n【参照元】\n")
	for i, c := range candidates {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s#chunk=%d", c.Source, c.ChunkID)
	}
	return b.String()
}
