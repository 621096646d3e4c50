package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"NewsCatcher/internal/config"
	"NewsCatcher/internal/domain"
	"NewsCatcher/internal/ports"
	"NewsCatcher/pkg/textutil"
)

const defaultSystemPrompt = `你是一名产业新闻编辑。根据给定的行业新闻和融资事件，写出 3-6 条要点。
要求：
- 每条以"·"开头，一句话，不超过 40 字
- 融资或 IPO 事件优先，并在行首标注 🔥
- 只输出要点本身，不要标题、解释或代码块`

var (
	thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)
	codeFence  = regexp.MustCompile("(?m)^```[a-zA-Z]*\\s*$")
)

// Summarizer implements ports.Summarizer backed by an OpenAI-compatible chat API.
type Summarizer struct {
	client       *openai.Client
	model        string
	systemPrompt string
	maxTokens    int64
	temperature  float64
}

var _ ports.Summarizer = (*Summarizer)(nil)

// NewSummarizer builds a client from configuration. Extra options are appended
// after the configured key and base URL.
func NewSummarizer(cfg config.LLMConfig, opts ...option.RequestOption) *Summarizer {
	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	reqOpts = append(reqOpts, opts...)
	client := openai.NewClient(reqOpts...)

	maxTokens, temperature := cfg.MaxTokens, cfg.Temperature
	if maxTokens <= 0 {
		maxTokens = 500
	}
	// kimi-k2 reasoning models reject low temperatures and need room for their reasoning.
	if strings.Contains(strings.ToLower(cfg.Model), "kimi-k2") {
		maxTokens, temperature = 2048, 1
	}

	return &Summarizer{
		client:       &client,
		model:        cfg.Model,
		systemPrompt: safePrompt(cfg.SystemPrompt),
		maxTokens:    maxTokens,
		temperature:  temperature,
	}
}

// Summarize asks the model for a bulleted digest of one label.
func (s *Summarizer) Summarize(ctx context.Context, group domain.LabelGroup) (string, error) {
	if s == nil {
		return "", fmt.Errorf("summarizer is nil")
	}
	if len(group.Items) == 0 && len(group.Funding) == 0 {
		return "", nil
	}

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(s.systemPrompt),
			openai.UserMessage(BuildPrompt(group)),
		},
		MaxTokens:   openai.Int(s.maxTokens),
		Temperature: openai.Float(s.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("summarize %s: %w", group.Label, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("summarize %s: empty response", group.Label)
	}

	return CleanOutput(resp.Choices[0].Message.Content), nil
}

// BuildPrompt renders the label's news and funding events as the user message.
func BuildPrompt(group domain.LabelGroup) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "行业：%s\n\n", group.Label)

	if len(group.Funding) > 0 {
		sb.WriteString("融资/IPO 事件：\n")
		for _, ev := range group.Funding {
			fmt.Fprintf(&sb, "- [%s] %s | 公司：%s | 轮次：%s | 金额：%s\n",
				ev.Kind, ev.Title, orUnknown(ev.Company), orUnknown(ev.Round), orUnknown(ev.Amount))
		}
		sb.WriteString("\n")
	}

	if len(group.Items) > 0 {
		sb.WriteString("新闻：\n")
		for i, item := range group.Items {
			fmt.Fprintf(&sb, "%d. %s（%s）\n", i+1, item.Title, item.Source)
			if item.Snippet != "" {
				fmt.Fprintf(&sb, "   摘要：%s\n", textutil.TruncateRunes(item.Snippet, 150))
			}
		}
	}

	return strings.TrimSpace(sb.String())
}

// CleanOutput drops reasoning blocks and markdown fences some models emit.
func CleanOutput(s string) string {
	s = thinkBlock.ReplaceAllString(s, "")
	s = codeFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func orUnknown(v string) string {
	if v == "" {
		return "未知"
	}
	return v
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return defaultSystemPrompt
	}
	return prompt
}
