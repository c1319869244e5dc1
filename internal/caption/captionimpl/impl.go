package captionimpl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/orgball2608/insta-daily-poster/internal/caption"
	"github.com/orgball2608/insta-daily-poster/internal/domain"
	"github.com/orgball2608/insta-daily-poster/internal/events"
	"github.com/orgball2608/insta-daily-poster/pkg/config"
	"github.com/orgball2608/insta-daily-poster/pkg/formatter"
	"github.com/orgball2608/insta-daily-poster/pkg/logger"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/fx"
)

const (
	fallbackLimit    = 30
	fallbackKeep     = 28
	fallbackHashtags = "#art #aiart #digitalart #illustration #creative #visualart #artwork #instaart #design"
)

const promptTemplate = `
請根據以下圖片描述，幫我生成一段簡短的 IG 發文文字（10~25字內），
語氣自然、有意境，文字盡量白話文不要太文言文，
並在文末加上最多20個 hashtag（# 開頭、用空格分隔、有的用中文有的用英文、請用常見的名詞）。

圖片描述：
%s
`

var errEmptyCompletion = errors.New("completion has no content")

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
	Events events.Sink
}

type CaptionImpl struct {
	client    *openai.Client
	model     string
	maxTokens int
	logger    logger.Logger
	events    events.Sink
}

var _ caption.Generator = (*CaptionImpl)(nil)

func New(opts Opts) *CaptionImpl {
	clientCfg := openai.DefaultConfig(opts.Config.Caption.APIKey)
	clientCfg.BaseURL = strings.TrimRight(opts.Config.Caption.APIURL, "/")
	clientCfg.HTTPClient = &http.Client{
		Timeout:   opts.Config.Caption.Timeout,
		Transport: &extraBodyTransport{base: http.DefaultTransport, extra: chatTemplateKwargs},
	}

	return &CaptionImpl{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     opts.Config.Caption.Model,
		maxTokens: opts.Config.Caption.MaxTokens,
		logger:    opts.Logger.WithComponent("Caption"),
		events:    opts.Events,
	}
}

func (c *CaptionImpl) Generate(ctx context.Context, prompt string) string {
	cleaned := strings.TrimSpace(prompt)
	if cleaned == "" {
		return ""
	}

	text, err := c.complete(ctx, cleaned)
	if err != nil {
		c.logger.Warn("Caption generation failed, using fallback", "error", err)
		c.events.Emit(ctx, domain.NewEvent(domain.EventCaptionFallback, "error", err.Error()))
		return Fallback(cleaned)
	}

	c.logger.Debug("Caption generated", "caption", formatter.Preview(text, 140))
	return text
}

// complete makes exactly one chat completion call.
func (c *CaptionImpl) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(promptTemplate, prompt)},
		},
		Temperature: 1,
		TopP:        1,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyCompletion
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errEmptyCompletion
	}
	return text, nil
}

// Fallback builds the local caption: the prompt cut to a short preview plus a fixed hashtag set.
func Fallback(prompt string) string {
	short := formatter.Truncate(strings.TrimSpace(prompt), fallbackLimit, fallbackKeep, "…")
	return short + "\n" + fallbackHashtags
}
