package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"delta-ai/internal/config"
	"delta-ai/internal/strategy"
)

// Client 封装 OpenAI 调用逻辑。
type Client struct {
	cfg    config.OpenAIConfig
	logger *zap.Logger
	sdk    *openai.Client
}

// NewClient 使用给定配置创建 AI 客户端。
func NewClient(cfg config.OpenAIConfig, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api_key 不能为空")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sdkConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		sdkConfig.BaseURL = cfg.BaseURL
	}
	sdkConfig.HTTPClient = &http.Client{
		Timeout: cfg.Timeout + 5*time.Second,
	}

	return &Client{
		cfg:    cfg,
		logger: logger,
		sdk:    openai.NewClientWithConfig(sdkConfig),
	}, nil
}

// GenerateStrategy 根据市场与持仓上下文获取模型产出的执行计划。
func (c *Client) GenerateStrategy(ctx context.Context, pctx PromptContext) (*strategy.Strategy, error) {
	if c.cfg.Model == "" {
		return nil, errors.New("openai model 不能为空")
	}

	prompt, err := BuildPrompt(pctx)
	if err != nil {
		return nil, err
	}

	response, err := c.sdk.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0,
	})
	if err != nil {
		c.logger.Error("调用OpenAI失败", zap.Error(err))
		return nil, fmt.Errorf("调用OpenAI失败: %w", err)
	}

	if len(response.Choices) == 0 {
		return nil, strategy.ErrNoStrategy
	}
	rawContent := strings.TrimSpace(response.Choices[0].Message.Content)
	if rawContent == "" {
		return nil, strategy.ErrNoStrategy
	}

	payload, err := extractJSON(rawContent)
	if err != nil {
		c.logger.Error("模型输出不含策略JSON",
			zap.Error(err),
			zap.String("raw_content", rawContent),
		)
		return nil, err
	}

	s, err := strategy.Parse(payload)
	if err != nil {
		c.logger.Error("解析模型策略失败",
			zap.Error(err),
			zap.String("raw_content", rawContent),
		)
		return nil, err
	}

	c.logger.Info("AI 策略生成成功",
		zap.Int("binance_orders", len(s.Exchanges.Binance.Orders)),
		zap.Int("eisen_swaps", len(s.Exchanges.Eisen.Swaps)),
	)
	return s, nil
}

func extractJSON(content string) ([]byte, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("模型输出未找到有效JSON: %s", content)
	}
	return []byte(content[start : end+1]), nil
}
