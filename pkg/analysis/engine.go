package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"charterlens/internal/model"
	"charterlens/pkg/config"
	"charterlens/pkg/logger"
)

const (
	maxRetries = 3
	baseDelay  = 2 * time.Second
)

// Engine produces the weekly trend analysis by prompting a chat model
// for strict JSON. A response that cannot be parsed into a full
// AnalysisResult is an error; callers never see a partial analysis.
type Engine struct {
	chatModel einomodel.BaseChatModel
	limiter   *rate.Limiter
}

// NewEngine creates an analysis engine backed by an OpenAI-compatible endpoint
func NewEngine(ctx context.Context, cfg *config.AnalysisConfig) (*Engine, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize analysis model: %w", err)
	}

	return NewEngineWithModel(chatModel, cfg.RPM), nil
}

// NewEngineWithModel wires an engine onto an existing chat model
func NewEngineWithModel(chatModel einomodel.BaseChatModel, rpm int) *Engine {
	if rpm <= 0 {
		rpm = 10
	}
	return &Engine{
		chatModel: chatModel,
		limiter:   rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
	}
}

// Analyze sends the run's metrics plus site context to the model and
// parses the structured result.
func (e *Engine) Analyze(ctx context.Context, input *model.AnalysisInput) (*model.AnalysisResult, error) {
	if input == nil || input.CurrentWeek == nil {
		return nil, fmt.Errorf("analysis input requires current week data")
	}

	userPrompt, err := buildPrompt(input)
	if err != nil {
		return nil, err
	}

	messages := []*schema.Message{
		{Role: schema.System, Content: systemPrompt},
		{Role: schema.User, Content: userPrompt},
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := e.chatModel.Generate(ctx, messages)
		if err != nil {
			if isRateLimited(err) && attempt < maxRetries {
				lastErr = err
				delay := baseDelay * time.Duration(1<<attempt)
				logger.WarnCtx(ctx, "analysis model rate limited, retrying in %v: %v", delay, err)
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(delay):
				}
				continue
			}
			return nil, fmt.Errorf("analysis model call failed: %w", err)
		}

		result, err := parseResult(resp.Content)
		if err != nil {
			lastErr = err
			if attempt < maxRetries {
				logger.WarnCtx(ctx, "analysis response unparseable, regenerating: %v", err)
				continue
			}
			return nil, err
		}
		return result, nil
	}

	return nil, fmt.Errorf("analysis failed after %d retries: %w", maxRetries, lastErr)
}

// parseResult strips markdown fences and decodes the strict JSON contract
func parseResult(content string) (*model.AnalysisResult, error) {
	clean := strings.TrimSpace(content)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	var result model.AnalysisResult
	if err := json.Unmarshal([]byte(clean), &result); err != nil {
		return nil, fmt.Errorf("failed to parse analysis response: %w", err)
	}

	if strings.TrimSpace(result.Summary) == "" {
		return nil, fmt.Errorf("analysis response missing summary")
	}
	for i, h := range result.Hypotheses {
		if strings.TrimSpace(h.Title) == "" {
			return nil, fmt.Errorf("analysis hypothesis %d missing title", i)
		}
	}

	return &result, nil
}

func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "too many requests")
}
