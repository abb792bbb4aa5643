package builder

import (
	"context"
	"fmt"

	"github.com/patrickmn/go-cache"

	"github.com/shouni/go-storyboard-kit/internal/config"
	"github.com/shouni/go-storyboard-kit/internal/prompt"
	"github.com/shouni/go-storyboard-kit/pkg/pipeline"
	"github.com/shouni/go-storyboard-kit/pkg/prompts"
	"github.com/shouni/go-storyboard-kit/pkg/vision"
)

// BuildVisionClient は設定からGemini生成クライアントを構築するのだ。
// 解析プロンプトは --mode で選択された埋め込みテンプレートから解決します。
func BuildVisionClient(ctx context.Context, cfg *config.Config) (*vision.Client, error) {
	analysisPrompt, err := prompt.GetPromptByMode(cfg.Options.Mode)
	if err != nil {
		return nil, fmt.Errorf("解析プロンプトの解決に失敗したのだ: %w", err)
	}

	imgCache := cache.New(config.DefaultCacheExpiration, config.DefaultCacheCleanupInterval)

	client, err := vision.New(ctx, vision.Config{
		APIKey:         cfg.GeminiAPIKey,
		AnalysisModel:  cfg.GeminiModel,
		ImageModel:     cfg.GeminiImageModel,
		AspectRatio:    config.DefaultAspectRatio,
		AnalysisPrompt: analysisPrompt,
		MaxRetries:     cfg.Options.MaxRetries,
		BackoffStep:    config.DefaultBackoffStep,
		Cache:          imgCache,
	})
	if err != nil {
		return nil, fmt.Errorf("生成クライアントの初期化に失敗したのだ: %w", err)
	}
	return client, nil
}

// BuildOrchestrator は生成クライアントと保存先シンクからオーケストレーターを構築するのだ。
func BuildOrchestrator(cfg *config.Config, client pipeline.GenerationClient, sink pipeline.AssetSink) *pipeline.Orchestrator {
	return pipeline.New(pipeline.Config{
		Client:       client,
		Prompts:      prompts.NewBuilder(cfg.ImagePromptSuffix),
		Sink:         sink,
		RateInterval: cfg.Options.RateInterval,
	})
}
