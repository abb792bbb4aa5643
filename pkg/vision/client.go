package vision

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"google.golang.org/genai"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

// ContentGenerator は genai クライアントのうち本パッケージが依存する最小の操作なのだ。
// 本番では client.Models がこれを満たし、テストではフェイクを注入します。
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config は生成クライアントの動作設定です。
type Config struct {
	APIKey         string
	AnalysisModel  string        // 音声解析に使うモデル
	ImageModel     string        // 画像生成に使うモデル
	AspectRatio    string        // 生成画像のアスペクト比（例: "16:9"）
	AnalysisPrompt string        // 音声に添付する固定の解析指示
	MaxRetries     int           // 画像生成の追加試行回数
	BackoffStep    time.Duration // 線形バックオフの刻み幅
	Cache          *cache.Cache  // 生成画像のメモ化（nil で無効）
}

// Client は Gemini API への2種類の呼び出し（音声解析・画像生成）を担う生成クライアントです。
type Client struct {
	models      ContentGenerator
	cfg         Config
	retry       retryPolicy
	temperature float32
}

// New は APIキーから genai クライアントを構築して Client を返します。
// APIキーが空の場合は構築エラーになります。
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("vision: GEMINI_API_KEY が設定されていません")
	}

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("vision: genai クライアントの初期化に失敗しました: %w", err)
	}

	return NewWithGenerator(genaiClient.Models, cfg), nil
}

// NewWithGenerator は任意の ContentGenerator を注入して Client を構築します。テスト用の入口でもあります。
func NewWithGenerator(gen ContentGenerator, cfg Config) *Client {
	return &Client{
		models:      gen,
		cfg:         cfg,
		retry:       newRetryPolicy(cfg.MaxRetries, cfg.BackoffStep),
		temperature: 0.4,
	}
}

// AnalyzeAudio は音声ペイロードを解析し、シーンをタイムスタンプ昇順に整列済みの絵コンテを返します。
// 解析の失敗は ErrAnalysis をラップした回復不能エラーとなり、リトライは行いません。
func (c *Client) AnalyzeAudio(ctx context.Context, audio []byte, mimeType string) (*domain.Storyboard, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(audio, mimeType),
			genai.NewPartFromText(c.cfg.AnalysisPrompt),
		}, genai.RoleUser),
	}

	resp, err := c.models.GenerateContent(ctx, c.cfg.AnalysisModel, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   storyboardSchema,
		Temperature:      genai.Ptr(c.temperature),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysis, err)
	}

	raw := stripJSONFence(resp.Text())
	if raw == "" {
		return nil, fmt.Errorf("%w: 応答にテキストが含まれていません", ErrAnalysis)
	}

	var sb domain.Storyboard
	if err := json.Unmarshal([]byte(raw), &sb); err != nil {
		return nil, fmt.Errorf("%w: JSONのデコードに失敗しました: %v", ErrAnalysis, err)
	}
	if err := sb.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysis, err)
	}

	// モデルはシーンの順序を保証しないため、ここで正規化してから正とする
	sb.SortScenes()

	slog.Debug("音声解析が完了しました",
		"title", sb.Title,
		"elements", len(sb.ProductionDesign.RecurringElements),
		"scenes", len(sb.Scenes))

	return &sb, nil
}

// GenerateImage はプロンプトと参照画像から1枚の画像を生成します。
// 候補なし・画像なし・通信エラーはいずれも線形バックオフでリトライされ、
// 試行をすべて使い切った場合は最後のエラーを ErrGeneration にラップして返します。
func (c *Client) GenerateImage(ctx context.Context, prompt string, refs []domain.ImageBlob) (*domain.ImageBlob, error) {
	cacheKey := c.imageCacheKey(prompt, refs)
	if c.cfg.Cache != nil {
		if cached, ok := c.cfg.Cache.Get(cacheKey); ok {
			slog.Debug("キャッシュ済みの生成画像を再利用します", "key", cacheKey[:12])
			return cached.(*domain.ImageBlob), nil
		}
	}

	var blob *domain.ImageBlob
	err := c.retry.Do(ctx, func(attempt int) error {
		result, attemptErr := c.generateImageAttempt(ctx, prompt, refs)
		if attemptErr != nil {
			slog.Warn("画像生成の試行が失敗しました",
				"attempt", attempt,
				"max_attempts", c.retry.MaxRetries+1,
				"error", attemptErr)
			return attemptErr
		}
		blob = result
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	if c.cfg.Cache != nil {
		c.cfg.Cache.Set(cacheKey, blob, cache.DefaultExpiration)
	}
	return blob, nil
}

// generateImageAttempt は画像生成を1回だけ試行します。
// 参照画像をインラインパートとして先に並べ、テキストプロンプトを最後に置きます。
func (c *Client) generateImageAttempt(ctx context.Context, prompt string, refs []domain.ImageBlob) (*domain.ImageBlob, error) {
	parts := make([]*genai.Part, 0, len(refs)+1)
	for _, ref := range refs {
		parts = append(parts, genai.NewPartFromBytes(ref.Data, ref.MimeType))
	}
	parts = append(parts, genai.NewPartFromText(prompt))

	resp, err := c.models.GenerateContent(ctx, c.cfg.ImageModel,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{
			ResponseModalities: []string{"IMAGE", "TEXT"},
			ImageConfig:        &genai.ImageConfig{AspectRatio: c.cfg.AspectRatio},
		})
	if err != nil {
		return nil, err
	}

	if len(resp.Candidates) == 0 {
		return nil, ErrNoCandidate
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return nil, ErrNoImageData
	}
	for _, part := range candidate.Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return &domain.ImageBlob{
				Data:     part.InlineData.Data,
				MimeType: part.InlineData.MIMEType,
			}, nil
		}
	}
	return nil, ErrNoImageData
}

// imageCacheKey はモデル・プロンプト・参照画像の内容からキャッシュキーを導出します。
func (c *Client) imageCacheKey(prompt string, refs []domain.ImageBlob) string {
	h := sha256.New()
	h.Write([]byte(c.cfg.ImageModel))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	for _, ref := range refs {
		h.Write([]byte{0})
		h.Write(ref.Data)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// stripJSONFence は応答テキストを囲む ```json フェンスを取り除きます。
func stripJSONFence(text string) string {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}
