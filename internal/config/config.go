package config

import (
	"time"

	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義なのだ
const (
	DefaultModel       = "gemini-2.5-flash"
	DefaultImageModel  = "gemini-2.5-flash-image"
	DefaultAspectRatio = "16:9"

	// 画像生成のリトライ設定。MaxRetries は初回を除く追加試行回数なので、
	// デフォルトでは合計3回まで試行されるのだ。
	DefaultMaxRetries  = 2
	DefaultBackoffStep = 1500 * time.Millisecond

	// DefaultRateInterval は生成リクエスト間の最小間隔（0 で無効）なのだ。
	DefaultRateInterval = 0 * time.Second

	DefaultOutputDir      = "output"
	DefaultStoryboardName = "storyboard.json"       // Phase 1 完了時点の絵コンテ
	DefaultFinalName      = "storyboard_final.json" // 全画像付与後の最終版
	DefaultOverviewName   = "storyboard.md"
	DefaultElementDirName = "elements"
	DefaultSceneDirName   = "scenes"

	DefaultPort = 8787

	// 生成画像キャッシュのTTL設定
	DefaultCacheExpiration      = 30 * time.Minute
	DefaultCacheCleanupInterval = time.Hour
)

// Config はアプリケーション全体の環境設定（APIキーやモデル指定）を保持する構造体なのだ。
type Config struct {
	GeminiAPIKey      string
	GeminiModel       string
	GeminiImageModel  string
	ImagePromptSuffix string

	Options GenerateOptions
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ！
func LoadConfig() *Config {
	return &Config{
		GeminiAPIKey:      envutil.GetEnv("GEMINI_API_KEY", ""),
		GeminiModel:       envutil.GetEnv("GEMINI_MODEL", DefaultModel),
		GeminiImageModel:  envutil.GetEnv("IMAGE_GEMINI_MODEL", DefaultImageModel),
		ImagePromptSuffix: envutil.GetEnv("IMAGE_PROMPT_SUFFIX", ""),
	}
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
type GenerateOptions struct {
	// ソース入力関連
	AudioFile  string // --audio-file: 解析対象の音声ファイル
	ScriptFile string // --script-file: render コマンドで読み込む絵コンテJSON
	OutputDir  string // --output-dir
	OutputFile string // --output-file: analyze コマンドの出力先

	// AI挙動設定
	AIModel    string // --model: 音声解析用のGeminiモデル
	ImageModel string // --image-model: 画像生成用のGeminiモデル
	Mode       string // --mode: 解析プロンプトのモード

	// 実行制御
	MaxRetries   int           // --max-retries
	RateInterval time.Duration // --rate-interval
	Port         int           // --port (serve)
	LogLevel     string        // --log-level
}
