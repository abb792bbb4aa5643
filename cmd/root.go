package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/shouni/go-storyboard-kit/internal/config"
	"github.com/shouni/go-storyboard-kit/internal/prompt"
)

// opts は全コマンド共通の実行時パラメータなのだ。
var opts config.GenerateOptions

var rootCmd = &cobra.Command{
	Use:   "ap-storyboard-go",
	Short: "音声からAI生成画像の絵コンテを作るツールなのだ。",
	Long: `音声ファイルをGeminiで解析して絵コンテ（タイトル・画風・繰り返し要素・シーン列）を作り、
リファレンス画像とシーン画像を順番に生成して音声に同期したビジュアルを完成させるのだ。`,
	PersistentPreRunE: preRunAppE,
	SilenceUsage:      true,
}

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags() {
	// --- ソース入力関連 ---
	rootCmd.PersistentFlags().StringVarP(&opts.AudioFile, "audio-file", "f", "", "解析する音声ファイルのパスなのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.ScriptFile, "script-file", "", "render で読み込む絵コンテJSONのパスなのだ。")

	// --- 生成結果の出力設定 ---
	rootCmd.PersistentFlags().StringVarP(&opts.OutputDir, "output-dir", "o", config.DefaultOutputDir, "成果物を保存するディレクトリなのだ。")

	// --- AIモデル・挙動設定 ---
	rootCmd.PersistentFlags().StringVarP(&opts.Mode, "mode", "m", prompt.ModeCinematic, "音声解析プロンプトのモードなのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.AIModel, "model", config.DefaultModel, "音声解析に使う Gemini モデル名なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.ImageModel, "image-model", config.DefaultImageModel, "画像生成に使う Gemini モデル名なのだ。")

	// --- 実行制御 ---
	rootCmd.PersistentFlags().IntVar(&opts.MaxRetries, "max-retries", config.DefaultMaxRetries, "画像生成の追加リトライ回数なのだ。")
	rootCmd.PersistentFlags().DurationVar(&opts.RateInterval, "rate-interval", config.DefaultRateInterval, "生成リクエスト間の最小間隔なのだ（0で無効）。")
	rootCmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "ログレベル（debug/info/warn/error）なのだ。")
}

// preRunAppE は、コマンド実行前にログ設定と環境変数の必須チェックを行うのだ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	setupLogger(opts.LogLevel)

	// Gemini APIを利用するため、APIキーの存在チェックは欠かせないのだ！
	if os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("エラー: 環境変数 GEMINI_API_KEY が設定されていません。Gemini APIの利用には必須なのだ")
	}

	return nil
}

// setupLogger は指定レベルの色付きハンドラをデフォルトロガーに設定します。
func setupLogger(level string) {
	var lv slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lv = slog.LevelDebug
	case "warn":
		lv = slog.LevelWarn
	case "error":
		lv = slog.LevelError
	default:
		lv = slog.LevelInfo
	}

	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      lv,
			TimeFormat: "15:04:05",
		}),
	))
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	addAppFlags()
	rootCmd.AddCommand(
		generateCmd,
		analyzeCmd,
		renderCmd,
		serveCmd,
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadRunConfig は環境変数とフラグをマージした実行設定を作るのだ。
func loadRunConfig() *config.Config {
	cfg := config.LoadConfig()
	cfg.GeminiModel = opts.AIModel
	cfg.GeminiImageModel = opts.ImageModel
	cfg.Options = opts
	return cfg
}
