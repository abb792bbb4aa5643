package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shouni/go-storyboard-kit/internal/config"
	"github.com/shouni/go-storyboard-kit/internal/pipeline"
)

// serveCmd は、ブラウザ向けのHTTPプレゼンテーション層を起動するのだ。
// 音声のアップロードを受け付け、進行状況をSSEでストリーム配信するのだよ。
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "HTTPサーバーを起動して絵コンテ生成APIを公開するのだ。",
	Long: `音声アップロード（POST /api/runs）、状態取得（GET /api/state）、
スナップショットのSSE配信（GET /api/events）、リセット（POST /api/reset）、
生成画像の配信（GET /api/images/{name}）を提供するのだ。`,
	RunE: serveCommand,
}

func init() {
	serveCmd.Flags().IntVarP(&opts.Port, "port", "p", config.DefaultPort, "待ち受けポートなのだ。")
}

func serveCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := loadRunConfig()

	slog.Info("サーバーモードを起動するのだ！",
		"port", opts.Port,
		"text_model", cfg.GeminiModel,
		"image_model", cfg.GeminiImageModel)

	return pipeline.ExecuteServe(ctx, cfg)
}
