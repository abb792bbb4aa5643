package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shouni/go-storyboard-kit/internal/pipeline"
)

// renderCmd は、既存の絵コンテJSONを読み込んで画像生成フェーズだけを実行するのだ。
// 音声解析をスキップして、リファレンス画像生成（Phase 2）とシーン描画（Phase 3）のみを行うのだ。
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "絵コンテJSONから画像を生成して保存するのだ。",
	Long: `すでに生成・修正済みの絵コンテJSONを読み込み、リファレンス画像とシーン画像の生成・保存を実行するのだ。
音声解析のコストを抑えつつ、画像の再生成や調整を行いたい場合に便利なのだ。`,
	RunE: renderCommand,
}

func renderCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if opts.ScriptFile == "" {
		return fmt.Errorf("読み込む絵コンテJSON（--script-file）を指定してほしいのだ")
	}

	cfg := loadRunConfig()

	slog.Info("画像生成モードを起動するのだ！",
		"input_json", opts.ScriptFile,
		"image_model", cfg.GeminiImageModel,
		"output_dir", opts.OutputDir)

	return pipeline.ExecuteRenderOnly(ctx, cfg)
}
