package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shouni/go-storyboard-kit/internal/pipeline"
)

// generateCmd は、音声からの全フェーズ実行（解析・画像生成・公開）を行うのだ。
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "音声から絵コンテと画像を一気に生成するのだ。",
	Long: `音声ファイルを解析して絵コンテを作り、リファレンス画像とシーン画像を順番に生成するのだ。
出力は絵コンテJSON、概要Markdown、および画像ファイル群になるのだよ。`,
	RunE: generateCommand,
}

func generateCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if opts.AudioFile == "" {
		return fmt.Errorf("音声ファイル（--audio-file）を指定してほしいのだ")
	}

	cfg := loadRunConfig()

	slog.Info("絵コンテ生成パイプラインを起動するのだ！",
		"audio", opts.AudioFile,
		"mode", opts.Mode,
		"text_model", cfg.GeminiModel,
		"image_model", cfg.GeminiImageModel,
		"output_dir", opts.OutputDir)

	return pipeline.Execute(ctx, cfg)
}
