package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shouni/go-storyboard-kit/internal/config"
	"github.com/shouni/go-storyboard-kit/internal/pipeline"
)

// analyzeCmd は、Phase 1（音声解析）だけを実行して絵コンテJSONを保存するのだ。
// 生成されたJSONを手で調整してから render に渡す二段構えのワークフロー用なのだ。
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "音声を解析して絵コンテJSONだけを生成するのだ。",
	Long: `音声ファイルをGeminiで解析し、タイトル・画風・繰り返し要素・シーン列を持つ
絵コンテJSONを保存するのだ。画像生成は行わないのだよ。`,
	RunE: analyzeCommand,
}

func init() {
	analyzeCmd.Flags().StringVar(&opts.OutputFile, "output-file", "", "絵コンテJSONの保存先なのだ（省略時は出力ディレクトリ直下）。")
}

func analyzeCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if opts.AudioFile == "" {
		return fmt.Errorf("音声ファイル（--audio-file）を指定してほしいのだ")
	}

	if opts.OutputFile == "" {
		opts.OutputFile = filepath.Join(opts.OutputDir, config.DefaultStoryboardName)
	}

	cfg := loadRunConfig()

	slog.Info("音声解析モードを起動するのだ！",
		"audio", opts.AudioFile,
		"mode", opts.Mode,
		"model", cfg.GeminiModel,
		"output_file", opts.OutputFile)

	return pipeline.ExecuteAnalyzeOnly(ctx, cfg)
}
