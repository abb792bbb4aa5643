package publisher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// OutputWriter はデータを外部ストレージに保存するためのインターフェースです。
// ローカル以外（GCS等）の実装を差し込む余地を残すために切り出してあります。
type OutputWriter interface {
	Write(ctx context.Context, path string, data []byte) error
}

// LocalWriter はローカルファイルシステムへの OutputWriter 実装なのだ。
type LocalWriter struct{}

// NewLocalWriter は LocalWriter を生成します。
func NewLocalWriter() *LocalWriter {
	return &LocalWriter{}
}

// Write は親ディレクトリを作成してからファイルを書き込みます。
func (w *LocalWriter) Write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("publisher: ディレクトリの作成に失敗しました: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("publisher: ファイルの書き込みに失敗しました: %w", err)
	}
	return nil
}

// ResolveOutputPath は、ベースディレクトリとファイル名から最終的な出力パスを生成します。
func ResolveOutputPath(baseDir, fileName string) string {
	if baseDir == "" {
		return fileName
	}
	return filepath.Join(baseDir, fileName)
}
