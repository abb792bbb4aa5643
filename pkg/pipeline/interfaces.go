package pipeline

import (
	"context"
	"errors"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

// GenerationClient は絵コンテ生成に必要な2種類の外部呼び出しを定義するのだ。
// 本番では pkg/vision の Client がこれを満たし、テストではスクリプト化したフェイクを注入します。
type GenerationClient interface {
	// AnalyzeAudio は音声を解析してシーン整列済みの絵コンテを返します。
	AnalyzeAudio(ctx context.Context, audio []byte, mimeType string) (*domain.Storyboard, error)
	// GenerateImage はプロンプトと参照画像から1枚の画像を生成します。
	GenerateImage(ctx context.Context, prompt string, refs []domain.ImageBlob) (*domain.ImageBlob, error)
}

// AssetSink は生成直後の画像を永続化し、絵コンテに記録するハンドル（パスやURL）を返します。
// nil シンクも許容され、その場合 ImageURL は空のままメモリ上の Image だけが保持されます。
type AssetSink interface {
	// SaveElement はリファレンス画像を保存し、そのハンドルを返します。
	SaveElement(ctx context.Context, el domain.VisualElement, blob domain.ImageBlob) (string, error)
	// SaveScene はシーン画像を保存し、そのハンドルを返します。index はシーンの連番です。
	SaveScene(ctx context.Context, index int, sc domain.Scene, blob domain.ImageBlob) (string, error)
}

var (
	// ErrNotAudio は入力の宣言メディアタイプが audio/* でないことを示します。
	// ネットワーク呼び出しに入る前に検出され、パイプラインは Idle のままです。
	ErrNotAudio = errors.New("pipeline: 音声ファイルではありません（audio/* のメディアタイプが必要です）")

	// ErrRunActive は実行中のパイプラインに対する二重起動を示します。
	ErrRunActive = errors.New("pipeline: 別の実行が進行中です。Reset してから再実行してください")
)
