package publisher

import (
	"context"
	"fmt"
	"path"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

const (
	elementDirName = "elements"
	sceneDirName   = "scenes"
)

// AssetStore は生成画像の保存パスと永続化を管理します。
// pipeline.AssetSink を満たし、パイプラインが画像を生成するたびに1枚ずつ保存していきます。
type AssetStore struct {
	writer  OutputWriter
	baseDir string // 保存先のベースディレクトリ (例: "output")
}

// NewAssetStore は AssetStore を生成します。
func NewAssetStore(writer OutputWriter, baseDir string) *AssetStore {
	return &AssetStore{
		writer:  writer,
		baseDir: baseDir,
	}
}

// SaveElement はリファレンス画像を elements/ 以下に保存し、ベースディレクトリからの相対パスを返します。
func (s *AssetStore) SaveElement(ctx context.Context, el domain.VisualElement, blob domain.ImageBlob) (string, error) {
	name := domain.SafeElementFileName(el.Name) + domain.ExtensionForMime(blob.MimeType)
	relPath := path.Join(elementDirName, name)

	if err := s.writer.Write(ctx, ResolveOutputPath(s.baseDir, relPath), blob.Data); err != nil {
		return "", fmt.Errorf("asset_store: リファレンス画像の保存に失敗しました (%s): %w", el.Name, err)
	}
	return relPath, nil
}

// SaveScene はシーン画像を scenes/ 以下に保存し、ベースディレクトリからの相対パスを返します。
func (s *AssetStore) SaveScene(ctx context.Context, index int, sc domain.Scene, blob domain.ImageBlob) (string, error) {
	name := domain.SceneImageFileName(index, sc.Timestamp) + domain.ExtensionForMime(blob.MimeType)
	relPath := path.Join(sceneDirName, name)

	if err := s.writer.Write(ctx, ResolveOutputPath(s.baseDir, relPath), blob.Data); err != nil {
		return "", fmt.Errorf("asset_store: シーン画像の保存に失敗しました (index: %d): %w", index, err)
	}
	return relPath, nil
}
