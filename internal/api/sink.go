package api

import (
	"context"
	"fmt"
	"sync"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

// MemorySink は serve モード用の pipeline.AssetSink 実装なのだ。
// 生成画像をメモリに保持し、/api/images/{name} で配信できるハンドルを返します。
// パイプラインの書き込みとHTTPハンドラの読み出しが並行するため、内部はロックで保護します。
type MemorySink struct {
	mu    sync.RWMutex
	blobs map[string]domain.ImageBlob
}

// NewMemorySink は空の MemorySink を生成します。
func NewMemorySink() *MemorySink {
	return &MemorySink{blobs: make(map[string]domain.ImageBlob)}
}

// SaveElement はリファレンス画像をメモリに登録し、配信用URLを返します。
func (s *MemorySink) SaveElement(ctx context.Context, el domain.VisualElement, blob domain.ImageBlob) (string, error) {
	name := "element_" + domain.SafeElementFileName(el.Name) + domain.ExtensionForMime(blob.MimeType)
	return s.put(name, blob), nil
}

// SaveScene はシーン画像をメモリに登録し、配信用URLを返します。
func (s *MemorySink) SaveScene(ctx context.Context, index int, sc domain.Scene, blob domain.ImageBlob) (string, error) {
	name := domain.SceneImageFileName(index, sc.Timestamp) + domain.ExtensionForMime(blob.MimeType)
	return s.put(name, blob), nil
}

// Get は登録済みの画像を名前で引きます。
func (s *MemorySink) Get(name string) (domain.ImageBlob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.blobs[name]
	return blob, ok
}

// Clear は保持中の全画像を破棄します。Reset 時に呼び出されます。
func (s *MemorySink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs = make(map[string]domain.ImageBlob)
}

func (s *MemorySink) put(name string, blob domain.ImageBlob) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[name] = blob
	return fmt.Sprintf("/api/images/%s", name)
}
