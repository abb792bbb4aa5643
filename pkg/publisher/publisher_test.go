package publisher

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

func testStoryboard() *domain.Storyboard {
	return &domain.Storyboard{
		Title: "Midnight Drive",
		ProductionDesign: domain.ProductionDesign{
			ArtStyle: "noir",
			RecurringElements: []domain.VisualElement{
				{Name: "Hero Car", Description: "a black coupe",
					Image: &domain.ImageBlob{Data: []byte{1, 2}, MimeType: "image/png"}},
			},
		},
		Scenes: []domain.Scene{
			{Timestamp: 0, Description: "engine start", VisualPrompt: "v1",
				Image: &domain.ImageBlob{Data: []byte{3, 4}, MimeType: "image/png"}},
			{Timestamp: 12.5, Description: "night highway", VisualPrompt: "v2",
				Image: &domain.ImageBlob{Data: []byte{5, 6}, MimeType: "image/png"}},
		},
	}
}

func TestAssetStore(t *testing.T) {
	dir := t.TempDir()
	store := NewAssetStore(NewLocalWriter(), dir)
	ctx := context.Background()

	t.Run("要素画像は elements/ 以下に保存されるのだ", func(t *testing.T) {
		el := domain.VisualElement{Name: "Hero Car"}
		blob := domain.ImageBlob{Data: []byte{1}, MimeType: "image/png"}

		rel, err := store.SaveElement(ctx, el, blob)
		if err != nil {
			t.Fatalf("想定外のエラーなのだ: %v", err)
		}
		if rel != "elements/Hero_Car.png" {
			t.Errorf("相対パスが違うのだ: %s", rel)
		}
		if _, err := os.Stat(filepath.Join(dir, rel)); err != nil {
			t.Errorf("ファイルが存在しないのだ: %v", err)
		}
	})

	t.Run("シーン画像は連番とタイムスタンプ付きで保存されるのだ", func(t *testing.T) {
		sc := domain.Scene{Timestamp: 12.5}
		blob := domain.ImageBlob{Data: []byte{2}, MimeType: "image/png"}

		rel, err := store.SaveScene(ctx, 3, sc, blob)
		if err != nil {
			t.Fatalf("想定外のエラーなのだ: %v", err)
		}
		if rel != "scenes/scene_003_0012_5s.png" {
			t.Errorf("相対パスが違うのだ: %s", rel)
		}
		if _, err := os.Stat(filepath.Join(dir, rel)); err != nil {
			t.Errorf("ファイルが存在しないのだ: %v", err)
		}
	})
}

func TestStoryboardPublisher_PublishPlan(t *testing.T) {
	dir := t.TempDir()
	pub := NewStoryboardPublisher(NewLocalWriter(), dir)

	sb := testStoryboard()
	path, err := pub.PublishPlan(context.Background(), sb)
	if err != nil {
		t.Fatalf("想定外のエラーなのだ: %v", err)
	}
	if filepath.Base(path) != "storyboard.json" {
		t.Errorf("ファイル名が違うのだ: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("読み込み失敗なのだ: %v", err)
	}
	var decoded domain.Storyboard
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("JSONとして読めないのだ: %v", err)
	}
	if decoded.Title != "Midnight Drive" || len(decoded.Scenes) != 2 {
		t.Errorf("内容が欠けているのだ: %+v", decoded)
	}
}

func TestStoryboardPublisher_PublishFinal(t *testing.T) {
	dir := t.TempDir()
	pub := NewStoryboardPublisher(NewLocalWriter(), dir)

	sb := testStoryboard()
	result, err := pub.PublishFinal(context.Background(), sb)
	if err != nil {
		t.Fatalf("想定外のエラーなのだ: %v", err)
	}

	// ImageURL 未記録の画像は flush で書き出され、ハンドルが記録される
	if sb.ProductionDesign.RecurringElements[0].ImageURL == "" {
		t.Error("要素画像のハンドルが記録されていないのだ")
	}
	for i, sc := range sb.Scenes {
		if sc.ImageURL == "" {
			t.Errorf("シーン %d の画像ハンドルが記録されていないのだ", i)
		}
	}
	if len(result.ImagePaths) != 3 {
		t.Errorf("画像パス数が違うのだ: %d", len(result.ImagePaths))
	}
	for _, p := range result.ImagePaths {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("画像ファイルが存在しないのだ: %s", p)
		}
	}

	if filepath.Base(result.JSONPath) != "storyboard_final.json" {
		t.Errorf("最終JSONのファイル名が違うのだ: %s", result.JSONPath)
	}

	md, err := os.ReadFile(result.MarkdownPath)
	if err != nil {
		t.Fatalf("Markdownの読み込みに失敗なのだ: %v", err)
	}
	content := string(md)
	for _, want := range []string{"# Midnight Drive", "**Art Style:** noir", "### Hero Car", "Scene 2 — 12.5s"} {
		if !strings.Contains(content, want) {
			t.Errorf("Markdownに %q が含まれていないのだ", want)
		}
	}
}
