package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

const (
	planFileName     = "storyboard.json"
	finalFileName    = "storyboard_final.json"
	overviewFileName = "storyboard.md"
)

// PublishResult はパブリッシュ処理の結果として生成されたファイルの情報を保持します。
type PublishResult struct {
	JSONPath     string   // 生成された絵コンテJSONのパス
	MarkdownPath string   // 生成された概要Markdownのパス
	ImagePaths   []string // 保存された全画像のパスリスト
}

// StoryboardPublisher は絵コンテの成果物（JSON・Markdown・画像）の永続化を担います。
type StoryboardPublisher struct {
	writer  OutputWriter
	assets  *AssetStore
	baseDir string
}

// NewStoryboardPublisher は StoryboardPublisher を生成するのだ！
func NewStoryboardPublisher(writer OutputWriter, baseDir string) *StoryboardPublisher {
	return &StoryboardPublisher{
		writer:  writer,
		assets:  NewAssetStore(writer, baseDir),
		baseDir: baseDir,
	}
}

// Assets はこのパブリッシャーと同じ保存先を使う AssetStore を返します。
// パイプラインの Sink として渡すことで、生成のたびに画像が書き出されます。
func (p *StoryboardPublisher) Assets() *AssetStore {
	return p.assets
}

// PublishPlan は Phase 1 完了時点の絵コンテ（画像なし）を storyboard.json として保存します。
func (p *StoryboardPublisher) PublishPlan(ctx context.Context, sb *domain.Storyboard) (string, error) {
	return p.writeJSON(ctx, sb, planFileName)
}

// PublishFinal は全画像付与後の絵コンテを storyboard_final.json と概要Markdownとして保存するのだ！
// 実行中に保存されなかった画像（Sink なしで生成された分）があれば、ここでまとめて書き出します。
func (p *StoryboardPublisher) PublishFinal(ctx context.Context, sb *domain.Storyboard) (PublishResult, error) {
	result := PublishResult{}

	if err := p.flushImages(ctx, sb); err != nil {
		return result, err
	}

	jsonPath, err := p.writeJSON(ctx, sb, finalFileName)
	if err != nil {
		return result, err
	}
	result.JSONPath = jsonPath

	mdPath := ResolveOutputPath(p.baseDir, overviewFileName)
	if err := p.writer.Write(ctx, mdPath, []byte(p.buildMarkdown(sb))); err != nil {
		return result, fmt.Errorf("publisher: 概要Markdownの書き込みに失敗しました: %w", err)
	}
	result.MarkdownPath = mdPath

	for _, el := range sb.ProductionDesign.RecurringElements {
		if el.ImageURL != "" {
			result.ImagePaths = append(result.ImagePaths, ResolveOutputPath(p.baseDir, el.ImageURL))
		}
	}
	for _, sc := range sb.Scenes {
		if sc.ImageURL != "" {
			result.ImagePaths = append(result.ImagePaths, ResolveOutputPath(p.baseDir, sc.ImageURL))
		}
	}

	slog.Info("絵コンテの公開が完了しました", "json", result.JSONPath, "markdown", result.MarkdownPath, "images", len(result.ImagePaths))
	return result, nil
}

// flushImages は ImageURL が未記録の画像を並列で保存します。
// ローカル書き込みだけなので、生成呼び出しの直列性には影響しないのだ。
func (p *StoryboardPublisher) flushImages(ctx context.Context, sb *domain.Storyboard) error {
	eg, egCtx := errgroup.WithContext(ctx)

	for i := range sb.ProductionDesign.RecurringElements {
		el := &sb.ProductionDesign.RecurringElements[i]
		if el.Image == nil || el.ImageURL != "" {
			continue
		}
		eg.Go(func() error {
			url, err := p.assets.SaveElement(egCtx, *el, *el.Image)
			if err != nil {
				return err
			}
			el.ImageURL = url
			return nil
		})
	}

	for i := range sb.Scenes {
		i := i
		sc := &sb.Scenes[i]
		if sc.Image == nil || sc.ImageURL != "" {
			continue
		}
		eg.Go(func() error {
			url, err := p.assets.SaveScene(egCtx, i, *sc, *sc.Image)
			if err != nil {
				return err
			}
			sc.ImageURL = url
			return nil
		})
	}

	return eg.Wait()
}

// writeJSON は絵コンテをインデント付きJSONとして保存し、保存先パスを返します。
func (p *StoryboardPublisher) writeJSON(ctx context.Context, sb *domain.Storyboard, fileName string) (string, error) {
	data, err := json.MarshalIndent(sb, "", "  ")
	if err != nil {
		return "", fmt.Errorf("publisher: 絵コンテのエンコードに失敗しました: %w", err)
	}

	fullPath := ResolveOutputPath(p.baseDir, fileName)
	if err := p.writer.Write(ctx, fullPath, data); err != nil {
		return "", fmt.Errorf("publisher: 絵コンテJSONの書き込みに失敗しました: %w", err)
	}
	return fullPath, nil
}

// buildMarkdown は絵コンテの概要Markdownを組み立てます。
func (p *StoryboardPublisher) buildMarkdown(sb *domain.Storyboard) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# %s\n\n", sb.Title))
	b.WriteString(fmt.Sprintf("**Art Style:** %s\n\n", sb.ProductionDesign.ArtStyle))

	if len(sb.ProductionDesign.RecurringElements) > 0 {
		b.WriteString("## Recurring Elements\n\n")
		for _, el := range sb.ProductionDesign.RecurringElements {
			if el.ImageURL != "" {
				b.WriteString(fmt.Sprintf("### %s\n\n![%s](%s)\n\n%s\n\n", el.Name, el.Name, el.ImageURL, el.Description))
			} else {
				b.WriteString(fmt.Sprintf("### %s\n\n%s\n\n", el.Name, el.Description))
			}
		}
	}

	b.WriteString("## Scenes\n\n")
	for i, sc := range sb.Scenes {
		b.WriteString(fmt.Sprintf("### Scene %d — %.1fs\n\n", i+1, sc.Timestamp))
		if sc.ImageURL != "" {
			b.WriteString(fmt.Sprintf("![Scene %d](%s)\n\n", i+1, sc.ImageURL))
		}
		b.WriteString(sc.Description + "\n\n")
	}

	return b.String()
}
