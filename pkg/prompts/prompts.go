package prompts

import (
	"fmt"
	"strings"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

// Builder は、絵コンテの画風設定を考慮して画像生成プロンプトを構築します。
type Builder struct {
	defaultSuffix string // "masterpiece, cinematic lighting" 等の共通サフィックス
}

// NewBuilder は新しい Builder を生成します。
func NewBuilder(suffix string) *Builder {
	return &Builder{defaultSuffix: suffix}
}

// ElementSheet は、Phase 2 のリファレンスシート用プロンプトを組み立てます。
// 対象の要素だけをニュートラルな背景に描かせることで、後続シーンの参照素材として使える画像にします。
func (b *Builder) ElementSheet(artStyle string, el domain.VisualElement) string {
	var sb strings.Builder
	sb.WriteString("Production Design: Element Reference Sheet. ")
	sb.WriteString(fmt.Sprintf("Style: %s. ", artStyle))
	sb.WriteString(fmt.Sprintf("Subject: %s. ", el.Name))
	sb.WriteString(fmt.Sprintf("Description: %s. ", el.Description))
	sb.WriteString("Show only this subject against a neutral background for reference.")
	return b.withSuffix(sb.String())
}

// SceneShot は、Phase 3 のシーン描画用プロンプトを組み立てます。
// 添付されるリファレンス画像を参照して要素の見た目を揃えるよう明示的に指示します。
func (b *Builder) SceneShot(artStyle string, sc domain.Scene) string {
	var sb strings.Builder
	sb.WriteString("Using the provided visual references for character/element consistency ")
	sb.WriteString(fmt.Sprintf("and following the style '%s', ", artStyle))
	sb.WriteString(fmt.Sprintf("create this scene: %s. ", sc.VisualPrompt))
	sb.WriteString("Maintain perfect visual coherence with the references.")
	return b.withSuffix(sb.String())
}

// withSuffix は共通サフィックスが設定されている場合のみ末尾に付与します。
func (b *Builder) withSuffix(prompt string) string {
	if b.defaultSuffix == "" {
		return prompt
	}
	return prompt + " " + b.defaultSuffix
}
