package domain

import (
	"fmt"
	"mime"
	"sort"
	"strings"
)

// SortScenes はシーン列をタイムスタンプの昇順に安定ソートします。
// AIモデルは順序を保証しないため、Phase 1 の結果を正とする前に必ず適用するのだ。
func (sb *Storyboard) SortScenes() {
	sort.SliceStable(sb.Scenes, func(i, j int) bool {
		return sb.Scenes[i].Timestamp < sb.Scenes[j].Timestamp
	})
}

// Validate は Phase 1 の結果として最低限必要なフィールドが揃っているかを検査します。
func (sb *Storyboard) Validate() error {
	if sb.Title == "" {
		return fmt.Errorf("storyboard: title が空です")
	}
	if sb.ProductionDesign.ArtStyle == "" {
		return fmt.Errorf("storyboard: production_design.art_style が空です")
	}
	if len(sb.Scenes) == 0 {
		return fmt.Errorf("storyboard: scenes が空です")
	}
	for i, sc := range sb.Scenes {
		if sc.Timestamp < 0 {
			return fmt.Errorf("storyboard: scenes[%d].timestamp が負の値です: %g", i, sc.Timestamp)
		}
		if sc.VisualPrompt == "" {
			return fmt.Errorf("storyboard: scenes[%d].visual_prompt が空です", i)
		}
	}
	return nil
}

// ReferenceImages は要素順に、生成済みのリファレンス画像を収集して返します。
// Phase 3 でシーン生成に渡す参照リストとして使用します。
func (sb *Storyboard) ReferenceImages() []ImageBlob {
	refs := make([]ImageBlob, 0, len(sb.ProductionDesign.RecurringElements))
	for _, el := range sb.ProductionDesign.RecurringElements {
		if el.Image == nil || len(el.Image.Data) == 0 {
			continue
		}
		refs = append(refs, *el.Image)
	}
	return refs
}

// SafeElementFileName は要素名をファイル名に使える形へ正規化します。
// 英数字・空白・ハイフン・アンダースコアのみを残し、空白はアンダースコアに置換します。
func SafeElementFileName(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			sb.WriteRune(r)
		}
	}
	cleaned := strings.TrimSpace(sb.String())
	cleaned = strings.ReplaceAll(cleaned, " ", "_")
	if cleaned == "" {
		cleaned = "element"
	}
	return cleaned
}

// SceneImageFileName はシーン連番とタイムスタンプから一意なファイル名（拡張子なし）を組み立てます。
// 例: index=3, ts=12.5 → "scene_003_0012_5s"
func SceneImageFileName(index int, timestamp float64) string {
	ts := strings.ReplaceAll(fmt.Sprintf("%06.1f", timestamp), ".", "_")
	return fmt.Sprintf("scene_%03d_%ss", index, ts)
}

// ExtensionForMime は MIMEタイプから保存に使う拡張子を決定します。
// 判定できない場合は ".png" にフォールバックします。
func ExtensionForMime(mimeType string) string {
	if mimeType == "image/png" || mimeType == "" {
		return ".png"
	}
	extensions, err := mime.ExtensionsByType(mimeType)
	if err != nil || len(extensions) == 0 {
		return ".png"
	}
	return extensions[0]
}
