package prompt

import (
	"strings"
	"testing"
)

func TestGetPromptByMode(t *testing.T) {
	t.Run("cinematic モードは本編のプロンプトを返すのだ", func(t *testing.T) {
		content, err := GetPromptByMode(ModeCinematic)
		if err != nil {
			t.Fatalf("想定外のエラーなのだ: %v", err)
		}
		for _, want := range []string{"production designer", "art_style", "recurring_elements", "visual_prompt"} {
			if !strings.Contains(content, want) {
				t.Errorf("プロンプトに %q が含まれていないのだ", want)
			}
		}
	})

	t.Run("minimal モードも解決できるのだ", func(t *testing.T) {
		content, err := GetPromptByMode(ModeMinimal)
		if err != nil {
			t.Fatalf("想定外のエラーなのだ: %v", err)
		}
		if !strings.Contains(content, "recurring_elements") {
			t.Error("スキーマのフィールド名への言及がないのだ")
		}
	})

	t.Run("未知のモードはサポート一覧付きのエラーなのだ", func(t *testing.T) {
		_, err := GetPromptByMode("opera")
		if err == nil {
			t.Fatal("エラーになるべきなのだ")
		}
		if !strings.Contains(err.Error(), "cinematic, minimal") {
			t.Errorf("サポート一覧がソート順で含まれていないのだ: %v", err)
		}
	})
}
