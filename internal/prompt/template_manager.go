package prompt

import (
	_ "embed"
	"fmt"
	"maps"
	"slices"
	"strings"
)

const (
	ModeCinematic = "cinematic"
	ModeMinimal   = "minimal"
)

//go:embed cinematic.md
var CinematicPrompt string

//go:embed minimal.md
var MinimalPrompt string

// modeTemplates はモードと音声解析プロンプトを紐づけるマップなのだ。
var modeTemplates = map[string]string{
	ModeCinematic: CinematicPrompt,
	ModeMinimal:   MinimalPrompt,
}

// GetPromptByMode は、指定されたモードに対応する解析プロンプト文字列を返すのだ。
func GetPromptByMode(mode string) (string, error) {
	content, ok := modeTemplates[mode]
	if !ok {
		supported := slices.Collect(maps.Keys(modeTemplates))
		slices.Sort(supported)

		return "", fmt.Errorf("サポートされていないモード: '%s'。サポートされているモードは [%s] です",
			mode, strings.Join(supported, ", "))
	}

	if content == "" {
		return "", fmt.Errorf("モード '%s' に対応するプロンプトテンプレートが空なのだ。embed設定を確認してほしいのだ", mode)
	}

	return content, nil
}
