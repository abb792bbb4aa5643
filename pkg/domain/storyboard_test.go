package domain

import (
	"encoding/json"
	"testing"
)

func TestStoryboard_JSON(t *testing.T) {
	t.Run("AIからのレスポンス形式をシミュレートするのだ", func(t *testing.T) {
		inputJSON := `{
			"title": "X",
			"production_design": {
				"art_style": "noir",
				"recurring_elements": [
					{"name": "Hero", "description": "a lone figure in a trench coat"}
				]
			},
			"scenes": [
				{"timestamp": 5, "timing_rationale": "chorus hits", "description": "rooftop", "visual_prompt": "Hero on a rooftop"},
				{"timestamp": 0, "timing_rationale": "intro", "description": "alley", "visual_prompt": "Hero in an alley"}
			]
		}`

		var sb Storyboard
		if err := json.Unmarshal([]byte(inputJSON), &sb); err != nil {
			t.Fatalf("パース失敗なのだ: %v", err)
		}

		if sb.Title != "X" {
			t.Errorf("タイトルが違うのだ: %s", sb.Title)
		}
		if sb.ProductionDesign.ArtStyle != "noir" {
			t.Errorf("画風が正しくパースされていないのだ: %s", sb.ProductionDesign.ArtStyle)
		}
		if len(sb.ProductionDesign.RecurringElements) != 1 || sb.ProductionDesign.RecurringElements[0].Name != "Hero" {
			t.Error("繰り返し要素が正しくパースされていないのだ")
		}
		if len(sb.Scenes) != 2 || sb.Scenes[0].Timestamp != 5 {
			t.Error("シーン内容が正しくパースされていないのだ")
		}
	})

	t.Run("画像本体はシリアライズに含まれないのだ", func(t *testing.T) {
		sb := Storyboard{
			Title:            "T",
			ProductionDesign: ProductionDesign{ArtStyle: "flat"},
			Scenes: []Scene{
				{Timestamp: 1, VisualPrompt: "v", ImageURL: "scenes/scene_000_0001_0s.png",
					Image: &ImageBlob{Data: []byte{1, 2, 3}, MimeType: "image/png"}},
			},
		}

		data, err := json.Marshal(&sb)
		if err != nil {
			t.Fatalf("Marshal失敗なのだ: %v", err)
		}

		var decoded Storyboard
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("Unmarshal失敗なのだ: %v", err)
		}
		if decoded.Scenes[0].Image != nil {
			t.Error("Image フィールドがJSONに混入しているのだ")
		}
		if decoded.Scenes[0].ImageURL != sb.Scenes[0].ImageURL {
			t.Errorf("image_url が保持されていないのだ: %s", decoded.Scenes[0].ImageURL)
		}
	})
}

func TestStoryboard_SortScenes(t *testing.T) {
	t.Run("タイムスタンプの昇順に並ぶのだ", func(t *testing.T) {
		sb := Storyboard{Scenes: []Scene{
			{Timestamp: 5, Description: "later"},
			{Timestamp: 0, Description: "first"},
		}}

		sb.SortScenes()

		if sb.Scenes[0].Timestamp != 0 || sb.Scenes[1].Timestamp != 5 {
			t.Errorf("ソート結果が昇順でないのだ: %+v", sb.Scenes)
		}
	})

	t.Run("同一タイムスタンプの相対順序は保たれるのだ", func(t *testing.T) {
		sb := Storyboard{Scenes: []Scene{
			{Timestamp: 3, Description: "a"},
			{Timestamp: 1, Description: "b"},
			{Timestamp: 3, Description: "c"},
		}}

		sb.SortScenes()

		if sb.Scenes[1].Description != "a" || sb.Scenes[2].Description != "c" {
			t.Errorf("安定ソートになっていないのだ: %+v", sb.Scenes)
		}
	})
}

func TestStoryboard_Validate(t *testing.T) {
	valid := func() Storyboard {
		return Storyboard{
			Title:            "T",
			ProductionDesign: ProductionDesign{ArtStyle: "noir"},
			Scenes:           []Scene{{Timestamp: 0, VisualPrompt: "v"}},
		}
	}

	t.Run("必須フィールドが揃っていれば成功なのだ", func(t *testing.T) {
		sb := valid()
		if err := sb.Validate(); err != nil {
			t.Errorf("想定外のエラーなのだ: %v", err)
		}
	})

	t.Run("画風が空なら失敗なのだ", func(t *testing.T) {
		sb := valid()
		sb.ProductionDesign.ArtStyle = ""
		if err := sb.Validate(); err == nil {
			t.Error("エラーになるべきなのだ")
		}
	})

	t.Run("負のタイムスタンプは失敗なのだ", func(t *testing.T) {
		sb := valid()
		sb.Scenes[0].Timestamp = -1
		if err := sb.Validate(); err == nil {
			t.Error("エラーになるべきなのだ")
		}
	})
}

func TestStoryboard_Clone(t *testing.T) {
	t.Run("コピーへの変更が元に波及しないのだ", func(t *testing.T) {
		sb := &Storyboard{
			Title: "T",
			ProductionDesign: ProductionDesign{
				ArtStyle: "noir",
				RecurringElements: []VisualElement{
					{Name: "Hero", Image: &ImageBlob{Data: []byte{1, 2}, MimeType: "image/png"}},
				},
			},
			Scenes: []Scene{{Timestamp: 0, VisualPrompt: "v"}},
		}

		copied := sb.Clone()
		copied.Title = "changed"
		copied.ProductionDesign.RecurringElements[0].Image.Data[0] = 99
		copied.Scenes[0].ImageURL = "x.png"

		if sb.Title != "T" {
			t.Error("タイトルが共有されているのだ")
		}
		if sb.ProductionDesign.RecurringElements[0].Image.Data[0] != 1 {
			t.Error("画像バッファが共有されているのだ")
		}
		if sb.Scenes[0].ImageURL != "" {
			t.Error("シーンが共有されているのだ")
		}
	})

	t.Run("nil レシーバーは nil を返すのだ", func(t *testing.T) {
		var sb *Storyboard
		if sb.Clone() != nil {
			t.Error("nil になるべきなのだ")
		}
	})
}

func TestStoryboard_ReferenceImages(t *testing.T) {
	sb := Storyboard{
		ProductionDesign: ProductionDesign{
			RecurringElements: []VisualElement{
				{Name: "A", Image: &ImageBlob{Data: []byte{1}, MimeType: "image/png"}},
				{Name: "B"},
				{Name: "C", Image: &ImageBlob{Data: []byte{2}, MimeType: "image/png"}},
			},
		},
	}

	refs := sb.ReferenceImages()
	if len(refs) != 2 {
		t.Fatalf("参照画像数が違うのだ: %d", len(refs))
	}
	if refs[0].Data[0] != 1 || refs[1].Data[0] != 2 {
		t.Error("要素順に収集されていないのだ")
	}
}

func TestSafeElementFileName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hero", "Hero"},
		{"Neon Sign", "Neon_Sign"},
		{"謎の存在/Alien!?", "Alien"},
		{"---", "---"},
		{"///", "element"},
	}
	for _, tc := range cases {
		if got := SafeElementFileName(tc.in); got != tc.want {
			t.Errorf("SafeElementFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSceneImageFileName(t *testing.T) {
	cases := []struct {
		index int
		ts    float64
		want  string
	}{
		{0, 0, "scene_000_0000_0s"},
		{3, 12.5, "scene_003_0012_5s"},
		{12, 123.4, "scene_012_0123_4s"},
	}
	for _, tc := range cases {
		if got := SceneImageFileName(tc.index, tc.ts); got != tc.want {
			t.Errorf("SceneImageFileName(%d, %g) = %q, want %q", tc.index, tc.ts, got, tc.want)
		}
	}
}

func TestExtensionForMime(t *testing.T) {
	if got := ExtensionForMime("image/png"); got != ".png" {
		t.Errorf("png の拡張子が違うのだ: %s", got)
	}
	if got := ExtensionForMime(""); got != ".png" {
		t.Errorf("空MIMEのフォールバックが違うのだ: %s", got)
	}
	if got := ExtensionForMime("application/x-unknown-nonsense"); got != ".png" {
		t.Errorf("未知MIMEのフォールバックが違うのだ: %s", got)
	}
}
