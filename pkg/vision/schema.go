package vision

import "google.golang.org/genai"

// storyboardSchema は音声解析の応答として要求する厳密なJSONスキーマなのだ。
// pkg/domain の Storyboard 構造と同じ形を宣言し、モデル側にフィールドの欠落を許さないようにします。
var storyboardSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title": {Type: genai.TypeString},
		"production_design": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"art_style": {Type: genai.TypeString},
				"recurring_elements": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"name":        {Type: genai.TypeString},
							"description": {Type: genai.TypeString},
						},
						Required: []string{"name", "description"},
					},
				},
			},
			Required: []string{"art_style", "recurring_elements"},
		},
		"scenes": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"timestamp":        {Type: genai.TypeNumber},
					"timing_rationale": {Type: genai.TypeString},
					"description":      {Type: genai.TypeString},
					"visual_prompt":    {Type: genai.TypeString},
				},
				Required: []string{"timestamp", "timing_rationale", "description", "visual_prompt"},
			},
		},
	},
	Required: []string{"title", "production_design", "scenes"},
}
