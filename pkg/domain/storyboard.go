package domain

// ImageBlob は生成された画像のバイナリ本体とメタデータです。
// JSONシリアライズの対象外で、公開時には ImageURL（保存先パスや配信URL）に変換されます。
type ImageBlob struct {
	Data     []byte
	MimeType string
}

// VisualElement は複数シーンに繰り返し登場する視覚モチーフ（キャラクターや物体）を保持します。
type VisualElement struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	// ImageURL は Phase 2 で生成されたリファレンス画像のハンドル（保存パスまたは配信URL）。
	ImageURL string `json:"image_url,omitempty"`

	// Image は実行中のみ保持する画像本体。シリアライズには含めません。
	Image *ImageBlob `json:"-"`
}

// Scene は音声のタイムスタンプに紐づく1つの物語ビートです。
type Scene struct {
	Timestamp       float64 `json:"timestamp"`
	TimingRationale string  `json:"timing_rationale"`
	Description     string  `json:"description"`
	VisualPrompt    string  `json:"visual_prompt"`

	// ImageURL は Phase 3 で生成されたシーン画像のハンドル。
	ImageURL string `json:"image_url,omitempty"`

	// Image は実行中のみ保持する画像本体。
	Image *ImageBlob `json:"-"`
}

// ProductionDesign は作品全体の美術設定（画風と繰り返し登場する要素）です。
type ProductionDesign struct {
	ArtStyle          string          `json:"art_style"`
	RecurringElements []VisualElement `json:"recurring_elements"`
}

// Storyboard は AI モデルから返される絵コンテ全体の構造です。
// Phase 1 でテキスト部分が確定し、Phase 2/3 で画像が段階的に付与されます。
type Storyboard struct {
	Title            string           `json:"title"`
	ProductionDesign ProductionDesign `json:"production_design"`
	Scenes           []Scene          `json:"scenes"`
}

// Clone は Storyboard の防御的ディープコピーを返します。
// 公開スナップショットが実行中のドキュメントとメモリを共有しないようにするためのものです。
func (sb *Storyboard) Clone() *Storyboard {
	if sb == nil {
		return nil
	}

	copied := &Storyboard{
		Title: sb.Title,
		ProductionDesign: ProductionDesign{
			ArtStyle: sb.ProductionDesign.ArtStyle,
		},
	}

	if sb.ProductionDesign.RecurringElements != nil {
		copied.ProductionDesign.RecurringElements = make([]VisualElement, len(sb.ProductionDesign.RecurringElements))
		for i, el := range sb.ProductionDesign.RecurringElements {
			elCopy := el
			elCopy.Image = el.Image.clone()
			copied.ProductionDesign.RecurringElements[i] = elCopy
		}
	}

	if sb.Scenes != nil {
		copied.Scenes = make([]Scene, len(sb.Scenes))
		for i, sc := range sb.Scenes {
			scCopy := sc
			scCopy.Image = sc.Image.clone()
			copied.Scenes[i] = scCopy
		}
	}

	return copied
}

// clone は ImageBlob のディープコピーを返す内部ヘルパーです。
func (b *ImageBlob) clone() *ImageBlob {
	if b == nil {
		return nil
	}
	data := make([]byte, len(b.Data))
	copy(data, b.Data)
	return &ImageBlob{Data: data, MimeType: b.MimeType}
}
