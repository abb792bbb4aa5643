package domain

import "fmt"

// Phase はパイプラインの進行状態です。
// Idle から始まり、3つの作業フェーズを経て Ready に到達します。
// 作業フェーズ中の失敗はすべて Error に遷移し、Reset 以外で抜け出せません。
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAnalyzing
	PhaseDesigningElements
	PhaseGeneratingImages
	PhaseReady
	PhaseError
)

var phaseNames = map[Phase]string{
	PhaseIdle:              "idle",
	PhaseAnalyzing:         "analyzing",
	PhaseDesigningElements: "designing_elements",
	PhaseGeneratingImages:  "generating_images",
	PhaseReady:             "ready",
	PhaseError:             "error",
}

// String は状態の snake_case 表記を返します。未知の値は "unknown" です。
func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON は状態を snake_case の文字列としてシリアライズします。
func (p Phase) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", p.String())), nil
}

// Working は外部呼び出しが進行しうる作業フェーズかどうかを返します。
func (p Phase) Working() bool {
	switch p {
	case PhaseAnalyzing, PhaseDesigningElements, PhaseGeneratingImages:
		return true
	}
	return false
}

// Terminal は Reset 以外で遷移できない終端状態かどうかを返します。
func (p Phase) Terminal() bool {
	return p == PhaseReady || p == PhaseError
}

// validTransitions は許可された状態遷移の一覧です。
// 不正な遷移は CanTransition が拒否するため、途中状態の飛び越しは表現できません。
var validTransitions = map[Phase][]Phase{
	PhaseIdle:              {PhaseAnalyzing},
	PhaseAnalyzing:         {PhaseDesigningElements, PhaseError},
	PhaseDesigningElements: {PhaseGeneratingImages, PhaseError},
	PhaseGeneratingImages:  {PhaseReady, PhaseError},
	PhaseReady:             {},
	PhaseError:             {},
}

// CanTransition は from から to への遷移が状態機械上で許可されているかを返します。
// どの状態からでも Reset（PhaseIdle への復帰）は別枠で常に許可されます。
func CanTransition(from, to Phase) bool {
	if to == PhaseIdle {
		return true
	}
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Snapshot は外部公開用の不変なパイプライン状態です。
// Storyboard はディープコピーであり、受信側が保持・走査しても実行中のドキュメントに影響しません。
type Snapshot struct {
	State      Phase       `json:"state"`
	Storyboard *Storyboard `json:"storyboard,omitempty"`
	Progress   int         `json:"progress"`
	Err        string      `json:"error,omitempty"`
}
