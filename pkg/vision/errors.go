package vision

import "errors"

// 生成クライアントのエラー分類なのだ。
// errors.Is で判別できるよう、すべてのエラーはいずれかの番兵をラップして返します。
var (
	// ErrAnalysis は音声解析の応答が期待する絵コンテ構造として解釈できなかったことを示します。
	// 解析はリトライせず、この実行は回復不能として扱われます。
	ErrAnalysis = errors.New("vision: 音声解析の応答を絵コンテとして解釈できませんでした")

	// ErrGeneration は画像生成がリトライ上限まで失敗したことを示します。
	ErrGeneration = errors.New("vision: 画像生成がリトライ上限に達しました")

	// ErrNoCandidate は応答に候補が1件も含まれていなかったことを示します（リトライ対象）。
	ErrNoCandidate = errors.New("vision: 応答に候補が含まれていません")

	// ErrNoImageData は候補に画像ペイロードが含まれていなかったことを示します（リトライ対象）。
	ErrNoImageData = errors.New("vision: 候補に画像データが含まれていません")
)
