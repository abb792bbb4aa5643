package runner

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// ReadAudioFile は音声ファイルを読み込み、ペイロードと宣言メディアタイプを返すのだ。
// 音声以外のメディアタイプはネットワーク呼び出しに入る前にここで拒否されます。
func ReadAudioFile(path string) ([]byte, string, error) {
	if path == "" {
		return nil, "", fmt.Errorf("音声ファイル（--audio-file）を指定してほしいのだ")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("音声ファイルの読み込みに失敗しました: %w", err)
	}

	mimeType := AudioMimeType(path)
	if !strings.HasPrefix(mimeType, "audio/") {
		return nil, "", fmt.Errorf("音声ファイルではありません (path: %s, content-type: %s)", path, mimeType)
	}
	return data, mimeType, nil
}

// AudioMimeType は拡張子から宣言メディアタイプを決定します。
// mp3/wav は明示的に対応し、それ以外は標準の拡張子テーブルに委ねます。
func AudioMimeType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	default:
		return mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	}
}
