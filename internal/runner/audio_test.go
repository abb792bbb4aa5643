package runner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAudioMimeType(t *testing.T) {
	cases := map[string]string{
		"song.mp3":  "audio/mpeg",
		"SONG.MP3":  "audio/mpeg",
		"voice.wav": "audio/wav",
		"doc.txt":   "text/plain; charset=utf-8",
	}
	for path, want := range cases {
		if got := AudioMimeType(path); got != want {
			t.Errorf("AudioMimeType(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestReadAudioFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("音声ファイルはペイロードとメディアタイプを返すのだ", func(t *testing.T) {
		path := filepath.Join(dir, "track.mp3")
		if err := os.WriteFile(path, []byte{1, 2, 3}, 0o644); err != nil {
			t.Fatal(err)
		}

		data, mimeType, err := ReadAudioFile(path)
		if err != nil {
			t.Fatalf("想定外のエラーなのだ: %v", err)
		}
		if len(data) != 3 || mimeType != "audio/mpeg" {
			t.Errorf("結果が違うのだ: len=%d mime=%s", len(data), mimeType)
		}
	})

	t.Run("音声以外はネットワークに出る前に拒否されるのだ", func(t *testing.T) {
		path := filepath.Join(dir, "notes.txt")
		if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
			t.Fatal(err)
		}

		_, _, err := ReadAudioFile(path)
		if err == nil || !strings.Contains(err.Error(), "音声ファイルではありません") {
			t.Errorf("検証エラーになるべきなのだ: %v", err)
		}
	})

	t.Run("パス未指定はエラーなのだ", func(t *testing.T) {
		if _, _, err := ReadAudioFile(""); err == nil {
			t.Error("エラーになるべきなのだ")
		}
	})
}
