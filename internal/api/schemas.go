package api

// HealthResponse は /health の応答なのだ。
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

// RunAcceptedResponse は実行開始リクエストの受理応答なのだ。
type RunAcceptedResponse struct {
	State string `json:"state"`
}

// ErrorResponse はエラー応答の共通スキーマなのだ。
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
