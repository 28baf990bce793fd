package http

import (
	_ "embed"
	"net/http"
)

//go:embed static/index.html
var dashboardPage []byte

// RegisterDashboardRoutes 注册仪表盘页面与WebSocket端点
func RegisterDashboardRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", handleDashboardPage)
	mux.HandleFunc("GET /api/ws/dashboard", handleDashboardWS)
}

func handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(dashboardPage)
}

func handleDashboardWS(w http.ResponseWriter, r *http.Request) {
	if eventHub == nil {
		writeError(w, "realtime hub not initialized", http.StatusServiceUnavailable)
		return
	}
	eventHub.HandleWebSocket(w, r)
}
