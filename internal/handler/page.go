package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net"
	"os"
	"time"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTemplate = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

const PageRefresh = 5 * time.Second

// DashboardURL turns a listen address into the URL a local browser should poll.
func DashboardURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

// WriteDashboardPage renders a static page that polls endpoint and writes it to path.
func WriteDashboardPage(path, endpoint string) error {
	var buf bytes.Buffer
	err := dashboardTemplate.Execute(&buf, struct {
		Endpoint      string
		RefreshMillis int64
	}{
		Endpoint:      endpoint,
		RefreshMillis: PageRefresh.Milliseconds(),
	})
	if err != nil {
		return fmt.Errorf("render dashboard page: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write dashboard page %s: %w", path, err)
	}
	return nil
}
