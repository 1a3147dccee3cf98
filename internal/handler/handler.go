package handler

import (
	"crypto-live/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// SnapshotReader is the read side of the snapshot slot.
type SnapshotReader interface {
	Body() []byte
	Document() domain.SnapshotDocument
}

type Handler struct {
	tracer    trace.Tracer
	snapshots SnapshotReader
}

func New(tracer trace.Tracer, snapshots SnapshotReader) *Handler {
	return &Handler{
		tracer:    tracer,
		snapshots: snapshots,
	}
}

// RegisterDashboard makes r answer every path with the current snapshot.
func (h *Handler) RegisterDashboard(r *gin.Engine) {
	r.Use(DashboardCORS())
	r.NoRoute(h.Dashboard)
}

func (h *Handler) RegisterAdmin(r *gin.Engine) {
	r.GET("/health", h.Health)
}
