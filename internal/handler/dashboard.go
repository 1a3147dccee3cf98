package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// Dashboard godoc
// @Summary      Current market snapshot
// @Description  Returns the latest normalized top-N market data. Served on every path of the dashboard listener; before the first successful poll data is empty and update_count is 0.
// @Tags         dashboard
// @Produce      json
// @Param        any  path  string  true  "Any path; every path returns the same document"
// @Success      200  {object}  domain.SnapshotDocument
// @Router       /{any} [get]
func (h *Handler) Dashboard(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.dashboard")
	defer span.End()

	body := h.snapshots.Body()
	span.SetAttributes(
		attribute.String("path", c.Request.URL.Path),
		attribute.Int("bytes", len(body)),
	)

	c.Header("Access-Control-Allow-Origin", "*")
	c.Data(http.StatusOK, "application/json", body)
}
