package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tckdb/tckdb-go/internal/domain/species"
	"github.com/tckdb/tckdb-go/internal/infrastructure/monitoring/logging"
	"github.com/tckdb/tckdb-go/internal/infrastructure/monitoring/prometheus"
	"github.com/tckdb/tckdb-go/internal/infrastructure/storage/minio"
	"github.com/tckdb/tckdb-go/pkg/errors"
	"github.com/tckdb/tckdb-go/pkg/types/common"
	stypes "github.com/tckdb/tckdb-go/pkg/types/species"
)

// SpeciesService is the slice of the species domain service the HTTP layer
// depends on.
type SpeciesService interface {
	Submit(ctx context.Context, req *stypes.CreateRequest) (*species.Species, error)
	DryRun(ctx context.Context, req *stypes.CreateRequest) (*stypes.ValidationReport, error)
	Get(ctx context.Context, id common.ID) (*species.Species, error)
	List(ctx context.Context, filter species.ListFilter) ([]*species.Species, int64, error)
	Review(ctx context.Context, id common.ID, approved bool) (*species.Species, error)
	Retract(ctx context.Context, id common.ID, reason string) (*species.Species, error)
}

// LogBrowser exposes the archived electronic-structure logs of a species.
// Satisfied by the MinIO log archive; nil when object storage is disabled.
type LogBrowser interface {
	ListLogs(ctx context.Context, speciesID common.ID) ([]minio.ArchivedLog, error)
	PresignedLogURL(ctx context.Context, key string) (string, error)
}

// SpeciesHandler handles HTTP requests for species records.
type SpeciesHandler struct {
	svc     SpeciesService
	logs    LogBrowser
	metrics *prometheus.AppMetrics
	logger  logging.Logger
}

// NewSpeciesHandler creates a new SpeciesHandler.  logs and metrics may be
// nil when the corresponding subsystem is disabled.
func NewSpeciesHandler(svc SpeciesService, logs LogBrowser, metrics *prometheus.AppMetrics, logger logging.Logger) *SpeciesHandler {
	return &SpeciesHandler{
		svc:     svc,
		logs:    logs,
		metrics: metrics,
		logger:  logger,
	}
}

// ReviewRequest is the request body for reviewing a species record.
type ReviewRequest struct {
	Approved bool `json:"approved"`
}

// RetractRequest is the request body for retracting a species record.
type RetractRequest struct {
	Reason string `json:"reason"`
}

// ArchivedLogEntry is one archived log file in the logs listing, with a
// time-limited download URL.
type ArchivedLogEntry struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	URL          string    `json:"url,omitempty"`
}

// RegisterRoutes registers species routes on the given group.
func (h *SpeciesHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/species", h.Submit)
	rg.POST("/species/validate", h.Validate)
	rg.GET("/species", h.List)
	rg.GET("/species/:id", h.Get)
	rg.DELETE("/species/:id", h.Delete)
	rg.POST("/species/:id/review", h.Review)
	rg.POST("/species/:id/retract", h.Retract)
	rg.GET("/species/:id/logs", h.ListLogs)
}

// Submit handles POST /api/v1/species.
func (h *SpeciesHandler) Submit(c *gin.Context) {
	var req stypes.CreateRequest
	if !bindJSON(c, &req) {
		return
	}

	start := time.Now()
	sp, err := h.svc.Submit(c.Request.Context(), &req)
	if err != nil {
		h.recordSubmission("commit", submissionOutcome(err), start)
		respondError(c, err)
		return
	}

	h.recordSubmission("commit", "accepted", start)
	c.JSON(http.StatusCreated, sp.ToDTO())
}

// Validate handles POST /api/v1/species/validate: the full resolution and
// validation pipeline without persistence.
func (h *SpeciesHandler) Validate(c *gin.Context) {
	var req stypes.CreateRequest
	if !bindJSON(c, &req) {
		return
	}

	start := time.Now()
	report, err := h.svc.DryRun(c.Request.Context(), &req)
	if err != nil {
		h.recordSubmission("dry_run", "error", start)
		respondError(c, err)
		return
	}

	outcome := "accepted"
	if !report.Valid {
		outcome = "rejected"
		h.recordViolations(report.Violations)
	}
	h.recordSubmission("dry_run", outcome, start)
	c.JSON(http.StatusOK, report)
}

// Get handles GET /api/v1/species/:id.
func (h *SpeciesHandler) Get(c *gin.Context) {
	id, ok := requireParam(c, "id")
	if !ok {
		return
	}

	sp, err := h.svc.Get(c.Request.Context(), common.ID(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sp.ToDTO())
}

// List handles GET /api/v1/species.  Supports label substring, exact
// inchi_key, is_ts, and include_retracted filters alongside pagination.
func (h *SpeciesHandler) List(c *gin.Context) {
	filter := species.ListFilter{
		Label:    c.Query("label"),
		InChIKey: c.Query("inchi_key"),
		Page:     parsePagination(c),
	}
	if v := c.Query("is_ts"); v != "" {
		isTS, err := strconv.ParseBool(v)
		if err != nil {
			respondError(c, errors.Newf(errors.ErrCodeBadRequest, "invalid is_ts value %q", v))
			return
		}
		filter.IsTS = &isTS
	}
	if v := c.Query("include_retracted"); v != "" {
		include, err := strconv.ParseBool(v)
		if err != nil {
			respondError(c, errors.Newf(errors.ErrCodeBadRequest, "invalid include_retracted value %q", v))
			return
		}
		filter.IncludeRetracted = include
	}

	items, total, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	dtos := make([]stypes.DTO, len(items))
	for i, sp := range items {
		dtos[i] = sp.ToDTO()
	}
	c.JSON(http.StatusOK, common.NewPageResponse(dtos, total, filter.Page))
}

// Review handles POST /api/v1/species/:id/review.
func (h *SpeciesHandler) Review(c *gin.Context) {
	id, ok := requireParam(c, "id")
	if !ok {
		return
	}
	var req ReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	sp, err := h.svc.Review(c.Request.Context(), common.ID(id), req.Approved)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sp.ToDTO())
}

// Retract handles POST /api/v1/species/:id/retract.
func (h *SpeciesHandler) Retract(c *gin.Context) {
	id, ok := requireParam(c, "id")
	if !ok {
		return
	}
	var req RetractRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Reason == "" {
		respondError(c, errors.New(errors.ErrCodeBadRequest, "retraction reason is required"))
		return
	}

	sp, err := h.svc.Retract(c.Request.Context(), common.ID(id), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	h.recordRetraction()
	c.JSON(http.StatusOK, sp.ToDTO())
}

// Delete handles DELETE /api/v1/species/:id.  Records are never removed
// through the API; deletion retracts the record, preserving it for citation
// integrity.
func (h *SpeciesHandler) Delete(c *gin.Context) {
	id, ok := requireParam(c, "id")
	if !ok {
		return
	}
	reason := c.Query("reason")
	if reason == "" {
		reason = "deleted by submitter"
	}

	sp, err := h.svc.Retract(c.Request.Context(), common.ID(id), reason)
	if err != nil {
		respondError(c, err)
		return
	}
	h.recordRetraction()
	c.JSON(http.StatusOK, sp.ToDTO())
}

// ListLogs handles GET /api/v1/species/:id/logs.  Each entry carries a
// presigned download URL; entries whose URL cannot be signed are returned
// without one.
func (h *SpeciesHandler) ListLogs(c *gin.Context) {
	id, ok := requireParam(c, "id")
	if !ok {
		return
	}
	if h.logs == nil {
		respondError(c, errors.New(errors.ErrCodeServiceUnavailable, "log archive is not configured"))
		return
	}

	ctx := c.Request.Context()
	// Confirm the species exists so a bogus ID yields 404, not an empty list.
	if _, err := h.svc.Get(ctx, common.ID(id)); err != nil {
		respondError(c, err)
		return
	}

	archived, err := h.logs.ListLogs(ctx, common.ID(id))
	if err != nil {
		respondError(c, err)
		return
	}

	entries := make([]ArchivedLogEntry, len(archived))
	for i, log := range archived {
		entries[i] = ArchivedLogEntry{
			Key:          log.Key,
			Size:         log.Size,
			LastModified: log.LastModified,
		}
		url, err := h.logs.PresignedLogURL(ctx, log.Key)
		if err != nil {
			h.logger.Warn("failed to presign log URL",
				logging.String("key", log.Key), logging.Err(err))
			continue
		}
		entries[i].URL = url
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}

func (h *SpeciesHandler) recordSubmission(mode, outcome string, start time.Time) {
	if h.metrics == nil {
		return
	}
	prometheus.RecordSubmission(h.metrics, mode, outcome, time.Since(start))
}

func (h *SpeciesHandler) recordViolations(violations []common.FieldViolation) {
	if h.metrics == nil {
		return
	}
	fields := make([]string, len(violations))
	for i, v := range violations {
		fields[i] = v.Field
	}
	prometheus.RecordViolations(h.metrics, fields)
}

func (h *SpeciesHandler) recordRetraction() {
	if h.metrics == nil {
		return
	}
	h.metrics.RetractionsTotal.WithLabelValues().Inc()
}

// submissionOutcome classifies a Submit failure for the metrics label.
func submissionOutcome(err error) string {
	if errors.IsValidation(err) {
		return "rejected"
	}
	return "error"
}
