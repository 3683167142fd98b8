package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tckdb/tckdb-go/internal/chem/coords"
	"github.com/tckdb/tckdb-go/internal/infrastructure/monitoring/logging"
	"github.com/tckdb/tckdb-go/pkg/errors"
	stypes "github.com/tckdb/tckdb-go/pkg/types/species"
)

// ToolsHandler exposes the coordinate codec as standalone endpoints so
// submitters can check geometry blocks before building a full submission.
type ToolsHandler struct {
	logger logging.Logger
}

// NewToolsHandler creates a new ToolsHandler.
func NewToolsHandler(logger logging.Logger) *ToolsHandler {
	return &ToolsHandler{logger: logger}
}

// ParseCoordinatesRequest is the request body for parsing an XYZ text block.
type ParseCoordinatesRequest struct {
	Text string `json:"text"`
}

// FormatCoordinatesRequest is the request body for formatting a coordinate
// record back into XYZ text.
type FormatCoordinatesRequest struct {
	Coordinates *stypes.Coordinates `json:"coordinates"`

	// IsotopeStyle selects the isotope annotation: "" or "gaussian".
	IsotopeStyle string `json:"isotope_style,omitempty"`
}

// FormatCoordinatesResponse carries the rendered XYZ text.
type FormatCoordinatesResponse struct {
	Text string `json:"text"`
}

// RegisterRoutes registers tool routes on the given group.
func (h *ToolsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/tools/coordinates/parse", h.ParseCoordinates)
	rg.POST("/tools/coordinates/format", h.FormatCoordinates)
}

// ParseCoordinates handles POST /api/v1/tools/coordinates/parse.  The parsed
// record comes back with isotopes backfilled and validated, exactly as a
// submission would store it.
func (h *ToolsHandler) ParseCoordinates(c *gin.Context) {
	var req ParseCoordinatesRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Text == "" {
		respondError(c, errors.New(errors.ErrCodeBadRequest, "text is required"))
		return
	}

	rec, err := coords.Parse(req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := coords.BackfillIsotopes(rec); err != nil {
		respondError(c, err)
		return
	}
	if err := coords.Validate(rec); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// FormatCoordinates handles POST /api/v1/tools/coordinates/format.
func (h *ToolsHandler) FormatCoordinates(c *gin.Context) {
	var req FormatCoordinatesRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Coordinates == nil {
		respondError(c, errors.New(errors.ErrCodeBadRequest, "coordinates are required"))
		return
	}

	var style coords.IsotopeStyle
	switch req.IsotopeStyle {
	case "":
		style = coords.IsotopeNone
	case string(coords.IsotopeGaussian):
		style = coords.IsotopeGaussian
	default:
		respondError(c, errors.Newf(errors.ErrCodeBadRequest, "unknown isotope style %q", req.IsotopeStyle))
		return
	}

	text, err := coords.Format(req.Coordinates, style)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, FormatCoordinatesResponse{Text: text})
}
