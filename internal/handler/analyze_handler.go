package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"leafdoc/internal/encoder"
	"leafdoc/internal/port"
)

// AnalyzeHandler runs one-shot analyses that are not tied to a session.
type AnalyzeHandler struct {
	analyzer port.Analyzer
	encoder  *encoder.Encoder
}

// NewAnalyzeHandler creates a new AnalyzeHandler.
func NewAnalyzeHandler(analyzer port.Analyzer, enc *encoder.Encoder) *AnalyzeHandler {
	return &AnalyzeHandler{analyzer: analyzer, encoder: enc}
}

// Analyze handles POST /api/v1/analyze
// @Summary Analyze a leaf image without a session
// @Description Accepts either a multipart upload (first file is used) or a JSON body with a base64 data URL.
// @Tags analyze
// @Accept multipart/form-data,json
// @Produce json
// @Param file formData file false "Leaf image (JPG, PNG, WEBP, HEIC)"
// @Param body body AnalyzeRequest false "Image as a data URL"
// @Success 200 {object} Response{data=domain.AnalysisResult} "Diagnosis"
// @Failure 400 {object} ErrorResponseBody "Missing, unreadable or unsupported file"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 502 {object} ErrorResponseBody "Model returned no valid analysis"
// @Failure 503 {object} ErrorResponseBody "Analyzer not configured"
// @Router /analyze [post]
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var (
		input port.ImageInput
		ok    bool
	)
	if strings.HasPrefix(c.ContentType(), "application/json") {
		input, ok = h.jsonInput(c)
	} else {
		input, ok = h.multipartInput(c)
	}
	if !ok {
		return
	}

	result, err := h.analyzer.Analyze(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

func (h *AnalyzeHandler) jsonInput(c *gin.Context) (port.ImageInput, bool) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return port.ImageInput{}, false
	}
	img, err := h.encoder.DecodeDataURL(req.Image)
	if err != nil {
		HandleError(c, err)
		return port.ImageInput{}, false
	}
	return port.ImageInput{FileName: req.FileName, ContentType: img.MIMEType, Data: img.Data, Encoded: img}, true
}

func (h *AnalyzeHandler) multipartInput(c *gin.Context) (port.ImageInput, bool) {
	fh, err := firstUploadedFile(c)
	if err != nil {
		respondUploadError(c, err)
		return port.ImageInput{}, false
	}
	file, err := fh.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "image file could not be read")
		return port.ImageInput{}, false
	}
	defer func() { _ = file.Close() }()

	img, err := h.encoder.Encode(file, contentTypeOf(fh))
	if err != nil {
		HandleError(c, err)
		return port.ImageInput{}, false
	}
	return port.ImageInput{FileName: fh.Filename, ContentType: img.MIMEType, Data: img.Data, Encoded: img}, true
}
