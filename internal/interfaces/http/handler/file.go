package handler

import (
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	timelineapp "github.com/deatl/backend/internal/application/timeline"
	"github.com/deatl/backend/internal/interfaces/http/dto"
)

// maxUploadBytes caps a single multipart upload request.
const maxUploadBytes = 64 << 20

// FileHandler serves milestone file association endpoints.
type FileHandler struct {
	BaseHandler
	files *timelineapp.FileService
}

// NewFileHandler creates a file handler.
func NewFileHandler(files *timelineapp.FileService, logger *zap.Logger) *FileHandler {
	return &FileHandler{
		BaseHandler: NewBaseHandler(logger),
		files:       files,
	}
}

// RegisterRoutes registers file routes under a milestone.
func (h *FileHandler) RegisterRoutes(rg *gin.RouterGroup) {
	files := rg.Group("/projects/:projectId/milestones/:id/files")
	{
		files.POST("", h.Upload)
		files.POST("/verify", h.Verify)
		files.DELETE("/:fileId", h.Remove)
	}
}

// Upload accepts multipart form files and associates them with the
// milestone. Small files go to the board card; large ones land in object
// storage and are linked back to the card.
func (h *FileHandler) Upload(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxUploadBytes); err != nil {
		h.BadRequest(c, "Invalid multipart form: "+err.Error())
		return
	}

	form := c.Request.MultipartForm
	headers := form.File["files"]
	if len(headers) == 0 {
		headers = form.File["file"]
	}
	if len(headers) == 0 {
		h.BadRequest(c, "No files in request")
		return
	}

	uploads := make([]timelineapp.FileUpload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			h.BadRequest(c, "Unreadable file "+fh.Filename)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			h.BadRequest(c, "Unreadable file "+fh.Filename)
			return
		}
		uploads = append(uploads, timelineapp.FileUpload{
			Name:     fh.Filename,
			MimeType: fh.Header.Get("Content-Type"),
			Data:     data,
		})
	}

	m, err := h.files.AddFiles(c.Request.Context(), c.Param("projectId"), c.Param("id"), uploads)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, dto.NewMilestoneResponse(m))
}

// Verify probes every associated file link and clears the URLs that no
// longer resolve. The file rows themselves stay.
func (h *FileHandler) Verify(c *gin.Context) {
	m, err := h.files.VerifyLinks(c.Request.Context(), c.Param("projectId"), c.Param("id"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, dto.NewMilestoneResponse(m))
}

// Remove detaches a file from the milestone.
func (h *FileHandler) Remove(c *gin.Context) {
	m, err := h.files.RemoveFile(c.Request.Context(), c.Param("projectId"), c.Param("id"), c.Param("fileId"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, dto.NewMilestoneResponse(m))
}
