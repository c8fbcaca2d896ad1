package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "communication/internal/errors"
	"communication/internal/model"
	"communication/internal/service"
)

// FileHandler serves upload and file metadata endpoints.
type FileHandler struct {
	fileService service.FileService
}

// NewFileHandler creates a new file handler.
func NewFileHandler(fileService service.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// UploadResponse is returned after a file has been stored.
type UploadResponse struct {
	Status   string `json:"status"`
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
}

// FileListResponse lists every stored file.
type FileListResponse struct {
	Count int              `json:"count"`
	Files []model.FileInfo `json:"files"`
}

// FileMetadataResponse is the metadata of a single file.
type FileMetadataResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

func badForm(msg string) error {
	return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
		Error: msg,
		Code:  "INVALID_FORM",
	})
}

// Upload godoc
// @Summary Upload a file
// @Description The whole file is read into memory before it is stored.
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File content"
// @Param description formData string true "Free-text description"
// @Success 200 {object} UploadResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /upload [post]
func (h *FileHandler) Upload(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return badForm("invalid multipart form")
	}
	headers := form.File["file"]
	if len(headers) == 0 {
		return badForm("missing file")
	}
	descriptions, ok := form.Value["description"]
	if !ok || len(descriptions) == 0 {
		return badForm("missing description")
	}

	header := headers[0]
	f, err := header.Open()
	if err != nil {
		return respondError(c, err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return respondError(c, err)
	}

	id, err := h.fileService.UploadFile(c.Request().Context(), header.Filename, content, header.Header.Get(echo.HeaderContentType), descriptions[0])
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, UploadResponse{
		Status:   "success",
		FileID:   id,
		Filename: header.Filename,
	})
}

// ListFiles godoc
// @Summary List stored files
// @Tags files
// @Produce json
// @Success 200 {object} FileListResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /files [get]
func (h *FileHandler) ListFiles(c echo.Context) error {
	files, err := h.fileService.ListFiles(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, FileListResponse{Count: len(files), Files: files})
}

// GetFile godoc
// @Summary Get file metadata
// @Tags files
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} FileMetadataResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /file/{id} [get]
func (h *FileHandler) GetFile(c echo.Context) error {
	info, err := h.fileService.GetFileMetadata(c.Request().Context(), c.Param("id"))
	if err != nil {
		// any failure reads as not found here
		if !errors.Is(err, apperrors.ErrFileNotFound) {
			log.WithError(err).WithField("file_id", c.Param("id")).Warn("file lookup failed")
		}
		return respondError(c, apperrors.ErrFileNotFound)
	}
	return c.JSON(http.StatusOK, FileMetadataResponse{
		Filename:    info.Filename,
		ContentType: info.ContentType,
	})
}

// DeleteFile godoc
// @Summary Delete a file
// @Tags files
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /delete/{id} [delete]
func (h *FileHandler) DeleteFile(c echo.Context) error {
	if err := h.fileService.DeleteFile(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "File deleted successfully"})
}
