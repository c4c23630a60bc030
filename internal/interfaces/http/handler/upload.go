package handler

import (
	"io"
	"time"

	appcatalog "github.com/cartly/backend/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// UploadHandler handles product image uploads to object storage
type UploadHandler struct {
	BaseHandler
	imageService *appcatalog.ImageService
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(imageService *appcatalog.ImageService) *UploadHandler {
	return &UploadHandler{
		imageService: imageService,
	}
}

// DownloadURLResponse carries a presigned download link
type DownloadURLResponse struct {
	URL       string `json:"url"`
	ExpiresAt string `json:"expires_at"`
}

// Upload godoc
// @Summary      Upload a product image
// @Description  Store an image in object storage and return its public URL
// @Tags         uploads
// @Accept       multipart/form-data
// @Produce      json
// @Param        image formData file true "Image file (jpeg, png, gif or webp)"
// @Success      201 {object} dto.Response{data=appcatalog.UploadImageResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      415 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/uploads [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		h.BadRequest(c, "Missing image file")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Unable to read image file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.InternalError(c, "Unable to read image file")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	result, err := h.imageService.Upload(c.Request.Context(), fileHeader.Filename, contentType, data)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// Delete godoc
// @Summary      Delete an uploaded image
// @Description  Remove an image from object storage by its storage key
// @Tags         uploads
// @Produce      json
// @Param        key query string true "Storage key"
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/uploads [delete]
func (h *UploadHandler) Delete(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		h.BadRequest(c, "Missing key parameter")
		return
	}

	if err := h.imageService.Delete(c.Request.Context(), key); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// DownloadURL godoc
// @Summary      Get a presigned download URL
// @Description  Returns a time-limited download link for a stored image
// @Tags         uploads
// @Produce      json
// @Param        key query string true "Storage key"
// @Success      200 {object} dto.Response{data=DownloadURLResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/uploads/download-url [get]
func (h *UploadHandler) DownloadURL(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		h.BadRequest(c, "Missing key parameter")
		return
	}

	url, expiresAt, err := h.imageService.DownloadURL(c.Request.Context(), key)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, DownloadURLResponse{
		URL:       url,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	})
}
