package handler

import (
	"fmt"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appErrors "github.com/noah-isme/supply-desk-api/pkg/errors"
	"github.com/noah-isme/supply-desk-api/pkg/response"
	"github.com/noah-isme/supply-desk-api/pkg/storage"
)

// AttachmentHandler stores request attachments and serves them back through
// signed, recipient-bound download links.
type AttachmentHandler struct {
	store       *storage.LocalStorage
	signer      *storage.SignedURLSigner
	maxFileSize int64
}

// NewAttachmentHandler constructs the handler.
func NewAttachmentHandler(store *storage.LocalStorage, signer *storage.SignedURLSigner, maxFileSize int64) *AttachmentHandler {
	if maxFileSize <= 0 {
		maxFileSize = 10 << 20
	}
	return &AttachmentHandler{store: store, signer: signer, maxFileSize: maxFileSize}
}

// Upload godoc
// @Summary Upload an attachment blob
// @Tags Attachments
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Attachment file"
// @Success 201 {object} response.Envelope
// @Router /attachments [post]
func (h *AttachmentHandler) Upload(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file field is required"))
		return
	}
	if fileHeader.Size > h.maxFileSize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file exceeds the allowed size"))
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer src.Close() //nolint:errcheck

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	relPath := path.Join(time.Now().UTC().Format("2006/01"), uuid.NewString()+ext)
	stored, err := h.store.SaveStream(relPath, src)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to store attachment"))
		return
	}

	response.Created(c, gin.H{
		"path":     stored,
		"filename": fileHeader.Filename,
		"size":     fileHeader.Size,
	})
}

// Sign godoc
// @Summary Issue a signed download link for an attachment
// @Tags Attachments
// @Produce json
// @Param path query string true "Stored attachment path"
// @Success 200 {object} response.Envelope
// @Router /attachments/sign [get]
func (h *AttachmentHandler) Sign(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	relPath := strings.TrimSpace(c.Query("path"))
	if relPath == "" || strings.Contains(relPath, "..") {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "a valid attachment path is required"))
		return
	}

	token, expiresAt, err := h.signer.Generate(claims.ParticipantID, relPath)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link"))
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"url":        fmt.Sprintf("/attachments/download?token=%s", token),
		"token":      token,
		"expires_at": expiresAt.UTC(),
	}, nil)
}

// Download godoc
// @Summary Download an attachment using a signed token
// @Tags Attachments
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Router /attachments/download [get]
func (h *AttachmentHandler) Download(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	_, relPath, _, err := h.signer.Parse(token, false)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token"))
		return
	}

	file, err := h.store.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "attachment not found"))
		return
	}
	defer file.Close() //nolint:errcheck

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(relPath)))
	c.File(h.store.Path(relPath))
}
