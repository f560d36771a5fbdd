package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/KhushalSainS/flowbit/interfaces"
)

func ListPDFs(attachmentRepo interfaces.PDFAttachmentRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

		attachments, err := attachmentRepo.List(c.Request.Context(), c.Query("configId"), limit, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list attachments"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"attachments": attachments})
	}
}

func DownloadPDF(attachmentRepo interfaces.PDFAttachmentRepository, fileStore interfaces.FileStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		attachment, err := attachmentRepo.GetByID(ctx, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load attachment"})
			return
		}
		if attachment == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "attachment not found"})
			return
		}

		content, err := fileStore.Read(ctx, attachment.StoragePath)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read attachment content"})
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment.Filename))
		c.Data(http.StatusOK, attachment.ContentType, content)
	}
}
