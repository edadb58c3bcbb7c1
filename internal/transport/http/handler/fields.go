package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"nomenclator/internal/app"
	"nomenclator/internal/transport/http/response"
)

type FieldHandler struct {
	fieldService *app.FieldService
}

func NewFieldHandler(fieldService *app.FieldService) *FieldHandler {
	return &FieldHandler{fieldService: fieldService}
}

// Upload accepts a multipart form with "file" (CSV) and returns the field
// groups it describes.
func (h *FieldHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}

	f, err := file.Open()
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeParseFailed, app.ErrParseFailed.Error())
		return
	}
	defer f.Close()

	fields, err := h.fieldService.ParseUpload(c.Request.Context(), app.UploadInput{
		Filename: file.Filename,
		Content:  f,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNoFileSelected):
			response.Error(c, http.StatusBadRequest, response.CodeNoFileSelected, err.Error())
		case errors.Is(err, app.ErrUnsupportedFile):
			response.Error(c, http.StatusBadRequest, response.CodeInvalidFileType, err.Error())
		case errors.Is(err, app.ErrFileTooLarge):
			response.Error(c, http.StatusBadRequest, response.CodeFileTooLarge, err.Error())
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, response.CodeParseFailed, app.ErrParseFailed.Error())
		}
		return
	}

	response.OK(c, gin.H{"fields": fields})
}
