package handler

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"nomenclator/internal/app"
	"nomenclator/internal/export"
	"nomenclator/internal/transport/http/response"
)

type NomenclatureHandler struct {
	nomenclatureService *app.NomenclatureService
	exportFilename      string
}

type SaveNomenclatureRequest struct {
	Nomenclature string `json:"nomenclature"`
	Project      string `json:"project"`
	Extension    string `json:"extension"`
	User         string `json:"user"`
}

type ComposeRequest struct {
	Separator string   `json:"separator"`
	Values    []string `json:"values" binding:"required"`
}

func NewNomenclatureHandler(nomenclatureService *app.NomenclatureService, exportFilename string) *NomenclatureHandler {
	if exportFilename == "" {
		exportFilename = "nomenclatures.xlsx"
	}
	return &NomenclatureHandler{
		nomenclatureService: nomenclatureService,
		exportFilename:      exportFilename,
	}
}

func (h *NomenclatureHandler) Compose(c *gin.Context) {
	var req ComposeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	response.OK(c, gin.H{"nomenclature": h.nomenclatureService.Compose(req.Separator, req.Values)})
}

func (h *NomenclatureHandler) Save(c *gin.Context) {
	var req SaveNomenclatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	record, err := h.nomenclatureService.Save(c.Request.Context(), app.SaveInput{
		Nomenclature: req.Nomenclature,
		Project:      req.Project,
		Extension:    req.Extension,
		User:         req.User,
	})
	if err != nil {
		h.storageError(c, err, "save nomenclature failed")
		return
	}

	response.OK(c, gin.H{
		"status":  "success",
		"message": "Nomenclature saved successfully",
		"id":      record.ID,
	})
}

func (h *NomenclatureHandler) List(c *gin.Context) {
	records, err := h.nomenclatureService.List(c.Request.Context())
	if err != nil {
		h.storageError(c, err, "list nomenclatures failed")
		return
	}

	response.OK(c, records)
}

// Export serves the history as an XLSX attachment. The workbook is built in
// memory first so a storage fault still yields a JSON error.
func (h *NomenclatureHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if _, err := h.nomenclatureService.Export(c.Request.Context(), &buf); err != nil {
		h.storageError(c, err, "export failed")
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+h.exportFilename)
	c.Data(http.StatusOK, export.MediaType, buf.Bytes())
}

func (h *NomenclatureHandler) storageError(c *gin.Context, err error, fallback string) {
	_ = c.Error(err)
	if errors.Is(err, app.ErrStorageUnavailable) {
		response.Error(c, http.StatusServiceUnavailable, response.CodeStorageUnavailable, app.ErrStorageUnavailable.Error())
		return
	}
	response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
}
