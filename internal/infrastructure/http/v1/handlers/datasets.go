package handlers

import (
	"github.com/gin-gonic/gin"

	"datasets/internal/domain/record"
	"datasets/internal/infrastructure/http/v1/dto"
	"datasets/internal/metadata"
)

// DatasetHandler serves dataset metadata and input schemas.
type DatasetHandler struct {
	*BaseHandler
	datasets metadata.Provider
	records  *record.Service
}

// NewDatasetHandler creates a new dataset handler.
func NewDatasetHandler(base *BaseHandler, datasets metadata.Provider, records *record.Service) *DatasetHandler {
	return &DatasetHandler{BaseHandler: base, datasets: datasets, records: records}
}

// List handles GET /datasets.
func (h *DatasetHandler) List(c *gin.Context) {
	all, err := h.datasets.Datasets(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	out := make([]dto.DatasetResponse, len(all))
	for i, ds := range all {
		out[i] = dto.FromDataset(ds)
	}
	h.OK(c, out)
}

// Get handles GET /datasets/:dataset.
func (h *DatasetHandler) Get(c *gin.Context) {
	ds, err := h.datasets.Dataset(c.Request.Context(), c.Param("dataset"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromDataset(ds))
}

// Schema handles GET /datasets/:dataset/schema: the "add record" schema.
func (h *DatasetHandler) Schema(c *gin.Context) {
	s, err := h.records.Schema(c.Request.Context(), c.Param("dataset"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, s)
}
