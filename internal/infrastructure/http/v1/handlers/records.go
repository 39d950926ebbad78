package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"datasets/internal/domain/record"
	"datasets/internal/infrastructure/http/v1/dto"
	"datasets/internal/metadata"
)

const defaultHistoryLimit = 50

// RecordHandler serves records of one dataset and their children.
type RecordHandler struct {
	*BaseHandler
	datasets metadata.Provider
	service  *record.Service
}

// NewRecordHandler creates a new record handler.
func NewRecordHandler(base *BaseHandler, datasets metadata.Provider, service *record.Service) *RecordHandler {
	return &RecordHandler{BaseHandler: base, datasets: datasets, service: service}
}

// List handles GET /datasets/:dataset/records.
func (h *RecordHandler) List(c *gin.Context) {
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	res, err := h.service.List(c.Request.Context(), c.Param("dataset"), q.Filter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromListResult(res, dto.FromRecord))
}

// Create handles POST /datasets/:dataset/records.
func (h *RecordHandler) Create(c *gin.Context) {
	var req dto.SubmissionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.Input()
	if err != nil {
		h.Error(c, err)
		return
	}

	r, err := h.service.Create(c.Request.Context(), c.Param("dataset"), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, recordLocation(r), dto.FromRecord(r))
}

// Get handles GET /datasets/:dataset/records/:entity.
func (h *RecordHandler) Get(c *gin.Context) {
	key, ok := h.RecordKey(c)
	if !ok {
		return
	}

	r, err := h.service.Get(c.Request.Context(), key)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromRecord(r))
}

// Update handles PUT /datasets/:dataset/records/:entity.
func (h *RecordHandler) Update(c *gin.Context) {
	key, ok := h.RecordKey(c)
	if !ok {
		return
	}
	var req dto.SubmissionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.Input()
	if err != nil {
		h.Error(c, err)
		return
	}

	r, err := h.service.Update(c.Request.Context(), key, in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromRecord(r))
}

// EditSchema handles GET /datasets/:dataset/records/:entity/schema.
func (h *RecordHandler) EditSchema(c *gin.Context) {
	key, ok := h.RecordKey(c)
	if !ok {
		return
	}

	s, err := h.service.EditSchema(c.Request.Context(), key)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, s)
}

// Row handles GET /datasets/:dataset/records/:entity/row.
func (h *RecordHandler) Row(c *gin.Context) {
	key, ok := h.RecordKey(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	ds, err := h.datasets.Dataset(ctx, key.Dataset)
	if err != nil {
		h.Error(c, err)
		return
	}
	row, err := h.service.Row(ctx, key)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.RowResponse{Key: key, Columns: record.Columns(ds), Values: row})
}

// DisplayValue handles GET /datasets/:dataset/records/:entity/fields/:field.
func (h *RecordHandler) DisplayValue(c *gin.Context) {
	key, ok := h.RecordKey(c)
	if !ok {
		return
	}

	field := c.Param("field")
	v, err := h.service.DisplayValue(c.Request.Context(), key, field)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.DisplayValueResponse{Field: field, Value: v})
}

// Children handles GET /datasets/:dataset/records/:entity/children.
func (h *RecordHandler) Children(c *gin.Context) {
	key, ok := h.RecordKey(c)
	if !ok {
		return
	}

	children, err := h.service.Children(c.Request.Context(), key)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromRecords(children))
}

// ChildSchema handles GET /datasets/:dataset/records/:entity/children/:related.
func (h *RecordHandler) ChildSchema(c *gin.Context) {
	key, ok := h.RecordKey(c)
	if !ok {
		return
	}

	s, err := h.service.ChildSchema(c.Request.Context(), key, c.Param("related"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, s)
}

// AddChild handles POST /datasets/:dataset/records/:entity/children/:related.
func (h *RecordHandler) AddChild(c *gin.Context) {
	key, ok := h.RecordKey(c)
	if !ok {
		return
	}
	var req dto.SubmissionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.Input()
	if err != nil {
		h.Error(c, err)
		return
	}

	r, err := h.service.AddChild(c.Request.Context(), key, c.Param("related"), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, recordLocation(r), dto.FromRecord(r))
}

// History handles GET /datasets/:dataset/records/:entity/history.
func (h *RecordHandler) History(c *gin.Context) {
	key, ok := h.RecordKey(c)
	if !ok {
		return
	}

	entries, err := h.service.History(c.Request.Context(), key, h.ParseIntQuery(c, "limit", defaultHistoryLimit))
	if err != nil {
		h.Error(c, err)
		return
	}
	out, err := dto.FromHistory(entries)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, out)
}

func recordLocation(r *record.Record) string {
	return fmt.Sprintf("/api/v1/datasets/%s/records/%d", r.Dataset, r.Entity)
}
