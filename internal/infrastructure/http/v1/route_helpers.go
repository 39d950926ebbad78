package v1

import (
	"github.com/gin-gonic/gin"
)

// RecordRouteHandler defines the record endpoints of one dataset.
type RecordRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	EditSchema(c *gin.Context)
	Row(c *gin.Context)
	DisplayValue(c *gin.Context)
	History(c *gin.Context)
	Children(c *gin.Context)
	ChildSchema(c *gin.Context)
	AddChild(c *gin.Context)
}

// RegisterRecordRoutes registers record routes under group, which must
// carry the :dataset parameter.
//
// Usage:
//
//	handler := handlers.NewRecordHandler(baseHandler, cfg.Datasets, cfg.Records)
//	RegisterRecordRoutes(datasets.Group("/:dataset/records"), handler, writeGuards...)
func RegisterRecordRoutes(group *gin.RouterGroup, handler RecordRouteHandler, writeGuards ...gin.HandlerFunc) {
	write := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, writeGuards...), h)
	}

	group.GET("", handler.List)
	group.POST("", write(handler.Create)...)
	group.GET("/:entity", handler.Get)
	group.PUT("/:entity", write(handler.Update)...)
	group.GET("/:entity/schema", handler.EditSchema)
	group.GET("/:entity/row", handler.Row)
	group.GET("/:entity/fields/:field", handler.DisplayValue)
	group.GET("/:entity/history", handler.History)
	group.GET("/:entity/children", handler.Children)
	group.GET("/:entity/children/:related", handler.ChildSchema)
	group.POST("/:entity/children/:related", write(handler.AddChild)...)
}
