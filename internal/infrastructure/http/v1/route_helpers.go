package v1

import (
	"github.com/gin-gonic/gin"
)

// ResourceRoutes lists the standard handlers of a soft-deletable resource.
// Nil handlers are skipped.
type ResourceRoutes struct {
	List     gin.HandlerFunc
	LowStock gin.HandlerFunc
	Create   gin.HandlerFunc
	Get      gin.HandlerFunc
	Update   gin.HandlerFunc
	Delete   gin.HandlerFunc
	SetStock gin.HandlerFunc
}

// RegisterResourceRoutes mounts the standard routes of a resource on group.
// Static segments are registered before "/:id".
func RegisterResourceRoutes(group *gin.RouterGroup, r ResourceRoutes) {
	if r.List != nil {
		group.GET("", r.List)
	}
	if r.LowStock != nil {
		group.GET("/low-stock", r.LowStock)
	}
	if r.Create != nil {
		group.POST("", r.Create)
	}
	if r.Get != nil {
		group.GET("/:id", r.Get)
	}
	if r.Update != nil {
		group.PUT("/:id", r.Update)
	}
	if r.Delete != nil {
		group.DELETE("/:id", r.Delete)
	}
	if r.SetStock != nil {
		group.PUT("/:id/stock", r.SetStock)
	}
}
