package transport

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nostrchest/chest.go/controllers"
	"github.com/nostrchest/chest.go/lib/service"
)

// RegisterEndpoints wires the read-only lookup API. Direct lookups and
// reference lookups are distinct store operations; the reference shapes
// live as sub-resources of the referenced note.
func RegisterEndpoints(svc *service.ChestService, e *echo.Echo) {
	eventCtrl := controllers.NewEventController(svc)
	configCtrl := controllers.NewConfigController(svc)
	healthCtrl := controllers.NewHealthController(svc)

	lookups := e.Group("")
	if svc.Config.CacheEnabled {
		cacheClient := CreateCacheClient(time.Duration(svc.Config.CacheTTL) * time.Second)
		lookups.Use(cacheClient.Middleware())
	}

	// direct lookups
	lookups.GET("/users/:pubkey", eventCtrl.GetUser)
	lookups.GET("/notes/:id", eventCtrl.GetNote)
	lookups.GET("/zaps/:id", eventCtrl.GetZap)
	lookups.GET("/long/:id", eventCtrl.GetLong)

	// reference lookups
	lookups.GET("/notes/:id/replies", eventCtrl.ListReplies)
	lookups.GET("/notes/:id/reactions", eventCtrl.ListReactions)
	lookups.GET("/notes/:id/zaps", eventCtrl.ListZaps)

	e.GET("/config", configCtrl.GetConfig)
	e.GET("/health", healthCtrl.Check)
}
