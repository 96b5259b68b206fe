package main

import (
	"hotelmaint/src/middlewares"
	"net/http"

	"github.com/gin-gonic/gin"
)

func notificationHandlers(g *gin.RouterGroup, a *app) *gin.RouterGroup {
	g.
		GET("/notifications", func(ctx *gin.Context) {
			list, err := a.notifications.List(ctx, middlewares.CurrentSession(ctx))
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": list})
		}).
		PATCH("/notifications/read-all", func(ctx *gin.Context) {
			n, err := a.notifications.MarkAllRead(ctx, middlewares.CurrentSession(ctx))
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"updated": n})
		}).
		PATCH("/notifications/:id/read", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			if err := a.notifications.MarkRead(ctx, middlewares.CurrentSession(ctx), id); err != nil {
				respondError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		})

	return g
}
