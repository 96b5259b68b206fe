package main

import (
	"hotelmaint/src/middlewares"
	"net/http"

	"github.com/gin-gonic/gin"
)

func dashboardHandlers(g *gin.RouterGroup, a *app) *gin.RouterGroup {
	g.GET("/dashboard", func(ctx *gin.Context) {
		f, ok := bindFilters(ctx)
		if !ok {
			return
		}
		d, err := a.dashboard.Build(ctx, middlewares.CurrentSession(ctx), f)
		if err != nil {
			respondError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"data": d})
	})
	return g
}
