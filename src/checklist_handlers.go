package main

import (
	"hotelmaint/src/middlewares"
	"hotelmaint/src/types"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func checklistHandlers(g *gin.RouterGroup, a *app) *gin.RouterGroup {
	g.
		GET("/hotels/:id/checklists", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			list, err := a.checklists.List(ctx, middlewares.CurrentSession(ctx), id)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": list})
		}).
		POST("/hotels/:id/checklists", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			var body types.CreateChecklistRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				respondError(ctx, bindError{err})
				return
			}
			c, err := a.checklists.Create(ctx, middlewares.CurrentSession(ctx), id, &body)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": c})
		}).
		GET("/checklists/:id", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			c, err := a.checklists.Get(ctx, middlewares.CurrentSession(ctx), id)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": c})
		}).
		PUT("/checklists/:id/rooms/:roomId", func(ctx *gin.Context) {
			var params types.ChecklistRoomURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				respondError(ctx, bindError{err})
				return
			}
			var body types.UpdateChecklistRoomRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				respondError(ctx, bindError{err})
				return
			}
			c, err := a.checklists.SetRoomStatus(ctx, middlewares.CurrentSession(ctx),
				uuid.MustParse(params.ID), uuid.MustParse(params.RoomID), &body)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": c})
		})

	return g
}
