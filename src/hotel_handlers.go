package main

import (
	"hotelmaint/src/middlewares"
	"hotelmaint/src/types"
	"net/http"

	"github.com/gin-gonic/gin"
)

func hotelHandlers(g *gin.RouterGroup, a *app) *gin.RouterGroup {
	g.
		GET("/hotels", func(ctx *gin.Context) {
			hotels, err := a.directory.ListHotels(ctx, middlewares.CurrentSession(ctx))
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": hotels})
		}).
		POST("/hotels", func(ctx *gin.Context) {
			var body types.CreateHotelRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				respondError(ctx, bindError{err})
				return
			}
			hotel, err := a.directory.CreateHotel(ctx, middlewares.CurrentSession(ctx), &body)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": hotel})
		}).
		PUT("/hotels/:id", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			var body types.CreateHotelRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				respondError(ctx, bindError{err})
				return
			}
			hotel, err := a.directory.UpdateHotel(ctx, middlewares.CurrentSession(ctx), id, &body)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": hotel})
		}).
		PATCH("/hotels/:id/deactivate", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			hotel, err := a.directory.DeactivateHotel(ctx, middlewares.CurrentSession(ctx), id)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": hotel})
		}).
		GET("/hotels/:id/rooms", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			floors, err := a.directory.ListFloors(ctx, middlewares.CurrentSession(ctx), id)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": floors})
		}).
		POST("/hotels/:id/rooms", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			var body types.CreateRoomRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				respondError(ctx, bindError{err})
				return
			}
			room, err := a.directory.CreateRoom(ctx, middlewares.CurrentSession(ctx), id, &body)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": room})
		}).
		DELETE("/rooms/:id", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			if err := a.directory.DeleteRoom(ctx, middlewares.CurrentSession(ctx), id); err != nil {
				respondError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		})

	return g
}
