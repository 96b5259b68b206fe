package main

import (
	"hotelmaint/src/middlewares"
	"hotelmaint/src/types"
	"net/http"

	"github.com/gin-gonic/gin"
)

func userHandlers(g *gin.RouterGroup, a *app) *gin.RouterGroup {
	g.
		GET("/me", func(ctx *gin.Context) {
			user, err := a.directory.Me(ctx, middlewares.CurrentSession(ctx))
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": user})
		})

	users := g.Group("/users", middlewares.RequireRole(types.ROLE_ADMIN))
	users.
		GET("", func(ctx *gin.Context) {
			list, err := a.directory.ListUsers(ctx, middlewares.CurrentSession(ctx))
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": list})
		}).
		POST("", func(ctx *gin.Context) {
			var body types.CreateUserRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				respondError(ctx, bindError{err})
				return
			}
			user, err := a.directory.CreateUser(ctx, middlewares.CurrentSession(ctx), &body)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": user})
		}).
		PUT("/:id", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			var body types.UpdateUserRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				respondError(ctx, bindError{err})
				return
			}
			user, err := a.directory.UpdateUser(ctx, middlewares.CurrentSession(ctx), id, &body)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": user})
		})

	return g
}
