package main

import (
	"hotelmaint/src/metrics"
	"hotelmaint/src/middlewares"
	"hotelmaint/src/models"
	"hotelmaint/src/services"
	"hotelmaint/src/types"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func bindID(ctx *gin.Context) (uuid.UUID, bool) {
	var params types.SimpleRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		respondError(ctx, bindError{err})
		return uuid.Nil, false
	}
	id, err := uuid.Parse(params.ID)
	if err != nil {
		respondError(ctx, bindError{err})
		return uuid.Nil, false
	}
	return id, true
}

func bindFilters(ctx *gin.Context) (metrics.Filters, bool) {
	var query types.TicketQueryFilters
	if err := ctx.ShouldBindQuery(&query); err != nil {
		respondError(ctx, bindError{err})
		return metrics.Filters{}, false
	}
	f, err := metrics.FromQuery(query)
	if err != nil {
		respondError(ctx, bindError{err})
		return metrics.Filters{}, false
	}
	return f, true
}

func (a *app) present(ctx *gin.Context, tickets []models.Ticket) []models.Ticket {
	out := make([]models.Ticket, 0, len(tickets))
	for i := range tickets {
		out = append(out, a.tickets.Present(ctx, &tickets[i]))
	}
	return out
}

func (a *app) attachHandler(solution bool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, ok := bindID(ctx)
		if !ok {
			return
		}
		fh, err := ctx.FormFile("file")
		if err != nil {
			respondError(ctx, bindError{err})
			return
		}
		f, err := fh.Open()
		if err != nil {
			respondError(ctx, err)
			return
		}
		defer f.Close()
		ticket, err := a.tickets.Attach(ctx, middlewares.CurrentSession(ctx), id, solution, services.Upload{
			Filename: fh.Filename,
			Size:     fh.Size,
			Body:     f,
		})
		if err != nil {
			log.Printf("Error attaching media to ticket %s: %s\n", id, err.Error())
			respondError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"data": a.tickets.Present(ctx, ticket)})
	}
}

func ticketHandlers(g *gin.RouterGroup, a *app) *gin.RouterGroup {
	g.
		GET("/tickets", func(ctx *gin.Context) {
			f, ok := bindFilters(ctx)
			if !ok {
				return
			}
			tickets, err := a.tickets.List(ctx, middlewares.CurrentSession(ctx), f)
			if err != nil {
				log.Printf("Error retrieving Tickets: %s\n", err.Error())
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": a.present(ctx, tickets)})
		}).
		GET("/tickets/:id", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			ticket, err := a.tickets.Get(ctx, middlewares.CurrentSession(ctx), id)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": a.tickets.Present(ctx, ticket)})
		}).
		POST("/tickets", func(ctx *gin.Context) {
			var body types.CreateTicketRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				respondError(ctx, bindError{err})
				return
			}
			ticket, created, err := a.tickets.Create(ctx, middlewares.CurrentSession(ctx), &body, ctx.GetHeader("Idempotency-Key"))
			if err != nil {
				log.Printf("error creating ticket: %s\n", err.Error())
				respondError(ctx, err)
				return
			}
			status := http.StatusCreated
			if !created {
				status = http.StatusOK
			}
			ctx.JSON(status, gin.H{"data": a.tickets.Present(ctx, ticket)})
		}).
		PATCH("/tickets/:id", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			var body types.UpdateTicketRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				respondError(ctx, bindError{err})
				return
			}
			ticket, err := a.tickets.Update(ctx, middlewares.CurrentSession(ctx), id, &body)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": a.tickets.Present(ctx, ticket)})
		}).
		DELETE("/tickets/:id", func(ctx *gin.Context) {
			id, ok := bindID(ctx)
			if !ok {
				return
			}
			if err := a.tickets.Delete(ctx, middlewares.CurrentSession(ctx), id); err != nil {
				respondError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		POST("/tickets/:id/attachments", a.attachHandler(false)).
		POST("/tickets/:id/solution-attachments", a.attachHandler(true))

	return g
}
