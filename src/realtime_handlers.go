package main

import (
	"hotelmaint/src/config"
	"hotelmaint/src/lib"
	"hotelmaint/src/middlewares"
	"hotelmaint/src/services"
	"hotelmaint/src/session"
	"io"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
)

// realtimeHandlers streams refetch hints over server-sent events. Change
// messages the caller may see are debounced into a single "invalidate"
// event listing the affected entities; admin edits to the caller's account
// arrive as a "session" event.
func realtimeHandlers(g *gin.RouterGroup, a *app) *gin.RouterGroup {
	g.GET("/realtime", func(ctx *gin.Context) {
		sess := middlewares.CurrentSession(ctx)
		reqCtx := ctx.Request.Context()

		changes, stop := a.feed.Subscribe(reqCtx, config.TICKET_CHANNEL, config.NOTIFICATION_CHANNEL)
		defer stop()

		fire := make(chan struct{}, 1)
		debounce := a.debounce
		if debounce == 0 {
			debounce = config.REALTIME_DEBOUNCE
		}
		debouncer := lib.NewDebouncer(debounce, func() {
			select {
			case fire <- struct{}{}:
			default:
			}
		})
		defer debouncer.Stop()

		sessions := make(chan *session.Session, 1)
		unsubscribe := a.hub.Subscribe(sess.UserID, func(s *session.Session) {
			select {
			case <-sessions:
			default:
			}
			select {
			case sessions <- s:
			default:
			}
		})
		defer unsubscribe()

		ctx.Header("Cache-Control", "no-cache")
		ctx.Header("Connection", "keep-alive")
		ctx.Header("X-Accel-Buffering", "no")
		ctx.Status(http.StatusOK)
		ctx.SSEvent("ready", gin.H{"user_id": sess.UserID})

		pending := map[string]struct{}{}
		ctx.Stream(func(w io.Writer) bool {
			select {
			case <-reqCtx.Done():
				return false
			case c, ok := <-changes:
				if !ok {
					return false
				}
				if services.ChangeVisible(sess, c) {
					pending[c.Entity] = struct{}{}
					debouncer.Trigger()
				}
				return true
			case <-fire:
				entities := make([]string, 0, len(pending))
				for e := range pending {
					entities = append(entities, e)
				}
				slices.Sort(entities)
				clear(pending)
				ctx.SSEvent("invalidate", gin.H{"entities": entities})
				return true
			case s := <-sessions:
				sess = s
				ctx.SSEvent("session", s)
				return true
			}
		})
	})
	return g
}
