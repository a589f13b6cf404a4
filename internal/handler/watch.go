package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-admin-gateway/internal/query"
)

// streamWatch serves a subscription as server-sent events. The initial
// snapshot goes out immediately, then every store update until the client
// disconnects. Closing the subscription is what lets the store drop the
// entry once nobody is watching.
func streamWatch(c *gin.Context, snapshot query.Result, sub *query.Subscription) {
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.SSEvent("update", snapshot)
	c.Writer.Flush()

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case res, ok := <-sub.Updates():
			if !ok {
				return false
			}
			c.SSEvent("update", res)
			return true
		}
	})
}
