package controllers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/yigit/unilink/internal/middleware"
	wsclient "github.com/yigit/unilink/internal/pkg/websocket"
)

// streamOpener starts a live feed bound to ctx
type streamOpener[T any] func(ctx context.Context) (<-chan T, error)

// serveStream opens the feed, upgrades the connection and pushes every frame
// to the client until either side goes away. Errors raised while opening the
// feed are answered as plain JSON before the upgrade.
func serveStream[T any](c *gin.Context, upgrader *websocket.Upgrader, log zerolog.Logger, open streamOpener[T], inbound wsclient.InboundFunc) {
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	frames, err := open(ctx)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("path", c.FullPath()).Msg("WebSocket upgrade failed")
		return
	}
	log.Debug().Str("path", c.FullPath()).Msg("WebSocket connected")

	out := make(chan any)
	go func() {
		defer close(out)
		for frame := range frames {
			select {
			case out <- frame:
			case <-ctx.Done():
				return
			}
		}
	}()
	wsclient.NewClient(conn, log, inbound).Run(ctx, cancel, out)
}
