package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/log"
	"github.com/gorilla/websocket"

	"github.com/UkralStul/blogfront/internal/domain"
)

// WatchComments подписывается на новые комментарии поста по websocket.
// Канал закрывается, когда ctx отменен или соединение оборвалось.
func (c *Client) WatchComments(ctx context.Context, postID int64) (<-chan domain.Comment, error) {
	u := *c.baseURL
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = fmt.Sprintf("%s/ws/comments/%d", c.baseURL.Path, postID)

	dialer := websocket.Dialer{
		Jar:              c.httpClient.Jar,
		HandshakeTimeout: c.httpClient.Timeout,
		Proxy:            http.ProxyFromEnvironment,
	}
	conn, resp, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, &domain.ServerError{Status: resp.StatusCode, Message: "websocket handshake failed"}
		}
		return nil, &domain.NetworkError{Op: "WATCH " + u.Path, Err: err}
	}

	out := make(chan domain.Comment)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	go func() {
		defer close(out)
		defer close(done)
		defer conn.Close()
		for {
			var w CommentWire
			if err := conn.ReadJSON(&w); err != nil {
				if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.WithFields(log.F("post", postID)).Warnf("api: comment feed closed: %s", err)
				}
				return
			}
			select {
			case out <- w.Comment():
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
