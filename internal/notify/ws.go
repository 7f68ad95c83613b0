package notify

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsPeer struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (p *wsPeer) Notify(context.Context) error {
	return p.write(websocket.TextMessage, []byte(OrdersUpdated))
}

func (p *wsPeer) write(messageType int, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return p.conn.WriteMessage(messageType, data)
}

// ServeWS upgrades the request and sends OrdersUpdated text frames on every
// broadcast until the peer disconnects.
func ServeWS(w http.ResponseWriter, r *http.Request, hub *Hub, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	peer := &wsPeer{conn: conn}
	sub := hub.Subscribe(peer)
	log.Debug("websocket client connected", zap.String("subscription_id", sub.ID()), zap.String("remote", r.RemoteAddr))

	readDone := make(chan struct{})
	go pingLoop(peer, sub, readDone)

	readPump(conn, log)
	close(readDone)

	hub.Unsubscribe(sub)
	log.Debug("websocket client disconnected", zap.String("subscription_id", sub.ID()))
}

func readPump(conn *websocket.Conn, log *zap.Logger) {
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

func pingLoop(peer *wsPeer, sub *Subscription, readDone <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-readDone:
			return
		case <-sub.Done():
			_ = peer.conn.Close()
			return
		case <-ticker.C:
			if err := peer.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
