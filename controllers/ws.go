package controllers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"ShopAssist/middleware"
	svc "ShopAssist/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS handled at HTTP level; allow WS here
		return true
	},
}

type wsChatFrame struct {
	Type string `json:"type"`
	chatBody
}

type wsReplyFrame struct {
	Type string `json:"type"`
	*svc.ChatResult
}

type wsErrorFrame struct {
	Type   string `json:"type"`
	Status int    `json:"status"`
	Error  string `json:"error"`
}

// wsConn serialises writes; gorilla allows one concurrent writer.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsConn) writeJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return w.conn.WriteJSON(v)
}

func (w *wsConn) ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout))
}

// ChatWS runs chat turns over a websocket, one turn per client frame.
// Client protocol (JSON messages):
//
//	-> {type: "chat", user_id: number, message: string, conversation_id?: number}
//	<- {type: "reply", conversation_id: number, user_message: string, ai_response: string}
//	<- {type: "error", status: number, error: string}
func ChatWS(chat *svc.ChatService, limiter *middleware.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[ws] upgrade error: %v", err)
			return
		}
		defer conn.Close()
		ws := &wsConn{conn: conn}

		conn.SetReadLimit(1 << 20) // 1MB
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		})

		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(wsPingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					if err := ws.ping(); err != nil {
						return
					}
				}
			}
		}()

		key := middleware.ClientKey(c)
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Printf("[ws] read error: %v", err)
				}
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

			if limiter != nil && !limiter.Allow(key) {
				_ = ws.writeJSON(wsErrorFrame{Type: "error", Status: http.StatusTooManyRequests, Error: "too many requests"})
				continue
			}
			if err := ws.writeJSON(runWSTurn(c, chat, raw)); err != nil {
				log.Printf("[ws] write error: %v", err)
				return
			}
		}
	}
}

func runWSTurn(c *gin.Context, chat *svc.ChatService, raw []byte) any {
	var frame wsChatFrame
	if err := json.Unmarshal(raw, &frame); err != nil || strings.ToLower(frame.Type) != "chat" {
		return wsErrorFrame{Type: "error", Status: http.StatusBadRequest, Error: "invalid chat payload"}
	}
	req, err := frame.toRequest()
	if err == nil {
		err = ensureSelf(c, req.UserID)
	}
	var res *svc.ChatResult
	if err == nil {
		res, err = chat.Chat(c.Request.Context(), req)
	}
	if err != nil {
		status, msg := statusFor(err)
		if status >= http.StatusInternalServerError {
			log.Printf("[ws] request_id=%s turn failed: %v", middleware.GetRequestID(c), err)
		}
		return wsErrorFrame{Type: "error", Status: status, Error: msg}
	}
	return wsReplyFrame{Type: "reply", ChatResult: res}
}
