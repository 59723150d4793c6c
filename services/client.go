package services

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second // 单次写超时
	pongWait       = 60 * time.Second // 超过该时间未收到 Pong 视为断线
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024
	sendBufferSize = 32
)

// Client 一条已认证的 WebSocket 连接
type Client struct {
	UserID       string // 认证得到的用户身份
	ConnectionID string
	Conn         *websocket.Conn
	Send         chan []byte
}

func NewClient(userID, connectionID string, conn *websocket.Conn) *Client {
	return &Client{
		UserID:       userID,
		ConnectionID: connectionID,
		Conn:         conn,
		Send:         make(chan []byte, sendBufferSize),
	}
}

// ReadPump 读取并分发连接上的事件，连接断开时触发下线清理。
// 每条连接各占一个读 goroutine。
func (c *Client) ReadPump(router *EventRouter) {
	defer func() {
		router.HandleDisconnect(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Read error from client %s: %v", c.ConnectionID, err)
			}
			return
		}

		var envelope Envelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			log.Printf("Invalid message format from client %s: %s", c.ConnectionID, raw)
			continue
		}
		router.Dispatch(c, envelope)
	}
}

// WritePump 串行写出 Send 通道里的数据并维持心跳。
// 通道由 Hub.Unregister 关闭，关闭即退出。
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
