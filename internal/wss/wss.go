package wss

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/daodao97/xgo/xlog"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// 连接统计
var (
	activeConnections int64
	totalConnections  int64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许跨域连接
	},
	HandshakeTimeout: 45 * time.Second,
}

// 消息类型定义
type Message struct {
	Type string `json:"type"`
}

type VerifyMessage struct {
	Type      string `json:"type"`
	Claim     string `json:"claim"`
	TimeRange string `json:"time_range"`
}

type StatusMessage struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Progress int    `json:"progress"`
}

type PongMessage struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

func SetupRouter(e *gin.Engine) {
	e.GET("/ws", func(c *gin.Context) {
		ctx := c.Request.Context()

		connID := atomic.AddInt64(&totalConnections, 1)
		atomic.AddInt64(&activeConnections, 1)

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			xlog.ErrorC(ctx, "WebSocket升级失败", xlog.Err(err))
			atomic.AddInt64(&activeConnections, -1)
			return
		}
		defer func() {
			conn.Close()
			atomic.AddInt64(&activeConnections, -1)
			xlog.InfoC(ctx, "WebSocket连接已断开",
				xlog.Any("conn_id", connID),
				xlog.Any("active", atomic.LoadInt64(&activeConnections)))
		}()

		xlog.InfoC(ctx, "新的WebSocket连接建立",
			xlog.Any("conn_id", connID),
			xlog.String("ip", c.ClientIP()),
			xlog.Any("active", atomic.LoadInt64(&activeConnections)))

		conn.SetReadLimit(64 * 1024)
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})

		for {
			messageType, p, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
					xlog.WarnC(ctx, "WebSocket异常断开", xlog.Any("conn_id", connID), xlog.Err(err))
				} else {
					xlog.InfoC(ctx, "WebSocket连接结束", xlog.Any("conn_id", connID))
				}
				break
			}

			conn.SetReadDeadline(time.Now().Add(60 * time.Second))

			if messageType == websocket.TextMessage {
				handleMessage(conn, c, p)
			}
		}
	})

	// 连接统计接口
	e.GET("/ws_stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"active_connections": atomic.LoadInt64(&activeConnections),
			"total_connections":  atomic.LoadInt64(&totalConnections),
		})
	})
}

func handleMessage(conn *websocket.Conn, c *gin.Context, data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		xlog.Error("JSON解析错误", xlog.Err(err))
		return
	}

	switch msg.Type {
	case "ping":
		handlePing(conn)
	case "verify":
		handleVerifyMessage(conn, data)
	default:
		xlog.WarnC(c.Request.Context(), "未知消息类型", xlog.String("type", msg.Type))
	}
}

func sendMessage(conn *websocket.Conn, message any) error {
	return conn.WriteJSON(message)
}
