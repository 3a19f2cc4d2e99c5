package wss

import (
	"time"

	"github.com/daodao97/xgo/xlog"
	"github.com/gorilla/websocket"
)

func handlePing(conn *websocket.Conn) {
	pong := PongMessage{
		Type:      "pong",
		Timestamp: time.Now().UnixMilli(),
	}

	if err := conn.WriteJSON(pong); err != nil {
		xlog.Error("发送pong失败", xlog.Err(err))
	}
}
