package api

import (
	"net/http"
	"time"

	"QuenoClient/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const wsWriteTimeout = 10 * time.Second

// SessionStream 通过 websocket 推送会话快照，每次状态变化推送一次
type SessionStream struct {
	session  *service.Session
	upgrader websocket.Upgrader
	logger   *logrus.Logger
}

// NewSessionStream allowOrigin 为 nil 时接受任意来源
func NewSessionStream(session *service.Session, logger *logrus.Logger, allowOrigin func(r *http.Request) bool) *SessionStream {
	if allowOrigin == nil {
		allowOrigin = func(*http.Request) bool { return true }
	}
	return &SessionStream{
		session:  session,
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		logger:   logger,
	}
}

// Handle GET /ws/session
func (s *SessionStream) Handle(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	snaps, stop := s.session.Watch()
	defer stop()

	// 客户端消息一律丢弃，读循环只用于感知连接关闭
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case snap, ok := <-snaps:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(snap); err != nil {
				s.logger.WithError(err).Debug("websocket write failed")
				return
			}
		case <-closed:
			return
		}
	}
}
