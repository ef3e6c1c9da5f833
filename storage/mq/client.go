package mq

import (
	"context"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"Seasons/config"
)

var (
	conn    *amqp.Connection
	connMu  sync.RWMutex
	initErr error
	once    sync.Once
)

func Init() error {
	once.Do(func() {
		url := config.Cfg.GetRabbitMQURL()

		var err error
		conn, err = amqp.Dial(url)
		if err != nil {
			initErr = err
			return
		}
	})

	return initErr
}

// Connection 返回底层连接，未初始化时为 nil
func Connection() *amqp.Connection {
	connMu.RLock()
	defer connMu.RUnlock()
	return conn
}

func Close(ctx context.Context) error {
	connMu.Lock()
	defer connMu.Unlock()

	if conn == nil {
		return nil
	}

	err := conn.Close()
	conn = nil
	return err
}
