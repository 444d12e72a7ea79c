package event

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// LoggingMiddleware 日志中间件
func LoggingMiddleware() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx *MessageContext) error {
			start := time.Now()
			entry := logrus.WithFields(logrus.Fields{
				"type":   ctx.Message.MessageType(),
				"route":  ctx.GetString("route"),
				"sender": ctx.GetSenderID(),
			})
			entry.Debug("开始处理消息")

			err := next(ctx)

			duration := time.Since(start)
			if err != nil {
				entry.Errorf("处理消息失败 (耗时: %v): %v", duration, err)
			} else {
				entry.Debugf("处理消息成功 (耗时: %v)", duration)
			}

			return err
		}
	}
}

// RecoveryMiddleware 把处理器的 panic 转为错误
func RecoveryMiddleware() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx *MessageContext) (err error) {
			defer func() {
				if r := recover(); r != nil {
					logrus.Errorf("消息处理器发生panic: %v", r)
					err = fmt.Errorf("消息处理器发生panic: %v", r)
				}
			}()
			return next(ctx)
		}
	}
}

// ChainMiddleware 链式中间件
func ChainMiddleware(middlewares ...Middleware) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
