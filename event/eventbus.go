package event

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vintcessun/AutoAt-Bot/autoat"
)

// Event 事件接口
type Event interface {
	GetType() string
	GetData() interface{}
	GetTimestamp() time.Time
}

// BaseEvent 基础事件结构
type BaseEvent struct {
	Type      string
	Data      interface{}
	Timestamp time.Time
}

func (e *BaseEvent) GetType() string {
	return e.Type
}

func (e *BaseEvent) GetData() interface{} {
	return e.Data
}

func (e *BaseEvent) GetTimestamp() time.Time {
	return e.Timestamp
}

// NewEvent 创建新事件
func NewEvent(eventType string, data interface{}) *BaseEvent {
	return &BaseEvent{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// EventHandler 事件处理器
type EventHandler func(ctx context.Context, event Event) error

const handlerTimeout = 30 * time.Second

// EventBus 事件总线
type EventBus struct {
	handlers map[string][]EventHandler
	mu       sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	closed   bool
}

// NewEventBus 创建新的事件总线
func NewEventBus() *EventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &EventBus{
		handlers: make(map[string][]EventHandler),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Subscribe 订阅事件
func (bus *EventBus) Subscribe(eventType string, handler EventHandler) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	bus.handlers[eventType] = append(bus.handlers[eventType], handler)
	logrus.Debugf("订阅事件类型: %s", eventType)
}

func (bus *EventBus) snapshot(eventType string) []EventHandler {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	if bus.closed {
		return nil
	}
	handlers := make([]EventHandler, len(bus.handlers[eventType]))
	copy(handlers, bus.handlers[eventType])
	return handlers
}

// Publish 异步发布事件，总线关闭后直接丢弃
func (bus *EventBus) Publish(event Event) {
	// wg.Add 必须和 closed 检查在同一把锁内，否则会与 Close 中的 wg.Wait 竞争
	bus.mu.RLock()
	if bus.closed {
		bus.mu.RUnlock()
		logrus.Debugf("事件总线已关闭，丢弃事件: %s", event.GetType())
		return
	}
	handlers := make([]EventHandler, len(bus.handlers[event.GetType()]))
	copy(handlers, bus.handlers[event.GetType()])
	bus.wg.Add(len(handlers))
	bus.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	logrus.Debugf("发布事件: %s", event.GetType())

	for _, handler := range handlers {
		go func(h EventHandler) {
			defer bus.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logrus.Errorf("事件处理器发生panic: %v", r)
				}
			}()

			ctx, cancel := context.WithTimeout(bus.ctx, handlerTimeout)
			defer cancel()

			if err := h(ctx, event); err != nil {
				logrus.Errorf("处理事件 %s 时发生错误: %v", event.GetType(), err)
			}
		}(handler)
	}
}

// PublishSync 同步发布事件，遇到第一个错误即返回
func (bus *EventBus) PublishSync(event Event) error {
	handlers := bus.snapshot(event.GetType())
	if len(handlers) == 0 {
		return nil
	}

	logrus.Debugf("同步发布事件: %s", event.GetType())

	ctx, cancel := context.WithTimeout(bus.ctx, handlerTimeout)
	defer cancel()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			logrus.Errorf("处理事件 %s 时发生错误: %v", event.GetType(), err)
			return err
		}
	}

	return nil
}

// Wait 等待所有异步处理器结束
func (bus *EventBus) Wait() {
	bus.wg.Wait()
}

// Close 关闭事件总线，等待已发布的事件处理完毕，之后的发布都被丢弃
func (bus *EventBus) Close() error {
	bus.mu.Lock()
	if bus.closed {
		bus.mu.Unlock()
		return nil
	}
	bus.closed = true
	bus.mu.Unlock()

	bus.wg.Wait()
	bus.cancel()
	logrus.Info("事件总线已关闭")
	return nil
}

// GetSubscriberCount 获取订阅者数量
func (bus *EventBus) GetSubscriberCount(eventType string) int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.handlers[eventType])
}

// MessageEvent 消息事件
type MessageEvent struct {
	*BaseEvent
	MessageContext *MessageContext
}

// NewMessageEvent 创建消息事件
func NewMessageEvent(eventType string, ctx *MessageContext) *MessageEvent {
	return &MessageEvent{
		BaseEvent:      NewEvent(eventType, ctx.Message),
		MessageContext: ctx,
	}
}

// 预定义事件类型
const (
	EventTypeMessageReceived  = "message.received"
	EventTypeMessageProcessed = "message.processed"
	EventTypeCommandExecuted  = "command.executed"
	EventTypeAutoAtReplied    = "autoat.replied"
)

// NewReplyEvent 自动回复事件，Data 为 autoat.ReplyRecord
func NewReplyEvent(record autoat.ReplyRecord) *BaseEvent {
	return NewEvent(EventTypeAutoAtReplied, record)
}
