package event

import (
	"github.com/LagrangeDev/LagrangeGo/client"
	"github.com/LagrangeDev/LagrangeGo/message"
	message2 "github.com/vintcessun/AutoAt-Bot/message"
	"github.com/vintcessun/AutoAt-Bot/utils"
)

// LogicManager 逻辑管理器
type LogicManager struct {
	client   *client.QQClient
	router   *Router
	eventBus *EventBus
	logger   utils.Logger
}

// NewLogicManager 创建新的逻辑管理器，默认带恢复和日志中间件
func NewLogicManager(client *client.QQClient, bus *EventBus) *LogicManager {
	lm := &LogicManager{
		client:   client,
		router:   NewRouter(),
		eventBus: bus,
		logger:   utils.WithField("module", "logic"),
	}
	lm.UseMiddleware(ChainMiddleware(RecoveryMiddleware(), LoggingMiddleware()))
	return lm
}

// UseMiddleware 使用全局中间件
func (lm *LogicManager) UseMiddleware(middleware Middleware) {
	lm.router.Use(middleware)
}

// AddRoute 添加路由
func (lm *LogicManager) AddRoute(route *Route) {
	lm.router.AddRoute(route)
}

// HandleGroupMessage 处理群消息的便捷方法
func (lm *LogicManager) HandleGroupMessage(name string, handler HandlerFunc, matchers ...Matcher) {
	route := NewRoute(name, NewHandlerAdapter(handler))
	route.Match(NewMessageTypeMatcher("group"))
	for _, matcher := range matchers {
		route.Match(matcher)
	}
	lm.AddRoute(route)
}

// HandleCommandGroup 注册命令组，例如 "/autoat status"；参数通过 ctx.GetArgs() 获取。
// 私聊和群聊都会匹配。
func (lm *LogicManager) HandleCommandGroup(prefix string, group string, handler HandlerFunc, middlewares ...Middleware) {
	route := NewRoute("command_"+group, NewHandlerAdapter(func(ctx *MessageContext) error {
		err := handler(ctx)
		if err == nil && lm.eventBus != nil {
			lm.eventBus.Publish(NewMessageEvent(EventTypeCommandExecuted, ctx))
		}
		return err
	}))
	route.Match(NewOrMatcher(NewMessageTypeMatcher("group"), NewMessageTypeMatcher("private")))
	route.Match(NewCommandMatcher(prefix, group))
	for _, middleware := range middlewares {
		route.Use(middleware)
	}
	lm.AddRoute(route)
}

// SetupEventListeners 设置事件监听器
func (lm *LogicManager) SetupEventListeners() {
	lm.client.PrivateMessageEvent.Subscribe(func(client *client.QQClient, event *message.PrivateMessage) {
		lm.ProcessMessage(NewMessageContext(client, message2.NewMessage(event)))
	})

	lm.client.GroupMessageEvent.Subscribe(func(client *client.QQClient, event *message.GroupMessage) {
		lm.ProcessMessage(NewMessageContext(client, message2.NewMessage(event)))
	})

	lm.logger.Info("消息事件监听已设置")
}

// ProcessMessage 处理消息
func (lm *LogicManager) ProcessMessage(ctx *MessageContext) {
	if lm.eventBus != nil {
		lm.eventBus.Publish(NewMessageEvent(EventTypeMessageReceived, ctx))
	}

	lm.router.Handle(ctx)

	if lm.eventBus != nil {
		lm.eventBus.Publish(NewMessageEvent(EventTypeMessageProcessed, ctx))
	}
}
