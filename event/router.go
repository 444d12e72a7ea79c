package event

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/LagrangeDev/LagrangeGo/client"
	"github.com/LagrangeDev/LagrangeGo/message"
	"github.com/sirupsen/logrus"
	"github.com/vintcessun/AutoAt-Bot/autoat"
	message2 "github.com/vintcessun/AutoAt-Bot/message"
)

// SendFunc 发送消息元素
type SendFunc func(elements []message.IMessageElement) (interface{}, error)

// GroupSendFunc 向指定群发送消息元素
type GroupSendFunc func(groupUin uint32, elements []message.IMessageElement) (interface{}, error)

var ErrNoClient = errors.New("客户端未连接")

// MessageContext 消息上下文
type MessageContext struct {
	Client     *client.QQClient
	Message    message2.Message
	Metadata   map[string]interface{}
	ctx        context.Context
	text       string
	components []autoat.Component
	send       SendFunc
	groupSend  GroupSendFunc
}

// NewMessageContext 创建新的消息上下文
func NewMessageContext(client *client.QQClient, msg message2.Message) *MessageContext {
	ret := &MessageContext{
		Client:   client,
		Message:  msg,
		Metadata: make(map[string]interface{}),
		ctx:      context.Background(),
	}
	ret.send = func(elements []message.IMessageElement) (interface{}, error) {
		return ret.Message.SendMessage(ret.Client, elements)
	}
	ret.groupSend = func(groupUin uint32, elements []message.IMessageElement) (interface{}, error) {
		if ret.Client == nil {
			return nil, ErrNoClient
		}
		return ret.Client.SendGroupMessage(groupUin, elements)
	}
	elements := msg.GetMessageElements()
	ret.text = extractTextFromElements(elements)
	ret.components = message2.ToComponents(elements)
	return ret
}

// WithSendFunc 替换发送方式
func (mc *MessageContext) WithSendFunc(send SendFunc) *MessageContext {
	mc.send = send
	return mc
}

// WithGroupSendFunc 替换向其他群发送的方式
func (mc *MessageContext) WithGroupSendFunc(send GroupSendFunc) *MessageContext {
	mc.groupSend = send
	return mc
}

func (mc *MessageContext) SendMessage(elements []message.IMessageElement) (interface{}, error) {
	return mc.send(elements)
}

// SendText 发送一条纯文本
func (mc *MessageContext) SendText(text string) error {
	_, err := mc.SendMessage([]message.IMessageElement{message.NewText(text)})
	return err
}

// SendComponents 发送插件消息段
func (mc *MessageContext) SendComponents(components []autoat.Component) error {
	elements, err := message2.ToElements(components)
	if err != nil {
		return err
	}
	_, err = mc.SendMessage(elements)
	return err
}

// SendGroupComponents 向 groupID 发送插件消息段。目标就是当前消息所在的群时按回复发送。
func (mc *MessageContext) SendGroupComponents(groupID string, components []autoat.Component) error {
	groupUin, err := message2.ParseUin(groupID)
	if err != nil {
		return err
	}
	if msg, ok := mc.GetGroupMessage(); ok && msg.GroupUin == groupUin {
		return mc.SendComponents(components)
	}

	elements, err := message2.ToElements(components)
	if err != nil {
		return err
	}
	_, err = mc.groupSend(groupUin, elements)
	return err
}

// GetContext 获取上下文
func (mc *MessageContext) GetContext() context.Context {
	return mc.ctx
}

// WithContext 设置上下文
func (mc *MessageContext) WithContext(ctx context.Context) *MessageContext {
	mc.ctx = ctx
	return mc
}

// Set 设置元数据
func (mc *MessageContext) Set(key string, value interface{}) {
	mc.Metadata[key] = value
}

// Get 获取元数据
func (mc *MessageContext) Get(key string) (interface{}, bool) {
	value, exists := mc.Metadata[key]
	return value, exists
}

// GetString 获取字符串类型元数据
func (mc *MessageContext) GetString(key string) string {
	if value, exists := mc.Metadata[key]; exists {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return ""
}

// GetArgs 获取命令参数
func (mc *MessageContext) GetArgs() []string {
	if value, exists := mc.Metadata["args"]; exists {
		if args, ok := value.([]string); ok {
			return args
		}
	}
	return nil
}

// GetPrivateMessage 获取私聊消息
func (mc *MessageContext) GetPrivateMessage() (*message.PrivateMessage, bool) {
	msg, ok := mc.Message.GetMessage().(*message.PrivateMessage)
	return msg, ok
}

// GetGroupMessage 获取群消息
func (mc *MessageContext) GetGroupMessage() (*message.GroupMessage, bool) {
	msg, ok := mc.Message.GetMessage().(*message.GroupMessage)
	return msg, ok
}

// GetSenderID 发送者QQ号
func (mc *MessageContext) GetSenderID() string {
	sender := mc.Message.GetSender()
	if sender == nil {
		return ""
	}
	return message2.FormatUin(sender.Uin)
}

// GetText 获取消息文本内容
func (mc *MessageContext) GetText() string {
	return mc.text
}

// GetComponents 获取文本和at消息段
func (mc *MessageContext) GetComponents() []autoat.Component {
	return mc.components
}

// extractTextFromElements 从消息元素中提取文本
func extractTextFromElements(elements []message.IMessageElement) string {
	var textParts []string
	for _, element := range elements {
		if textElement, ok := element.(*message.TextElement); ok {
			textParts = append(textParts, textElement.Content)
		}
	}
	return strings.TrimSpace(strings.Join(textParts, ""))
}

// HandlerFunc 处理器函数类型
type HandlerFunc func(ctx *MessageContext) error

// Middleware 中间件类型
type Middleware func(HandlerFunc) HandlerFunc

// Handler 处理器接口
type Handler interface {
	Handle(ctx *MessageContext) error
}

// HandlerAdapter 处理器适配器
type HandlerAdapter struct {
	handler HandlerFunc
}

// NewHandlerAdapter 创建处理器适配器
func NewHandlerAdapter(handler HandlerFunc) *HandlerAdapter {
	return &HandlerAdapter{handler: handler}
}

// Handle 实现Handler接口
func (ha *HandlerAdapter) Handle(ctx *MessageContext) error {
	return ha.handler(ctx)
}

// Route 路由结构
type Route struct {
	Name        string
	Handler     Handler
	Middlewares []Middleware
	Matchers    []Matcher
}

// NewRoute 创建新路由
func NewRoute(name string, handler Handler) *Route {
	return &Route{
		Name:        name,
		Handler:     handler,
		Middlewares: make([]Middleware, 0),
		Matchers:    make([]Matcher, 0),
	}
}

// Use 添加中间件
func (r *Route) Use(middleware Middleware) *Route {
	r.Middlewares = append(r.Middlewares, middleware)
	return r
}

// Match 添加匹配器
func (r *Route) Match(matcher Matcher) *Route {
	r.Matchers = append(r.Matchers, matcher)
	return r
}

// Router 路由器
type Router struct {
	routes       []*Route
	middlewares  []Middleware
	errorHandler func(error, *MessageContext)
	mu           sync.RWMutex
}

// NewRouter 创建新路由器
func NewRouter() *Router {
	return &Router{
		routes:      make([]*Route, 0),
		middlewares: make([]Middleware, 0),
		errorHandler: func(err error, ctx *MessageContext) {
			logrus.Errorf("处理消息时发生错误: %v", err)
		},
	}
}

// SetErrorHandler 设置错误处理器
func (router *Router) SetErrorHandler(handler func(error, *MessageContext)) *Router {
	router.mu.Lock()
	defer router.mu.Unlock()
	router.errorHandler = handler
	return router
}

// Use 添加全局中间件
func (router *Router) Use(middleware Middleware) *Router {
	router.mu.Lock()
	defer router.mu.Unlock()
	router.middlewares = append(router.middlewares, middleware)
	return router
}

// AddRoute 添加路由
func (router *Router) AddRoute(route *Route) *Router {
	router.mu.Lock()
	defer router.mu.Unlock()
	router.routes = append(router.routes, route)
	return router
}

// Handle 依次匹配所有路由并执行命中的处理器，返回命中的路由数
func (router *Router) Handle(ctx *MessageContext) int {
	router.mu.RLock()
	routes := make([]*Route, len(router.routes))
	copy(routes, router.routes)
	middlewares := make([]Middleware, len(router.middlewares))
	copy(middlewares, router.middlewares)
	errorHandler := router.errorHandler
	router.mu.RUnlock()

	hits := 0
	for _, route := range routes {
		if !matchAll(route.Matchers, ctx) {
			continue
		}
		hits++

		handler := route.Handler.Handle
		for i := len(route.Middlewares) - 1; i >= 0; i-- {
			handler = route.Middlewares[i](handler)
		}
		for i := len(middlewares) - 1; i >= 0; i-- {
			handler = middlewares[i](handler)
		}

		ctx.Set("route", route.Name)
		if err := handler(ctx); err != nil {
			errorHandler(err, ctx)
		}
	}
	return hits
}

func matchAll(matchers []Matcher, ctx *MessageContext) bool {
	for _, matcher := range matchers {
		if !matcher.Match(ctx) {
			return false
		}
	}
	return true
}
