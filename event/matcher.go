package event

import (
	"strings"

	"github.com/vintcessun/AutoAt-Bot/autoat"
)

// Matcher 匹配器接口
type Matcher interface {
	Match(ctx *MessageContext) bool
}

// MessageTypeMatcher 消息类型匹配器
type MessageTypeMatcher struct {
	MessageType string
}

func (m *MessageTypeMatcher) Match(ctx *MessageContext) bool {
	switch m.MessageType {
	case "private":
		_, ok := ctx.GetPrivateMessage()
		return ok
	case "group":
		_, ok := ctx.GetGroupMessage()
		return ok
	default:
		return false
	}
}

// NewMessageTypeMatcher 创建消息类型匹配器
func NewMessageTypeMatcher(msgType string) *MessageTypeMatcher {
	return &MessageTypeMatcher{MessageType: msgType}
}

// CommandMatcher 命令匹配器，命中后把命令和参数写入上下文
type CommandMatcher struct {
	Commands []string
	Prefix   string
}

func (m *CommandMatcher) Match(ctx *MessageContext) bool {
	text := ctx.GetText()
	if text == "" {
		return false
	}

	if m.Prefix != "" {
		if !strings.HasPrefix(text, m.Prefix) {
			return false
		}
		text = strings.TrimPrefix(text, m.Prefix)
	}

	parts := strings.Fields(text)
	if len(parts) == 0 {
		return false
	}

	command := parts[0]
	for _, cmd := range m.Commands {
		if cmd == command {
			ctx.Set("command", command)
			ctx.Set("args", parts[1:])
			return true
		}
	}

	return false
}

// NewCommandMatcher 创建命令匹配器
func NewCommandMatcher(prefix string, commands ...string) *CommandMatcher {
	return &CommandMatcher{Commands: commands, Prefix: prefix}
}

// AndMatcher 逻辑AND匹配器
type AndMatcher struct {
	Matchers []Matcher
}

func (m *AndMatcher) Match(ctx *MessageContext) bool {
	return matchAll(m.Matchers, ctx)
}

// NewAndMatcher 创建逻辑AND匹配器
func NewAndMatcher(matchers ...Matcher) *AndMatcher {
	return &AndMatcher{Matchers: matchers}
}

// OrMatcher 逻辑OR匹配器
type OrMatcher struct {
	Matchers []Matcher
}

func (m *OrMatcher) Match(ctx *MessageContext) bool {
	for _, matcher := range m.Matchers {
		if matcher.Match(ctx) {
			return true
		}
	}
	return false
}

// NewOrMatcher 创建逻辑OR匹配器
func NewOrMatcher(matchers ...Matcher) *OrMatcher {
	return &OrMatcher{Matchers: matchers}
}

// CustomMatcher 自定义匹配器
type CustomMatcher struct {
	MatchFunc func(*MessageContext) bool
}

func (m *CustomMatcher) Match(ctx *MessageContext) bool {
	return m.MatchFunc(ctx)
}

// NewCustomMatcher 创建自定义匹配器
func NewCustomMatcher(matchFunc func(*MessageContext) bool) *CustomMatcher {
	return &CustomMatcher{MatchFunc: matchFunc}
}

// AtMatcher 群消息中at了指定账号
type AtMatcher struct {
	BotID string
}

func (m *AtMatcher) Match(ctx *MessageContext) bool {
	if _, ok := ctx.GetGroupMessage(); !ok {
		return false
	}
	return autoat.MentionsBot(ctx.GetComponents(), m.BotID)
}

// NewAtMatcher 创建@匹配器
func NewAtMatcher(botID string) *AtMatcher {
	return &AtMatcher{BotID: botID}
}
