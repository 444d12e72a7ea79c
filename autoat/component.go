// Package autoat 实现自动回at插件：被监控用户在监控群里at机器人账号时，回at该用户。
package autoat

import "fmt"

// ComponentKind 消息段类型
type ComponentKind int

const (
	KindText ComponentKind = iota
	KindMention
)

func (k ComponentKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindMention:
		return "mention"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Component 消息段，按 Kind 区分文本与at
type Component struct {
	Kind   ComponentKind
	Text   string
	Target string
}

// Text 创建文本消息段
func Text(content string) Component {
	return Component{Kind: KindText, Text: content}
}

// Mention 创建at消息段
func Mention(target string) Component {
	return Component{Kind: KindMention, Target: target}
}

// MentionsBot 判断消息段中是否有at机器人账号
func MentionsBot(components []Component, botID string) bool {
	for _, c := range components {
		switch c.Kind {
		case KindMention:
			if c.Target == botID {
				return true
			}
		case KindText:
		}
	}
	return false
}

// BuildReply 构造回复：先at发送者，启用自定义回复且内容非空时追加文本
func BuildReply(senderID string, policy ReplyPolicy) []Component {
	reply := []Component{Mention(senderID)}
	if policy.Enabled && policy.Text != "" {
		reply = append(reply, Text(" "+policy.Text))
	}
	return reply
}
