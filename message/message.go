package message

import (
	"fmt"
	"strconv"

	"github.com/LagrangeDev/LagrangeGo/client"
	"github.com/LagrangeDev/LagrangeGo/message"
	"github.com/vintcessun/AutoAt-Bot/autoat"
)

type Message interface {
	MessageType() string
	GetMessage() interface{}
	SendMessage(client *client.QQClient, elements []message.IMessageElement) (interface{}, error)
	GetMessageElements() []message.IMessageElement
	GetSender() *message.Sender
}

type PrivateMessage struct {
	message *message.PrivateMessage
}

func (*PrivateMessage) MessageType() string       { return "私聊消息" }
func (m *PrivateMessage) GetMessage() interface{} { return m.message }
func (m *PrivateMessage) SendMessage(client *client.QQClient, elements []message.IMessageElement) (interface{}, error) {
	return client.SendPrivateMessage(m.message.Sender.Uin, elements)
}
func (m *PrivateMessage) GetMessageElements() []message.IMessageElement {
	return m.message.Elements
}
func (m *PrivateMessage) GetSender() *message.Sender {
	return m.message.Sender
}

type GroupMessage struct {
	message *message.GroupMessage
}

func (*GroupMessage) MessageType() string       { return "群聊消息" }
func (m *GroupMessage) GetMessage() interface{} { return m.message }

// SendMessage 原样发送到消息所在的群
func (m *GroupMessage) SendMessage(client *client.QQClient, elements []message.IMessageElement) (interface{}, error) {
	return client.SendGroupMessage(m.message.GroupUin, elements)
}
func (m *GroupMessage) GetMessageElements() []message.IMessageElement {
	return m.message.Elements
}
func (m *GroupMessage) GetSender() *message.Sender {
	return m.message.Sender
}

// ToAutoAt 转换为插件使用的群消息
func (m *GroupMessage) ToAutoAt() autoat.GroupMessage {
	return autoat.GroupMessage{
		ID:         m.message.ID,
		GroupID:    FormatUin(m.message.GroupUin),
		SenderID:   FormatUin(m.message.Sender.Uin),
		Components: ToComponents(m.message.Elements),
	}
}

func NewMessage(msg any) Message {
	switch v := msg.(type) {
	case *message.PrivateMessage:
		return &PrivateMessage{message: v}
	case message.PrivateMessage:
		return &PrivateMessage{message: &v}
	case *message.GroupMessage:
		return &GroupMessage{message: v}
	case message.GroupMessage:
		return &GroupMessage{message: &v}
	default:
		panic("消息类型不符合要求")
	}
}

// FormatUin QQ号转为插件使用的字符串标识
func FormatUin(uin uint32) string {
	return strconv.FormatUint(uint64(uin), 10)
}

// ParseUin 插件标识转回QQ号
func ParseUin(id string) (uint32, error) {
	uin, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("无效的QQ号 %q: %w", id, err)
	}
	return uint32(uin), nil
}

// ToComponents 只保留文本和at，其余元素忽略
func ToComponents(elements []message.IMessageElement) []autoat.Component {
	components := make([]autoat.Component, 0, len(elements))
	for _, element := range elements {
		switch e := element.(type) {
		case *message.TextElement:
			components = append(components, autoat.Text(e.Content))
		case *message.AtElement:
			components = append(components, autoat.Mention(FormatUin(e.TargetUin)))
		}
	}
	return components
}

// ToElements 把插件消息段转换为协议元素
func ToElements(components []autoat.Component) ([]message.IMessageElement, error) {
	elements := make([]message.IMessageElement, 0, len(components))
	for _, c := range components {
		switch c.Kind {
		case autoat.KindText:
			elements = append(elements, message.NewText(c.Text))
		case autoat.KindMention:
			uin, err := ParseUin(c.Target)
			if err != nil {
				return nil, err
			}
			elements = append(elements, message.NewAt(uin))
		default:
			return nil, fmt.Errorf("未知的消息段类型 %v", c.Kind)
		}
	}
	return elements, nil
}
