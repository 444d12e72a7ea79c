package autoat

import (
	"context"
	"strings"
	"time"

	"github.com/vintcessun/AutoAt-Bot/utils"
)

// GroupMessage 群消息中插件关心的部分
type GroupMessage struct {
	ID         uint32
	GroupID    string
	SenderID   string
	Components []Component
}

// Sender 发送群消息
type Sender interface {
	SendGroup(ctx context.Context, groupID string, components []Component) error
}

// SenderFunc 把函数适配为 Sender
type SenderFunc func(ctx context.Context, groupID string, components []Component) error

func (f SenderFunc) SendGroup(ctx context.Context, groupID string, components []Component) error {
	return f(ctx, groupID, components)
}

// ReplyRecord 一次自动回复
type ReplyRecord struct {
	MessageID uint32    `json:"message_id"`
	GroupID   string    `json:"group_id"`
	SenderID  string    `json:"sender_id"`
	At        time.Time `json:"at"`
}

// History 自动回复历史
type History interface {
	Count() (int, error)
	// Recent 最近的 limit 条记录，新的在前
	Recent(limit int) ([]ReplyRecord, error)
}

// Option 插件可选项
type Option func(*Plugin)

// WithReplyObserver 每次回复成功后回调
func WithReplyObserver(fn func(ReplyRecord)) Option {
	return func(p *Plugin) { p.onReply = fn }
}

// WithHistory 在状态中显示累计回复次数和最近的回复
func WithHistory(h History) Option {
	return func(p *Plugin) { p.history = h }
}

// Plugin 自动回at插件
type Plugin struct {
	botID    string
	reply    ReplyPolicy
	monitors MonitorTable
	admins   *AdminSet
	logger   utils.Logger
	onReply  func(ReplyRecord)
	history  History
	now      func() time.Time
}

// New 创建插件，settings 由 Resolve 得到
func New(settings Settings, logger utils.Logger, opts ...Option) (*Plugin, error) {
	admins, err := NewAdminSet(settings.Admins)
	if err != nil {
		return nil, err
	}
	p := &Plugin{
		botID:    settings.BotID,
		reply:    settings.Reply,
		monitors: append(MonitorTable(nil), settings.Monitors...),
		admins:   admins,
		logger:   logger.WithField("module", "autoat"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Plugin) BotID() string { return p.botID }

func (p *Plugin) Admins() *AdminSet { return p.admins }

func (p *Plugin) IsAdmin(userID string) bool {
	return p.admins.Contains(userID)
}

// Initialize 输出解析后的配置
func (p *Plugin) Initialize() {
	p.logger.Info("AutoAt插件已启动:")
	p.logger.Infof("  - 我的QQ号: %s", p.botID)
	p.logger.Infof("  - 管理员白名单: %s", strings.Join(p.admins.List(), ", "))
	p.logger.Infof("  - 自定义回复消息: %s", enabledText(p.reply.Enabled, "启用", "禁用"))
	if p.reply.Enabled {
		p.logger.Infof("  - 回复消息内容: %s", p.reply.Text)
	}
	p.logger.Info("  - 监控配置:")
	for i, entry := range p.monitors {
		p.logger.Infof("    %d. 群聊 %s: 监控用户 %s", i+1, entry.GroupID, strings.Join(entry.Users, ", "))
	}
}

// Terminate 插件不持有资源，只记录日志
func (p *Plugin) Terminate() {
	p.logger.Info("AutoAt插件已停止")
}

// Classify 监控用户at了机器人账号时返回 true
func (p *Plugin) Classify(msg GroupMessage) bool {
	return p.monitors.IsTarget(msg.GroupID, msg.SenderID) && MentionsBot(msg.Components, p.botID)
}

// HandleGroupMessage 命中时发送一次回复。发送错误原样返回给调用方。
func (p *Plugin) HandleGroupMessage(ctx context.Context, msg GroupMessage, sender Sender) (bool, error) {
	if !p.Classify(msg) {
		return false, nil
	}

	p.logger.Infof("检测到用户 %s 在群 %s 中at了我", msg.SenderID, msg.GroupID)

	if err := sender.SendGroup(ctx, msg.GroupID, BuildReply(msg.SenderID, p.reply)); err != nil {
		return true, err
	}

	if p.onReply != nil {
		p.onReply(ReplyRecord{
			MessageID: msg.ID,
			GroupID:   msg.GroupID,
			SenderID:  msg.SenderID,
			At:        p.now(),
		})
	}
	return true, nil
}

func enabledText(enabled bool, on, off string) string {
	if enabled {
		return on
	}
	return off
}
