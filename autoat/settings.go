package autoat

import (
	"errors"
	"strings"

	"github.com/vintcessun/AutoAt-Bot/config"
	"github.com/vintcessun/AutoAt-Bot/utils"
)

// 解析失败时使用的兜底配置
const (
	DefaultAdmin = "123456789"
	DefaultGroup = "987654321"
	DefaultUser  = "111111111"
)

var (
	ErrEmptyAdminList   = errors.New("管理员白名单不能为空")
	ErrNoMonitorEntries = errors.New("没有有效的监控配置")
)

// ReplyPolicy 自定义回复配置
type ReplyPolicy struct {
	Enabled bool
	Text    string
}

// MonitorEntry 一个群的监控用户
type MonitorEntry struct {
	GroupID string
	Users   []string
}

// Has 判断用户是否在该条目中
func (e MonitorEntry) Has(userID string) bool {
	for _, u := range e.Users {
		if u == userID {
			return true
		}
	}
	return false
}

// MonitorTable 监控表，启动后不再修改
type MonitorTable []MonitorEntry

// IsTarget 判断消息是否来自监控群的监控用户，同一群可有多条配置
func (t MonitorTable) IsTarget(groupID, senderID string) bool {
	for _, entry := range t {
		if entry.GroupID == groupID && entry.Has(senderID) {
			return true
		}
	}
	return false
}

// Settings 解析后的插件配置
type Settings struct {
	BotID    string
	Reply    ReplyPolicy
	Admins   []string
	Monitors MonitorTable
}

// ParseAdmins 解析逗号分隔的管理员白名单
func ParseAdmins(raw string) ([]string, error) {
	admins := splitList(raw)
	if len(admins) == 0 {
		return nil, ErrEmptyAdminList
	}
	return admins, nil
}

// ParseMonitorTable 解析 "群号:用户1,用户2" 格式的多行监控配置，格式错误的行跳过
func ParseMonitorTable(raw string, logger utils.Logger) (MonitorTable, error) {
	var table MonitorTable
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		groupID, usersStr, ok := strings.Cut(line, ":")
		if !ok {
			logger.Warnf("忽略格式错误的配置行: %s", line)
			continue
		}

		groupID = strings.TrimSpace(groupID)
		users := dedupe(splitList(usersStr))
		if groupID == "" || len(users) == 0 {
			logger.Warnf("忽略空的群号或用户列表: %s", line)
			continue
		}

		table = append(table, MonitorEntry{GroupID: groupID, Users: users})
	}

	if len(table) == 0 {
		return nil, ErrNoMonitorEntries
	}
	return table, nil
}

// Resolve 把原始配置解析为插件配置，解析失败时整体回退到兜底值
func Resolve(raw config.AutoAtConfig, logger utils.Logger) Settings {
	admins, err := parseLenient(raw.AdminWhitelist, ParseAdmins)
	if err != nil {
		logger.Errorf("管理员白名单配置解析失败: %v", err)
		admins = []string{DefaultAdmin}
	}

	monitors, err := parseLenient(raw.MonitorConfig, func(s string) (MonitorTable, error) {
		return ParseMonitorTable(s, logger)
	})
	if err != nil {
		logger.Errorf("监控配置解析失败: %v", err)
		monitors = MonitorTable{{GroupID: DefaultGroup, Users: []string{DefaultUser}}}
	}

	return Settings{
		BotID:    raw.MyQQ.String(),
		Reply:    ReplyPolicy{Enabled: raw.EnableReplyMessage, Text: raw.ReplyMessage},
		Admins:   admins,
		Monitors: monitors,
	}
}

func parseLenient[T any](raw config.Lenient, parse func(string) (T, error)) (T, error) {
	value, err := raw.Get()
	if err != nil {
		var zero T
		return zero, err
	}
	return parse(value)
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
