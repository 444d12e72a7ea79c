package autoat

import (
	"errors"
	"fmt"
	"strings"
)

// CommandGroup 命令组名
const CommandGroup = "autoat"

const (
	msgStatusDenied = "❌ 权限不足，只有管理员可以查看插件状态"
	msgTestDenied   = "❌ 权限不足，只有管理员可以执行测试命令"
	msgAddDenied    = "❌ 权限不足，只有现有管理员可以添加新管理员"
	msgRemoveDenied = "❌ 权限不足，只有管理员可以移除管理员"
	msgTestOK       = "✅ AutoAt插件运行正常！"
	msgLastAdmin    = "❌ 不能移除最后一个管理员"
)

// 状态中显示的最近回复条数
const recentReplies = 3

type subcommand struct {
	names []string
	arg   string
	desc  string
	run   func(p *Plugin, senderID string, args []string) string
}

var subcommands = []subcommand{
	{
		names: []string{"状态", "status", "info"},
		desc:  "显示插件状态和配置",
		run:   func(p *Plugin, senderID string, _ []string) string { return p.Status(senderID) },
	},
	{
		names: []string{"测试", "test"},
		desc:  "测试指令",
		run:   func(p *Plugin, senderID string, _ []string) string { return p.Test(senderID) },
	},
	{
		names: []string{"添加管理员", "add_admin"},
		arg:   "qq_id",
		desc:  "添加管理员",
		run:   func(p *Plugin, senderID string, args []string) string { return p.AddAdmin(senderID, args[0]) },
	},
	{
		names: []string{"移除管理员", "remove_admin"},
		arg:   "qq_id",
		desc:  "移除管理员",
		run:   func(p *Plugin, senderID string, args []string) string { return p.RemoveAdmin(senderID, args[0]) },
	},
}

// Dispatch 处理 autoat 命令组，args 为组名之后的参数
func (p *Plugin) Dispatch(senderID string, args []string) string {
	if len(args) == 0 {
		return Help()
	}

	for _, sub := range subcommands {
		if !contains(sub.names, args[0]) {
			continue
		}
		rest := args[1:]
		if sub.arg != "" && len(rest) == 0 {
			return fmt.Sprintf("❌ 缺少参数 %s，用法: /%s %s <%s>", sub.arg, CommandGroup, sub.names[0], sub.arg)
		}
		return sub.run(p, senderID, rest)
	}
	return Help()
}

// Help 命令组帮助
func Help() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s 自动回at插件管理\n", CommandGroup)
	for _, sub := range subcommands {
		fmt.Fprintf(&b, "├── %s", strings.Join(sub.names, "/"))
		if sub.arg != "" {
			fmt.Fprintf(&b, " <%s>", sub.arg)
		}
		fmt.Fprintf(&b, ": %s\n", sub.desc)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Status 显示插件状态和配置
func (p *Plugin) Status(senderID string) string {
	if !p.IsAdmin(senderID) {
		return msgStatusDenied
	}

	var b strings.Builder
	b.WriteString("📋 AutoAt插件状态:\n\n")
	fmt.Fprintf(&b, "🤖 我的QQ号: %s\n", p.botID)
	fmt.Fprintf(&b, "👑 管理员列表: %s\n", strings.Join(p.admins.List(), ", "))
	fmt.Fprintf(&b, "💬 自定义回复: %s\n", enabledText(p.reply.Enabled, "✅启用", "❌禁用"))
	if p.reply.Enabled {
		fmt.Fprintf(&b, "📝 回复内容: %s\n", p.reply.Text)
	}

	fmt.Fprintf(&b, "\n📊 监控配置 (共%d项):\n", len(p.monitors))
	for i, entry := range p.monitors {
		fmt.Fprintf(&b, "%d. 群聊 %s\n", i+1, entry.GroupID)
		fmt.Fprintf(&b, "   👥 监控用户: %s\n", strings.Join(entry.Users, ", "))
	}

	if p.history != nil {
		count, err := p.history.Count()
		if err != nil {
			p.logger.Warnf("读取回复记录失败: %v", err)
		} else {
			fmt.Fprintf(&b, "\n📨 累计自动回复: %d 次\n", count)
		}

		recent, err := p.history.Recent(recentReplies)
		if err != nil {
			p.logger.Warnf("读取最近回复失败: %v", err)
		} else if len(recent) > 0 {
			b.WriteString("🕒 最近回复:\n")
			for _, r := range recent {
				fmt.Fprintf(&b, "   %s 群聊 %s 用户 %s\n", r.At.Format("01-02 15:04:05"), r.GroupID, r.SenderID)
			}
		}
	}

	return b.String()
}

// Test 测试指令
func (p *Plugin) Test(senderID string) string {
	if !p.IsAdmin(senderID) {
		return msgTestDenied
	}
	return msgTestOK
}

// AddAdmin 添加管理员，只在本次运行期间有效
func (p *Plugin) AddAdmin(senderID, qqID string) string {
	if !p.IsAdmin(senderID) {
		return msgAddDenied
	}

	if err := p.admins.Add(qqID); err != nil {
		return fmt.Sprintf("❌ 用户 %s 已经是管理员了", qqID)
	}

	p.logger.WithField("operator", senderID).Infof("添加管理员 %s", qqID)
	return fmt.Sprintf("✅ 已添加 %s 为管理员（重启插件后恢复为配置中的管理员列表）", qqID)
}

// RemoveAdmin 移除管理员，只在本次运行期间有效
func (p *Plugin) RemoveAdmin(senderID, qqID string) string {
	if !p.IsAdmin(senderID) {
		return msgRemoveDenied
	}

	err := p.admins.Remove(qqID)
	switch {
	case errors.Is(err, ErrNotAdmin):
		return fmt.Sprintf("❌ 用户 %s 不是管理员", qqID)
	case errors.Is(err, ErrLastAdmin):
		return msgLastAdmin
	case err != nil:
		return "❌ " + err.Error()
	}

	p.logger.WithField("operator", senderID).Infof("移除管理员 %s", qqID)
	return fmt.Sprintf("✅ 已移除 %s 的管理员权限（重启插件后恢复为配置中的管理员列表）", qqID)
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
