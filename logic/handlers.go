package logic

import (
	"github.com/vintcessun/AutoAt-Bot/autoat"
	"github.com/vintcessun/AutoAt-Bot/event"
	"github.com/vintcessun/AutoAt-Bot/utils"
)

// CommandPrefix 指令前缀
const CommandPrefix = "/"

// RegisterCustomLogic 注册自动回at和 autoat 指令组
func RegisterCustomLogic(manager *event.LogicManager, plugin *autoat.Plugin) {
	manager.HandleGroupMessage("autoat_reply", AutoReply(plugin), event.NewAtMatcher(plugin.BotID()))
	manager.HandleCommandGroup(CommandPrefix, autoat.CommandGroup, Command(plugin))

	utils.Info("自定义逻辑注册完成")
}
