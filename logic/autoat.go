package logic

import (
	"context"

	"github.com/vintcessun/AutoAt-Bot/autoat"
	"github.com/vintcessun/AutoAt-Bot/event"
	message2 "github.com/vintcessun/AutoAt-Bot/message"
	"github.com/vintcessun/AutoAt-Bot/utils"
)

// AutoReply 群消息处理：监控用户at机器人账号时回at
func AutoReply(plugin *autoat.Plugin) event.HandlerFunc {
	return func(ctx *event.MessageContext) error {
		groupMsg, ok := ctx.Message.(*message2.GroupMessage)
		if !ok {
			return nil
		}

		sender := autoat.SenderFunc(func(_ context.Context, groupID string, components []autoat.Component) error {
			return ctx.SendGroupComponents(groupID, components)
		})
		_, err := plugin.HandleGroupMessage(ctx.GetContext(), groupMsg.ToAutoAt(), sender)
		return err
	}
}

// Command autoat 指令组，每次调用回复一条文本
func Command(plugin *autoat.Plugin) event.HandlerFunc {
	return func(ctx *event.MessageContext) error {
		utils.Info("指令内容 ", ctx.GetText())
		return ctx.SendText(plugin.Dispatch(ctx.GetSenderID(), ctx.GetArgs()))
	}
}
