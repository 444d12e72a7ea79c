package app

import (
	"fmt"
	"path/filepath"

	"github.com/LagrangeDev/LagrangeGo/client"
	"github.com/LagrangeDev/LagrangeGo/client/auth"
	"github.com/vintcessun/AutoAt-Bot/autoat"
	"github.com/vintcessun/AutoAt-Bot/bot"
	"github.com/vintcessun/AutoAt-Bot/config"
	"github.com/vintcessun/AutoAt-Bot/event"
	"github.com/vintcessun/AutoAt-Bot/logic"
	"github.com/vintcessun/AutoAt-Bot/tools"
	"github.com/vintcessun/AutoAt-Bot/utils"
	"golang.org/x/sync/errgroup"
)

// Container 依赖注入容器
type Container struct {
	config       *config.Config
	logger       utils.Logger
	client       *client.QQClient
	bot          *bot.Bot
	eventBus     *event.EventBus
	logicManager *event.LogicManager
	replies      *tools.ReplyStore
	plugin       *autoat.Plugin
}

// NewContainer 创建新的容器实例
func NewContainer(cfg *config.Config) *Container {
	return &Container{config: cfg}
}

// Initialize 初始化所有依赖
func (c *Container) Initialize() error {
	if err := utils.InitWithConfig(&c.config.Log); err != nil {
		return err
	}
	c.logger = utils.GetLogger()

	appInfo := auth.AppList["linux"]["3.2.19-39038"]
	c.client = client.NewClient(c.config.Bot.Account, c.config.Bot.Password)
	c.client.SetLogger(utils.GetProtocolLogger())
	c.client.UseVersion(appInfo)
	if c.config.Bot.SignServer != "" {
		c.client.AddSignServer(c.config.Bot.SignServer)
	}
	c.client.UseDevice(auth.NewDeviceInfo(114514))

	c.bot = bot.NewBot(c.client, filepath.Join(c.config.Bot.CachePath, c.config.Bot.SigFile))
	c.eventBus = event.NewEventBus()
	c.logicManager = event.NewLogicManager(c.client, c.eventBus)

	replies, err := tools.OpenReplyStore(c.config.Bot.CachePath, c.logger)
	if err != nil {
		return fmt.Errorf("打开回复记录失败: %w", err)
	}
	c.replies = replies
	c.replies.Subscribe(c.eventBus)

	settings := autoat.Resolve(c.config.AutoAt, c.logger)
	c.plugin, err = autoat.New(settings, c.logger,
		autoat.WithHistory(c.replies),
		autoat.WithReplyObserver(func(r autoat.ReplyRecord) {
			c.eventBus.Publish(event.NewReplyEvent(r))
		}),
	)
	if err != nil {
		return err
	}

	logic.RegisterCustomLogic(c.logicManager, c.plugin)
	return nil
}

// Start 登录并开始处理消息
func (c *Container) Start() error {
	if err := c.bot.Login(); err != nil {
		return err
	}
	c.bot.Listen()
	c.plugin.Initialize()
	c.logicManager.SetupEventListeners()
	return nil
}

// Shutdown 停止插件后并行关闭机器人、事件总线和回复记录
func (c *Container) Shutdown() error {
	c.plugin.Terminate()

	var g errgroup.Group
	g.Go(c.bot.Stop)
	g.Go(func() error {
		if err := c.eventBus.Close(); err != nil {
			return err
		}
		return c.replies.Close()
	})
	return g.Wait()
}
