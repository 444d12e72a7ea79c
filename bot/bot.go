package bot

import (
	"path/filepath"

	"github.com/LagrangeDev/LagrangeGo/client"
)

// Bot 组合登录、签名和连接管理
type Bot struct {
	client        *client.QQClient
	loginMgr      *LoginManager
	authMgr       *AuthManager
	connectionMgr *ConnectionManager
}

// NewBot 创建新的Bot实例，签名保存在 sigFile，登录二维码保存在同一目录
func NewBot(client *client.QQClient, sigFile string) *Bot {
	bot := &Bot{
		client:   client,
		loginMgr: NewLoginManager(client, WithQRCodeSavePath(filepath.Join(filepath.Dir(sigFile), "qrcode.png"))),
		authMgr:  NewAuthManager(client, sigFile),
	}

	// 断线后重新走一遍登录策略
	bot.connectionMgr = NewConnectionManager(client, bot.loginMgr.Login)
	bot.connectionMgr.RegisterEventHandler(&DefaultConnectionEventHandler{})

	return bot
}

// Client 获取内部客户端
func (b *Bot) Client() *client.QQClient {
	return b.client
}

// Login 加载签名后登录，成功后立即保存签名
func (b *Bot) Login() error {
	b.authMgr.LoadSig()
	if err := b.loginMgr.Login(); err != nil {
		return err
	}
	b.authMgr.Dumpsig()
	return nil
}

// Listen 开始监听连接状态
func (b *Bot) Listen() {
	b.connectionMgr.StartMonitoring()
}

// Stop 停止监听、保存签名并释放客户端
func (b *Bot) Stop() error {
	b.connectionMgr.StopMonitoring()
	b.authMgr.Dumpsig()
	b.client.Release()
	return nil
}
