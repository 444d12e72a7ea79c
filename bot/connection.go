package bot

import (
	"sync"
	"time"

	"github.com/LagrangeDev/LagrangeGo/client"
	"github.com/vintcessun/AutoAt-Bot/utils"
)

// ConnectionState 连接状态
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
	Reconnecting
)

// ConnectionManager 连接管理器
type ConnectionManager struct {
	client        *client.QQClient
	reconnect     func() error
	state         ConnectionState
	stateMutex    sync.RWMutex
	eventHandlers []ConnectionEventHandler
	config        *ConnectionConfig
	stopChan      chan struct{}
	stopOnce      sync.Once
	wg            sync.WaitGroup
}

// ConnectionConfig 连接配置
type ConnectionConfig struct {
	AutoReconnect     bool
	ReconnectInterval time.Duration
	MaxReconnectTries int
}

// DefaultConnectionConfig 默认连接配置
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		AutoReconnect:     true,
		ReconnectInterval: 10 * time.Second,
		MaxReconnectTries: 5,
	}
}

// ConnectionEventHandler 连接事件处理器
type ConnectionEventHandler interface {
	OnConnected(client *client.QQClient)
	OnDisconnected(client *client.QQClient, reason string)
	OnReconnecting(client *client.QQClient, attempt int)
	OnReconnectFailed(client *client.QQClient, maxAttempts int)
}

// NewConnectionManager 创建连接管理器，reconnect 在断线后被调用
func NewConnectionManager(client *client.QQClient, reconnect func() error) *ConnectionManager {
	return &ConnectionManager{
		client:        client,
		reconnect:     reconnect,
		state:         Disconnected,
		eventHandlers: make([]ConnectionEventHandler, 0),
		config:        DefaultConnectionConfig(),
		stopChan:      make(chan struct{}),
	}
}

// RegisterEventHandler 注册连接事件处理器
func (cm *ConnectionManager) RegisterEventHandler(handler ConnectionEventHandler) {
	cm.eventHandlers = append(cm.eventHandlers, handler)
}

// GetState 获取连接状态
func (cm *ConnectionManager) GetState() ConnectionState {
	cm.stateMutex.RLock()
	defer cm.stateMutex.RUnlock()
	return cm.state
}

func (cm *ConnectionManager) setState(state ConnectionState) {
	cm.stateMutex.Lock()
	defer cm.stateMutex.Unlock()
	cm.state = state
}

// StartMonitoring 开始监控连接
func (cm *ConnectionManager) StartMonitoring() {
	cm.setState(Connected)

	cm.client.DisconnectedEvent.Subscribe(func(client *client.QQClient, event *client.DisconnectedEvent) {
		cm.handleDisconnection(event.Message)
	})

	cm.notifyConnected()
}

// StopMonitoring 停止监控
func (cm *ConnectionManager) StopMonitoring() {
	cm.stopOnce.Do(func() { close(cm.stopChan) })
	cm.wg.Wait()
	cm.setState(Disconnected)
}

func (cm *ConnectionManager) handleDisconnection(reason string) {
	cm.setState(Disconnected)
	cm.notifyDisconnected(reason)

	if cm.config.AutoReconnect {
		cm.wg.Add(1)
		go cm.startReconnect()
	}
}

func (cm *ConnectionManager) startReconnect() {
	defer cm.wg.Done()

	cm.setState(Reconnecting)

	for i := 1; i <= cm.config.MaxReconnectTries; i++ {
		select {
		case <-cm.stopChan:
			return
		case <-time.After(cm.config.ReconnectInterval):
		}

		cm.notifyReconnecting(i)
		utils.Infof("尝试重连 (%d/%d)", i, cm.config.MaxReconnectTries)

		if err := cm.reconnect(); err != nil {
			utils.Warnf("第 %d 次重连失败: %v", i, err)
			continue
		}

		cm.setState(Connected)
		cm.notifyConnected()
		return
	}

	cm.setState(Disconnected)
	cm.notifyReconnectFailed()
}

func (cm *ConnectionManager) notifyConnected() {
	for _, handler := range cm.eventHandlers {
		handler.OnConnected(cm.client)
	}
}

func (cm *ConnectionManager) notifyDisconnected(reason string) {
	for _, handler := range cm.eventHandlers {
		handler.OnDisconnected(cm.client, reason)
	}
}

func (cm *ConnectionManager) notifyReconnecting(attempt int) {
	for _, handler := range cm.eventHandlers {
		handler.OnReconnecting(cm.client, attempt)
	}
}

func (cm *ConnectionManager) notifyReconnectFailed() {
	for _, handler := range cm.eventHandlers {
		handler.OnReconnectFailed(cm.client, cm.config.MaxReconnectTries)
	}
}

// DefaultConnectionEventHandler 默认连接事件处理器
type DefaultConnectionEventHandler struct{}

func (h *DefaultConnectionEventHandler) OnConnected(client *client.QQClient) {
	utils.Info("连接已建立")
}

func (h *DefaultConnectionEventHandler) OnDisconnected(client *client.QQClient, reason string) {
	utils.Infof("连接已断开：%v", reason)
}

func (h *DefaultConnectionEventHandler) OnReconnecting(client *client.QQClient, attempt int) {
	utils.Infof("正在重连，第 %d 次尝试", attempt)
}

func (h *DefaultConnectionEventHandler) OnReconnectFailed(client *client.QQClient, maxAttempts int) {
	utils.Errorf("重连失败，已达到最大尝试次数 %d", maxAttempts)
}
