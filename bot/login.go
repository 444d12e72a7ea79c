package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LagrangeDev/LagrangeGo/client"
	"github.com/vintcessun/AutoAt-Bot/utils"
)

var (
	ErrAllStrategiesFailed = errors.New("所有登录策略都失败了")
	ErrNoSig               = errors.New("没有可用的签名信息")
)

// LoginStrategy 登录策略接口
type LoginStrategy interface {
	Login(ctx context.Context, client *client.QQClient) error
	GetStrategyName() string
}

// LoginContext 重试次数、间隔和整体超时
type LoginContext struct {
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
}

// DefaultLoginContext 默认登录上下文
func DefaultLoginContext() *LoginContext {
	return &LoginContext{
		MaxRetries: 3,
		RetryDelay: 3 * time.Second,
		Timeout:    5 * time.Minute,
	}
}

// LoginOption 登录管理器选项
type LoginOption func(*LoginManager)

// WithLoginContext 替换默认的重试和超时设置
func WithLoginContext(lc *LoginContext) LoginOption {
	return func(lm *LoginManager) {
		if lc != nil {
			lm.context = lc
		}
	}
}

// WithStrategies 替换默认的登录策略
func WithStrategies(strategies ...LoginStrategy) LoginOption {
	return func(lm *LoginManager) {
		lm.strategies = strategies
	}
}

// WithQRCodeSavePath 扫码登录时把二维码图片保存到 path
func WithQRCodeSavePath(path string) LoginOption {
	return func(lm *LoginManager) {
		lm.qrConfig.SavePath = path
	}
}

// LoginManager 依次尝试各个登录策略
type LoginManager struct {
	client     *client.QQClient
	strategies []LoginStrategy
	context    *LoginContext
	qrConfig   *QRCodeConfig
	logger     utils.Logger
}

// NewLoginManager 创建登录管理器，默认先快速登录再扫码
func NewLoginManager(client *client.QQClient, opts ...LoginOption) *LoginManager {
	lm := &LoginManager{
		client:   client,
		context:  DefaultLoginContext(),
		qrConfig: DefaultQRCodeConfig(),
		logger:   utils.WithField("module", "login"),
	}
	lm.strategies = []LoginStrategy{
		&FastLoginStrategy{},
		&QRCodeLoginStrategy{qrProcessor: NewQRCodeProcessor(lm.qrConfig), logger: lm.logger},
	}
	for _, opt := range opts {
		opt(lm)
	}
	return lm
}

// RegisterStrategy 追加登录策略
func (lm *LoginManager) RegisterStrategy(strategy LoginStrategy) {
	lm.strategies = append(lm.strategies, strategy)
}

// Login 执行登录
func (lm *LoginManager) Login() error {
	ctx, cancel := context.WithTimeout(context.Background(), lm.context.Timeout)
	defer cancel()
	return lm.LoginContext(ctx)
}

// LoginContext 在 ctx 内依次尝试各策略，全部失败时返回合并后的错误
func (lm *LoginManager) LoginContext(ctx context.Context) error {
	var errs []error
	for _, strategy := range lm.strategies {
		name := strategy.GetStrategyName()
		lm.logger.Infof("尝试使用 %s 登录", name)

		err := lm.tryLoginWithRetry(ctx, strategy)
		if err == nil {
			lm.logger.Infof("使用 %s 登录成功", name)
			return nil
		}

		lm.logger.Warnf("使用 %s 登录失败: %v", name, err)
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
		if ctx.Err() != nil {
			break
		}
	}

	return fmt.Errorf("%w: %w", ErrAllStrategiesFailed, errors.Join(errs...))
}

func (lm *LoginManager) tryLoginWithRetry(ctx context.Context, strategy LoginStrategy) error {
	var lastErr error

	for i := 0; i < lm.context.MaxRetries; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := strategy.Login(ctx, lm.client)
		if err == nil {
			return nil
		}
		// 没有签名时重试也没用
		if errors.Is(err, ErrNoSig) {
			return err
		}

		lastErr = err
		if i < lm.context.MaxRetries-1 {
			lm.logger.Warnf("第 %d 次尝试失败: %v，%v 后重试", i+1, err, lm.context.RetryDelay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(lm.context.RetryDelay):
			}
		}
	}

	return lastErr
}

// FastLoginStrategy 使用保存的签名登录
type FastLoginStrategy struct{}

func (s *FastLoginStrategy) GetStrategyName() string {
	return "快速登录"
}

func (s *FastLoginStrategy) Login(_ context.Context, client *client.QQClient) error {
	if client.Sig() == nil {
		return ErrNoSig
	}
	return client.FastLogin()
}

// QRCodeLoginStrategy 二维码登录策略
type QRCodeLoginStrategy struct {
	qrProcessor *QRCodeProcessor
	logger      utils.Logger
}

func (s *QRCodeLoginStrategy) GetStrategyName() string {
	return "二维码登录"
}

func (s *QRCodeLoginStrategy) Login(ctx context.Context, client *client.QQClient) error {
	png, _, err := client.FetchQRCodeDefault()
	if err != nil {
		return err
	}

	if err := s.qrProcessor.DisplayQRCode(png); err != nil {
		s.logger.Warnf("二维码显示失败: %v", err)
	}

	return s.pollLoginStatus(ctx, client)
}

func (s *QRCodeLoginStrategy) pollLoginStatus(ctx context.Context, client *client.QQClient) error {
	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			retCode, err := client.GetQRCodeResult()
			if err != nil {
				return err
			}
			if retCode.Waitable() {
				continue
			}
			if !retCode.Success() {
				return errors.New(retCode.Name())
			}
			_, err = client.QRCodeLogin()
			return err
		}
	}
}
