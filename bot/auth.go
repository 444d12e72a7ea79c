package bot

import (
	"os"
	"path/filepath"

	"github.com/LagrangeDev/LagrangeGo/client"
	"github.com/LagrangeDev/LagrangeGo/client/auth"
	"github.com/vintcessun/AutoAt-Bot/utils"
)

// AuthManager 负责签名文件的读写
type AuthManager struct {
	client  *client.QQClient
	sigFile string
	logger  utils.Logger
}

// NewAuthManager 创建新的认证管理器
func NewAuthManager(client *client.QQClient, sigFile string) *AuthManager {
	return &AuthManager{
		client:  client,
		sigFile: sigFile,
		logger:  utils.WithField("module", "auth"),
	}
}

// LoadSig 加载签名文件，文件不存在时跳过
func (am *AuthManager) LoadSig() {
	data, err := os.ReadFile(am.sigFile)
	if os.IsNotExist(err) {
		am.logger.Infof("签名文件 %s 不存在，跳过快速登录", am.sigFile)
		return
	}
	if err != nil {
		am.logger.Warnf("读取签名文件失败: %v", err)
		return
	}

	sig, err := auth.UnmarshalSigInfo(data, true)
	if err != nil {
		am.logger.Warnf("解析签名文件失败: %v", err)
		return
	}

	am.client.UseSig(sig)
	am.logger.Info("签名文件加载成功")
}

// Dumpsig 保存签名
func (am *AuthManager) Dumpsig() {
	if am.client.Sig() == nil {
		am.logger.Warn("没有可用的签名信息")
		return
	}

	data, err := am.client.Sig().Marshal()
	if err != nil {
		am.logger.Errorf("序列化签名失败: %v", err)
		return
	}

	if err := os.MkdirAll(filepath.Dir(am.sigFile), 0755); err != nil {
		am.logger.Errorf("创建签名目录失败: %v", err)
		return
	}

	if err := os.WriteFile(am.sigFile, data, 0600); err != nil {
		am.logger.Errorf("写入签名文件失败: %v", err)
		return
	}

	am.logger.Info("签名文件保存成功")
}
