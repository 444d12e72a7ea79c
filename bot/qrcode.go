package bot

import (
	"bytes"
	"io"
	"os"

	"github.com/mdp/qrterminal/v3"
	"github.com/tuotoo/qrcode"
	"github.com/vintcessun/AutoAt-Bot/utils"
	"rsc.io/qr"
)

// QRCodeProcessor 在终端显示登录二维码
type QRCodeProcessor struct {
	config *QRCodeConfig
}

// QRCodeConfig 二维码配置
type QRCodeConfig struct {
	Level     qr.Level
	Writer    io.Writer
	BlackChar string
	WhiteChar string
	QuietZone int
	// SavePath 非空时同时保存原始图片，便于无终端时扫码
	SavePath string
}

// DefaultQRCodeConfig 默认二维码配置
func DefaultQRCodeConfig() *QRCodeConfig {
	return &QRCodeConfig{
		Level:     qr.M,
		Writer:    os.Stdout,
		BlackChar: qrterminal.WHITE,
		WhiteChar: qrterminal.BLACK,
		QuietZone: 1,
		SavePath:  "qrcode.png",
	}
}

// NewQRCodeProcessor 创建新的二维码处理器
func NewQRCodeProcessor(config *QRCodeConfig) *QRCodeProcessor {
	if config == nil {
		config = DefaultQRCodeConfig()
	}
	return &QRCodeProcessor{config: config}
}

// Content 解码二维码图片内容
func (qp *QRCodeProcessor) Content(pngData []byte) (string, error) {
	qrMatrix, err := qrcode.Decode(bytes.NewReader(pngData))
	if err != nil {
		return "", err
	}
	return qrMatrix.Content, nil
}

// DisplayQRCode 显示二维码
func (qp *QRCodeProcessor) DisplayQRCode(pngData []byte) error {
	if qp.config.SavePath != "" {
		if err := os.WriteFile(qp.config.SavePath, pngData, 0644); err != nil {
			utils.Warnf("保存二维码图片失败: %v", err)
		} else {
			utils.Infof("二维码已保存到 %s", qp.config.SavePath)
		}
	}

	content, err := qp.Content(pngData)
	if err != nil {
		return err
	}

	utils.Info("请使用手机扫码登录：")
	qrterminal.GenerateWithConfig(content, qrterminal.Config{
		Level:     qp.config.Level,
		Writer:    qp.config.Writer,
		BlackChar: qp.config.BlackChar,
		WhiteChar: qp.config.WhiteChar,
		QuietZone: qp.config.QuietZone,
	})
	return nil
}
