package utils

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	lio "github.com/LagrangeDev/LagrangeGo/utils/io"
	"github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"
)

// LogConfig 日志配置
type LogConfig struct {
	Level       string `toml:"level" env:"LEVEL" validate:"omitempty,oneof=trace debug info warn error"`
	EnableFile  bool   `toml:"enableFile" env:"ENABLE_FILE"`
	EnableColor bool   `toml:"enableColor" env:"ENABLE_COLOR"`
	LogDir      string `toml:"logDir" env:"DIR"`
	LogFile     string `toml:"logFile" env:"FILE"`
	Format      string `toml:"format" env:"FORMAT" validate:"omitempty,oneof=text json"`
}

// DefaultLogConfig 默认日志配置
func DefaultLogConfig() *LogConfig {
	return &LogConfig{
		Level:       "info",
		EnableFile:  true,
		EnableColor: true,
		LogDir:      "logs",
		LogFile:     "bot.log",
		Format:      "text",
	}
}

// Logger 统一日志接口
type Logger interface {
	Trace(args ...interface{})
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})

	Tracef(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Panicf(format string, args ...interface{})

	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
}

// BotLogger 机器人日志器，字段随 Entry 传递
type BotLogger struct {
	*logrus.Entry
}

// NewBotLogger 创建新的机器人日志器
func NewBotLogger(config *LogConfig) (*BotLogger, error) {
	if config == nil {
		config = DefaultLogConfig()
	}

	logger := logrus.New()

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	switch {
	case config.Format == "json":
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})
	case config.EnableColor:
		logger.SetFormatter(&ColoredFormatter{})
	default:
		logger.SetFormatter(&PlainFormatter{})
	}

	var outputs []io.Writer
	if config.EnableColor {
		outputs = append(outputs, colorable.NewColorableStdout())
	} else {
		outputs = append(outputs, os.Stdout)
	}

	if config.EnableFile {
		if err := os.MkdirAll(config.LogDir, 0755); err != nil {
			return nil, fmt.Errorf("创建日志目录失败: %w", err)
		}

		logFile := filepath.Join(config.LogDir, config.LogFile)
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("打开日志文件失败: %w", err)
		}
		outputs = append(outputs, file)
	}

	logger.SetOutput(io.MultiWriter(outputs...))

	return &BotLogger{Entry: logrus.NewEntry(logger)}, nil
}

// WrapLogrus 包装已有的 logrus 实例
func WrapLogrus(logger *logrus.Logger) Logger {
	return &BotLogger{Entry: logrus.NewEntry(logger)}
}

// WithField 添加字段
func (l *BotLogger) WithField(key string, value interface{}) Logger {
	return &BotLogger{Entry: l.Entry.WithField(key, value)}
}

// WithFields 添加多个字段
func (l *BotLogger) WithFields(fields map[string]interface{}) Logger {
	return &BotLogger{Entry: l.Entry.WithFields(fields)}
}

// ProtocolLogger 协议日志器
type ProtocolLogger struct {
	logger Logger
}

// NewProtocolLogger 创建协议日志器
func NewProtocolLogger(logger Logger) *ProtocolLogger {
	return &ProtocolLogger{logger: logger}
}

// Debugf implements log.Logger.
func (p *ProtocolLogger) Debugf(format string, args ...any) {
	p.logger.Debugf(format, args...)
}

// Errorf implements log.Logger.
func (p *ProtocolLogger) Errorf(format string, args ...any) {
	p.logger.Errorf(format, args...)
}

// Infof implements log.Logger.
func (p *ProtocolLogger) Infof(format string, args ...any) {
	p.logger.Infof(format, args...)
}

// Warningf implements log.Logger.
func (p *ProtocolLogger) Warningf(format string, args ...any) {
	p.logger.Warnf(format, args...)
}

const fromProtocol = "Lgr -> "

func (p *ProtocolLogger) Info(format string, arg ...any) {
	p.logger.Infof(fromProtocol+format, arg...)
}

func (p *ProtocolLogger) Warning(format string, arg ...any) {
	p.logger.Warnf(fromProtocol+format, arg...)
}

func (p *ProtocolLogger) Debug(format string, arg ...any) {
	p.logger.Debugf(fromProtocol+format, arg...)
}

func (p *ProtocolLogger) Error(format string, arg ...any) {
	p.logger.Errorf(fromProtocol+format, arg...)
}

func (p *ProtocolLogger) Dump(data []byte, format string, arg ...any) {
	message := fmt.Sprintf(format, arg...)
	dumpDir := "dump"

	if _, err := os.Stat(dumpDir); err != nil {
		err = os.MkdirAll(dumpDir, 0o755)
		if err != nil {
			p.logger.Errorf("出现错误 %v. 详细信息转储失败", message)
			return
		}
	}

	dumpFile := path.Join(dumpDir, fmt.Sprintf("%v.dump", time.Now().Unix()))
	p.logger.Errorf("出现错误 %v. 详细信息已转储至文件 %v", message, dumpFile)
	_ = os.WriteFile(dumpFile, data, 0o644)
}

const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
	colorGreen  = "\x1b[32m"
	colorBlue   = "\x1b[34m"
	colorWhite  = "\x1b[37m"
	colorCyan   = "\x1b[36m"
)

// ColoredFormatter 彩色格式化器
type ColoredFormatter struct{}

func (f *ColoredFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var levelColor string
	switch entry.Level {
	case logrus.TraceLevel:
		levelColor = colorCyan
	case logrus.DebugLevel:
		levelColor = colorBlue
	case logrus.InfoLevel:
		levelColor = colorGreen
	case logrus.WarnLevel:
		levelColor = colorYellow
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		levelColor = colorRed
	default:
		levelColor = colorWhite
	}

	return lio.S2B(fmt.Sprintf("[%s] [%s%s%s]%s: %s\n",
		entry.Time.Format("2006-01-02 15:04:05"), levelColor, strings.ToUpper(entry.Level.String()), colorReset,
		formatFields(entry.Data), entry.Message)), nil
}

// PlainFormatter 普通格式化器 (不带颜色)
type PlainFormatter struct{}

func (f *PlainFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	return lio.S2B(fmt.Sprintf("[%s] [%s]%s: %s\n",
		entry.Time.Format("2006-01-02 15:04:05"), strings.ToUpper(entry.Level.String()),
		formatFields(entry.Data), entry.Message)), nil
}

// formatFields 字段按键排序输出
func formatFields(data logrus.Fields) string {
	if len(data) == 0 {
		return ""
	}
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fields := make([]string, 0, len(keys))
	for _, key := range keys {
		fields = append(fields, fmt.Sprintf("%s=%v", key, data[key]))
	}
	return fmt.Sprintf(" [%s]", strings.Join(fields, " "))
}

var (
	globalLogger   Logger
	protocolLogger *ProtocolLogger
)

// InitWithConfig 使用配置初始化日志系统
func InitWithConfig(config *LogConfig) error {
	logger, err := NewBotLogger(config)
	if err != nil {
		return err
	}
	globalLogger = logger
	protocolLogger = NewProtocolLogger(globalLogger)
	return nil
}

// GetLogger 获取全局日志器，未初始化时只输出到控制台
func GetLogger() Logger {
	if globalLogger == nil {
		config := DefaultLogConfig()
		config.EnableFile = false
		_ = InitWithConfig(config)
	}
	return globalLogger
}

// GetProtocolLogger 获取协议日志器
func GetProtocolLogger() *ProtocolLogger {
	if protocolLogger == nil {
		GetLogger()
	}
	return protocolLogger
}

func Debug(args ...interface{}) {
	GetLogger().Debug(args...)
}

func Info(args ...interface{}) {
	GetLogger().Info(args...)
}

func Warn(args ...interface{}) {
	GetLogger().Warn(args...)
}

func Error(args ...interface{}) {
	GetLogger().Error(args...)
}

func Debugf(format string, args ...interface{}) {
	GetLogger().Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	GetLogger().Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	GetLogger().Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	GetLogger().Errorf(format, args...)
}

func WithField(key string, value interface{}) Logger {
	return GetLogger().WithField(key, value)
}
