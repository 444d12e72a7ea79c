package config

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/vintcessun/AutoAt-Bot/utils"
)

// 自动回at的默认配置
const (
	DefaultMyQQ           = "123456789"
	DefaultReplyMessage   = "收到！"
	DefaultAdminWhitelist = "123456789"
	DefaultMonitorConfig  = "987654321:111111111"
)

type Config struct {
	Bot    BotConfig       `toml:"bot" envPrefix:"BOT_"`
	AutoAt AutoAtConfig    `toml:"autoat" envPrefix:"AUTOAT_"`
	Log    utils.LogConfig `toml:"log" envPrefix:"LOG_"`
}

// BotConfig 代表TOML文件中的bot部分
type BotConfig struct {
	Account    uint32 `toml:"account" env:"ACCOUNT" validate:"required"`
	Password   string `toml:"password" env:"PASSWORD"`
	SignServer string `toml:"signServer" env:"SIGN_SERVER" validate:"omitempty,url"`
	CachePath  string `toml:"cachePath" env:"CACHE_PATH" validate:"required"`
	SigFile    string `toml:"sigFile" env:"SIG_FILE" validate:"required"`
}

// AutoAtConfig 自动回at插件的原始配置，解析在 autoat 包中完成
type AutoAtConfig struct {
	MyQQ               QQ     `toml:"my_qq" env:"MY_QQ"`
	EnableReplyMessage bool   `toml:"enable_reply_message" env:"ENABLE_REPLY_MESSAGE"`
	ReplyMessage       string `toml:"reply_message" env:"REPLY_MESSAGE"`
	AdminWhitelist     Lenient `toml:"admin_whitelist" env:"ADMIN_WHITELIST"`
	MonitorConfig      Lenient `toml:"monitor_config" env:"MONITOR_CONFIG"`
}

// ErrUnsupportedType 配置值类型既不是字符串也不是整数
var ErrUnsupportedType = errors.New("配置值类型不支持")

// Lenient 交给插件自行解析的配置值。字符串原样保存，整数转为十进制字符串；
// 其他类型不算解码错误，只记录在 Invalid 中，由插件回退到默认值。
type Lenient struct {
	Value   string
	Invalid string
}

// LenientOf 包装一个字符串配置值
func LenientOf(value string) Lenient {
	return Lenient{Value: value}
}

func (l *Lenient) UnmarshalTOML(v interface{}) error {
	switch e := v.(type) {
	case string:
		*l = Lenient{Value: e}
	case int64:
		*l = Lenient{Value: strconv.FormatInt(e, 10)}
	default:
		*l = Lenient{Invalid: fmt.Sprintf("%T", v)}
	}
	return nil
}

func (l *Lenient) UnmarshalText(text []byte) error {
	*l = Lenient{Value: string(text)}
	return nil
}

// Get 返回配置值；类型不支持时返回 ErrUnsupportedType
func (l Lenient) Get() (string, error) {
	if l.Invalid != "" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, l.Invalid)
	}
	return l.Value, nil
}

func (l Lenient) String() string {
	return l.Value
}

// QQ 账号标识，按不透明字符串处理；TOML 中写成整数也接受
type QQ string

func (q *QQ) UnmarshalTOML(v interface{}) error {
	switch e := v.(type) {
	case string:
		*q = QQ(e)
	case int64:
		*q = QQ(strconv.FormatInt(e, 10))
	default:
		return fmt.Errorf("my_qq 类型不支持: %T", v)
	}
	return nil
}

func (q *QQ) UnmarshalText(text []byte) error {
	*q = QQ(text)
	return nil
}

func (q QQ) String() string {
	return string(q)
}

// DefaultAutoAtConfig 未配置任何键时的插件配置
func DefaultAutoAtConfig() AutoAtConfig {
	return AutoAtConfig{
		MyQQ:               DefaultMyQQ,
		EnableReplyMessage: false,
		ReplyMessage:       DefaultReplyMessage,
		AdminWhitelist:     LenientOf(DefaultAdminWhitelist),
		MonitorConfig:      LenientOf(DefaultMonitorConfig),
	}
}

// Default 默认全局配置
func Default() *Config {
	return &Config{
		Bot: BotConfig{
			CachePath: ".",
			SigFile:   "sig.bin",
		},
		AutoAt: DefaultAutoAtConfig(),
		Log:    *utils.DefaultLogConfig(),
	}
}

// GlobalConfig 默认全局配置
var GlobalConfig *Config

// Init 使用 ./application.toml 初始化全局配置
func Init() {
	cfg, err := Load("application.toml")
	if err != nil {
		logrus.WithField("config", "GlobalConfig").WithError(err).Panicf("unable to read global config")
	}
	GlobalConfig = cfg
}

// Load 读取配置文件并叠加环境变量
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return finish(cfg)
}

// Parse 从字节数组中读取配置内容
func Parse(content []byte) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(string(content), cfg); err != nil {
		return nil, err
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("环境变量解析失败: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("配置校验失败: %w", err)
	}
	return cfg, nil
}
