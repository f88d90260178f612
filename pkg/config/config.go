package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 应用名称，同时用作各类 key / prompt / 指标标签
const (
	AppChat    = "chat"
	AppRoadmap = "roadmap"
	AppProject = "project"
	AppSkill   = "skill"
)

const (
	ProviderDify   = "dify"
	ProviderOpenai = "openai"
)

type Config struct {
	Server   Server            `mapstructure:"server"`
	Upstream Upstream          `mapstructure:"upstream"`
	Dify     Dify              `mapstructure:"dify"`
	Openai   Openai            `mapstructure:"openai"`
	Mysql    Mysql             `mapstructure:"mysql"`
	Redis    Redis             `mapstructure:"redis"`
	Queries  map[string]string `mapstructure:"queries"`
}

type Server struct {
	Addr        string        `mapstructure:"addr"`
	RunMode     string        `mapstructure:"runMode"`
	LogLevel    string        `mapstructure:"logLevel"`
	RateLimit   int           `mapstructure:"rateLimit"` // 每个客户端在 RateWindow 内的生成请求数，<= 0 关闭
	RateWindow  time.Duration `mapstructure:"rateWindow"`
	InflightTTL time.Duration `mapstructure:"inflightTTL"` // 同一客户端生成锁的过期时间，<= 0 关闭
}

func (s Server) IsDev() bool {
	return strings.Contains(s.RunMode, "dev")
}

type Upstream struct {
	Provider string `mapstructure:"provider"`
}

// Dify 上游 /chat-messages 接口，每个应用使用独立的 key
type Dify struct {
	BaseURL          string        `mapstructure:"baseURL"`
	User             string        `mapstructure:"user"`
	Keys             DifyKeys      `mapstructure:"keys"`
	StreamTimeout    time.Duration `mapstructure:"streamTimeout"`
	MaxResponseBytes int64         `mapstructure:"maxResponseBytes"`
}

type DifyKeys struct {
	Chat    string `mapstructure:"chat"`
	Roadmap string `mapstructure:"roadmap"`
	Project string `mapstructure:"project"`
	Skill   string `mapstructure:"skill"`
}

// Key 返回应用对应的 bearer key
func (d Dify) Key(app string) string {
	switch app {
	case AppChat:
		return d.Keys.Chat
	case AppRoadmap:
		return d.Keys.Roadmap
	case AppProject:
		return d.Keys.Project
	case AppSkill:
		return d.Keys.Skill
	}
	return ""
}

// Query 返回查询模板
func (c *Config) Query(name string) string {
	if q, ok := c.Queries[name]; ok && q != "" {
		return q
	}
	return DefaultQueries[name]
}

// DefaultQueries 发送给上游的 query / 输入模板
var DefaultQueries = map[string]string{
	"roadmap":          "Create a learning roadmap for {{skill}} at {{level}} level",
	"project_guide":    "Help me build a project for {{skill}} at {{level}} level",
	"project_suggest":  "Suggest project ideas for {{skill}} at {{level}} level",
	"project_interest": "Build a {{level}} level project for {{skill}}",
}

// 沿用原有部署使用的环境变量名
var legacyEnv = map[string]string{
	"dify.baseURL":      "DIFY_API_BASE",
	"dify.keys.chat":    "DIFY_CHATBOT_KEY",
	"dify.keys.roadmap": "DIFY_ROADMAP_ARCHITECT_KEY",
	"dify.keys.project": "DIFY_PROJECT_MENTOR_KEY",
	"dify.keys.skill":   "DIFY_SKILL_VALIDATOR_KEY",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.runMode", "release")
	v.SetDefault("server.logLevel", "info")
	v.SetDefault("server.rateLimit", 30)
	v.SetDefault("server.rateWindow", time.Minute)
	v.SetDefault("server.inflightTTL", time.Duration(0))
	v.SetDefault("upstream.provider", ProviderDify)
	v.SetDefault("dify.baseURL", "https://api.dify.ai/v1")
	v.SetDefault("dify.user", "valsia-user")
	v.SetDefault("dify.keys.chat", "")
	v.SetDefault("dify.keys.roadmap", "")
	v.SetDefault("dify.keys.project", "")
	v.SetDefault("dify.keys.skill", "")
	v.SetDefault("dify.streamTimeout", 2*time.Minute)
	v.SetDefault("dify.maxResponseBytes", 4<<20)
	v.SetDefault("openai.apikey", "")
	v.SetDefault("openai.baseURL", "https://dashscope.aliyuncs.com/compatible-mode/v1")
	v.SetDefault("openai.model", "qwen-plus")
	v.SetDefault("mysql.host", "")
	v.SetDefault("mysql.maxIdleConns", 5)
	v.SetDefault("mysql.maxOpenConns", 20)
	v.SetDefault("redis.addr", "")
}

// Load 读取配置文件（可为空）、.env 以及环境变量，环境变量优先
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("VALSIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		prefixed := "VALSIA_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if conf.Upstream.Provider != ProviderDify && conf.Upstream.Provider != ProviderOpenai {
		return nil, fmt.Errorf("unknown upstream provider %q", conf.Upstream.Provider)
	}
	return &conf, nil
}
