package config

// Redis 限流与生成锁使用，Addr 为空时退化为进程内实现
type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r Redis) Enabled() bool {
	return r.Addr != ""
}
