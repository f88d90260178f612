package config

import "fmt"

// Mysql 生成记录库，Host 为空时不启用
type Mysql struct {
	Host         string `mapstructure:"host"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"dbName"`
	MaxIdleConns int    `mapstructure:"maxIdleConns"`
	MaxOpenConns int    `mapstructure:"maxOpenConns"`
}

func (m Mysql) Enabled() bool {
	return m.Host != ""
}

func (m Mysql) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
		m.Username, m.Password, m.Host, m.DBName)
}
