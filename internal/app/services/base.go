package services

import (
	"fmt"

	"valsia/pkg/config"
)

// NewGenerator 按 upstream.provider 选择上游实现
func NewGenerator(conf *config.Config) (Generator, error) {
	switch conf.Upstream.Provider {
	case config.ProviderDify:
		return NewDifyClient(conf.Dify), nil
	case config.ProviderOpenai:
		return NewOpenaiClient(conf.Openai, conf.Dify), nil
	}
	return nil, fmt.Errorf("unknown upstream provider %q", conf.Upstream.Provider)
}
