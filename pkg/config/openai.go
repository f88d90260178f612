package config

// Openai OpenAI 兼容接口（例如 DashScope compatible-mode），provider 为 openai 时使用
type Openai struct {
	ApiKey  string            `mapstructure:"apikey"`
	BaseURL string            `mapstructure:"baseURL"`
	Model   string            `mapstructure:"model"`
	Prompts map[string]string `mapstructure:"prompts"` // 按应用区分的 system prompt
}

// Prompt 返回应用对应的 system prompt
func (o Openai) Prompt(app string) string {
	if p, ok := o.Prompts[app]; ok && p != "" {
		return p
	}
	return "You are a helpful assistant."
}
