package config

type AI struct {
	Key         string  `env:"OPENAI_API_KEY"`
	Model       string  `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	Temperature float32 `env:"OPENAI_TEMPERATURE" envDefault:"0.7"`
	MaxTokens   int     `env:"OPENAI_MAX_TOKENS" envDefault:"300"`
}
