package config

import "time"

type Injection struct {
	BaseURL string        `env:"INJECTION_API_URL" envDefault:"https://api-inference.huggingface.co/models/protectai/deberta-v3-base-prompt-injection-v2"`
	Key     string        `env:"INJECTION_API_KEY"`
	Timeout time.Duration `env:"INJECTION_TIMEOUT" envDefault:"15s"`
}
