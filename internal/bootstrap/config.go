package bootstrap

import (
	"github.com/spf13/viper"
)

type Config struct {
	ServerPort  string `mapstructure:"SERVER_PORT"`
	RedisUrl    string `mapstructure:"REDIS_URL"`
	MongoUri    string `mapstructure:"MONGO_URI"`
	AnalyzerUrl string `mapstructure:"ANALYZER_URL"`
	EngineUrl   string `mapstructure:"ENGINE_URL"`
	EngineDepth int    `mapstructure:"ENGINE_DEPTH"`
	LlmApiKey   string `mapstructure:"LLM_API_KEY"`
	LlmAgentKey string `mapstructure:"LLM_AGENT_KEY"`
	IsLocalCors bool   `mapstructure:"LOCAL_CORS"`
}

func Setup(cfgPath string) (*Config, error) {
	viper.SetConfigFile(cfgPath)

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	var cfg Config

	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
