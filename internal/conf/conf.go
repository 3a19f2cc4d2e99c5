package conf

import (
	"fmt"
	"log/slog"

	"github.com/daodao97/xgo/xapp"
	"github.com/daodao97/xgo/xdb"

	"github.com/daodao97/xgo/xlog"
)

type LLMConfig struct {
	Name      string `yaml:"name"`
	Provider  string `yaml:"provider"`
	ApiKey    string `yaml:"api_key"`
	ApiUrl    string `yaml:"api_url"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

type SearchConfig struct {
	Name     string `yaml:"name"`
	Provider string `yaml:"provider"`
	ApiKey   string `yaml:"api_key"`
}

type config struct {
	Database []xdb.Config    `yaml:"database" envPrefix:"DATABASE"`
	LLM      []*LLMConfig    `yaml:"llm"`
	Search   []*SearchConfig `yaml:"search"`
}

func (c *config) GetLLM(name string) *LLMConfig {
	for _, llm := range c.LLM {
		if llm.Name == name {
			return llm
		}
	}
	return nil
}

func (c *config) GetSearch(name string) *SearchConfig {
	for _, search := range c.Search {
		if search.Name == name {
			return search
		}
	}
	return nil
}

func (c *config) Print() {
	xlog.Debug("load config", slog.Any("config", fmt.Sprintf("%+v", c)))
}

var _c *config

func Get() *config {
	return _c
}

func InitConf() error {
	_c = &config{}

	if err := xapp.InitConf(_c); err != nil {
		return err
	}

	_c.Print()

	return nil
}
