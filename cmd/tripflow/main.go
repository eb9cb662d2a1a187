// Command tripflow serves the travel planning pipeline over HTTP.
package main

import (
	"flag"
	"fmt"
	"os"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/hupe1980/tripflow/config"
	"github.com/hupe1980/tripflow/core"
	"github.com/hupe1980/tripflow/logging"
	"github.com/hupe1980/tripflow/model"
	"github.com/hupe1980/tripflow/model/anthropic"
	modelopenai "github.com/hupe1980/tripflow/model/openai"
	"github.com/hupe1980/tripflow/runstore/sqlite"
	"github.com/hupe1980/tripflow/server"
	"github.com/hupe1980/tripflow/tool"
	"github.com/hupe1980/tripflow/travel"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	logger := logging.NewLogger(&logging.Config{
		Level:  parseLevel(cfg.Logging.Level),
		Format: cfg.Logging.Format,
	})

	llm, err := buildModel(cfg.Model)
	if err != nil {
		return err
	}

	var store core.RunStore
	if cfg.Store.Driver == "sqlite" {
		s, err := sqlite.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer s.Close()
		store = s
	}

	planner := travel.NewPlanner(llm, func(o *travel.Options) {
		o.RunStore = store
		o.Logger = logger
		if cfg.Engine.MaxParallelSteps > 0 {
			o.MaxParallelSteps = cfg.Engine.MaxParallelSteps
		}
		if cfg.Engine.RunTimeout > 0 {
			o.RunTimeout = cfg.Engine.RunTimeout.Std()
		}
		o.SearchTool = tool.NewWebSearchTool(func(to *tool.WebSearchOptions) {
			applyEndpoint(&to.APIKey, &to.BaseURL, cfg.Tools.Search)
		})
		o.CurrencyTool = tool.NewCurrencyTool(func(to *tool.CurrencyOptions) {
			applyEndpoint(&to.APIKey, &to.BaseURL, cfg.Tools.Currency)
		})
		o.ForexTool = tool.NewForexTool(func(to *tool.ForexOptions) {
			if cfg.Tools.Forex.BaseURL != "" {
				to.BaseURL = cfg.Tools.Forex.BaseURL
			}
		})
	})

	srv := server.New(planner, func(o *server.Options) {
		o.Logger = logger
	})

	return srv.ListenAndServe(cfg.Server.Addr)
}

func buildModel(cfg config.ModelConfig) (model.Model, error) {
	switch cfg.Provider {
	case "openai":
		var clientOpts []option.RequestOption
		if cfg.APIKey != "" {
			clientOpts = append(clientOpts, option.WithAPIKey(cfg.APIKey))
		}
		client := openai.NewClient(clientOpts...)
		return modelopenai.NewModelFromClient(&client, func(o *modelopenai.Options) {
			if cfg.ID != "" {
				o.Model = cfg.ID
			}
		}), nil
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.ID != "" {
				o.Model = anthropicsdk.Model(cfg.ID)
			}
			o.APIKey = cfg.APIKey
		}), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}

func applyEndpoint(apiKey, baseURL *string, ep config.ToolEndpoint) {
	if ep.APIKey != "" {
		*apiKey = ep.APIKey
	}
	if ep.BaseURL != "" {
		*baseURL = ep.BaseURL
	}
}

func parseLevel(level string) logging.LogLevel {
	switch level {
	case "debug":
		return logging.LogLevelDebug
	case "warn":
		return logging.LogLevelWarn
	case "error":
		return logging.LogLevelError
	default:
		return logging.LogLevelInfo
	}
}
