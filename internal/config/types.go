package config

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
)

// Config 聚合了系统运行所需的全部配置项。
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	Binance BinanceConfig `mapstructure:"binance"`
	Eisen   EisenConfig   `mapstructure:"eisen"`
	Chain   ChainConfig   `mapstructure:"chain"`
	OpenAI  OpenAIConfig  `mapstructure:"openai"`
	Feed    FeedConfig    `mapstructure:"feed"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// AppConfig 控制应用级参数。
type AppConfig struct {
	Environment string `mapstructure:"environment"`
}

// ServerConfig 控制 HTTP 服务。
type ServerConfig struct {
	Listen          string        `mapstructure:"listen"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// BinanceConfig 描述 CEX 连接信息。密钥只在进程内存中使用，不落盘、不写日志。
type BinanceConfig struct {
	BaseURL           string `mapstructure:"base_url"`
	APIKey            string `mapstructure:"api_key"`
	APISecret         string `mapstructure:"api_secret"`
	RecvWindow        int64  `mapstructure:"recv_window"`
	QuantityPrecision int32  `mapstructure:"quantity_precision"`
	PricePrecision    int32  `mapstructure:"price_precision"`
}

// EisenConfig 描述 DEX 聚合器连接信息。
type EisenConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	SlippageBps uint16 `mapstructure:"slippage_bps"`
}

// ChainConfig 描述链上签名与广播参数。
type ChainConfig struct {
	RPCURL         string        `mapstructure:"rpc_url"`
	PrivateKey     string        `mapstructure:"private_key"`
	ConfirmTimeout time.Duration `mapstructure:"confirm_timeout"`
}

// OpenAIConfig 描述大模型调用参数。
type OpenAIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// FeedConfig 控制市场数据采集。
type FeedConfig struct {
	Symbols   []string      `mapstructure:"symbols"`
	Timeframe string        `mapstructure:"timeframe"`
	Candles   int64         `mapstructure:"candles"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// LoggingConfig 控制日志输出。
type LoggingConfig struct {
	Level            string   `mapstructure:"level"`
	Encoding         string   `mapstructure:"encoding"`
	Development      bool     `mapstructure:"development"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// Validate 对配置进行基本校验。
func (c *Config) Validate() error {
	var err error

	if c.App.Environment == "" {
		err = multierr.Append(err, errors.New("app.environment 不能为空"))
	}
	if c.Server.Listen == "" {
		err = multierr.Append(err, errors.New("server.listen 不能为空"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		err = multierr.Append(err, errors.New("server.shutdown_timeout 必须大于0"))
	}
	if c.Binance.BaseURL == "" {
		err = multierr.Append(err, errors.New("binance.base_url 不能为空"))
	}
	if c.Binance.RecvWindow <= 0 {
		err = multierr.Append(err, errors.New("binance.recv_window 必须大于0"))
	}
	if c.Binance.QuantityPrecision < 0 || c.Binance.QuantityPrecision > 8 {
		err = multierr.Append(err, errors.New("binance.quantity_precision 必须位于[0,8]"))
	}
	if c.Binance.PricePrecision < 0 || c.Binance.PricePrecision > 8 {
		err = multierr.Append(err, errors.New("binance.price_precision 必须位于[0,8]"))
	}
	if c.Eisen.BaseURL == "" {
		err = multierr.Append(err, errors.New("eisen.base_url 不能为空"))
	}
	if c.Eisen.SlippageBps == 0 || c.Eisen.SlippageBps > 3000 {
		err = multierr.Append(err, errors.New("eisen.slippage_bps 必须位于(0,3000]"))
	}
	if c.Chain.RPCURL == "" {
		err = multierr.Append(err, errors.New("chain.rpc_url 不能为空"))
	}
	if c.Chain.ConfirmTimeout <= 0 {
		err = multierr.Append(err, errors.New("chain.confirm_timeout 必须大于0"))
	}
	if c.OpenAI.APIKey == "" {
		err = multierr.Append(err, errors.New("openai.api_key 不能为空"))
	}
	if c.OpenAI.Model == "" {
		err = multierr.Append(err, errors.New("openai.model 不能为空"))
	}
	if c.OpenAI.Timeout <= 0 {
		err = multierr.Append(err, errors.New("openai.timeout 必须大于0"))
	}
	if len(c.Feed.Symbols) == 0 {
		err = multierr.Append(err, errors.New("feed.symbols 至少包含一个交易对"))
	}
	if c.Feed.Timeframe == "" {
		err = multierr.Append(err, errors.New("feed.timeframe 不能为空"))
	}
	if c.Feed.Candles < 30 {
		err = multierr.Append(err, errors.New("feed.candles 不能少于30根"))
	}
	if c.Logging.Level == "" {
		err = multierr.Append(err, errors.New("logging.level 不能为空"))
	}
	if c.Logging.Encoding == "" {
		err = multierr.Append(err, errors.New("logging.encoding 不能为空"))
	}
	if len(c.Logging.OutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.output_paths 至少包含一个输出目标"))
	}
	if len(c.Logging.ErrorOutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.error_output_paths 至少包含一个输出目标"))
	}

	if err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}
	return nil
}
