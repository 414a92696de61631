package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"delta-ai/internal/config"
	"delta-ai/internal/execution"
	"delta-ai/internal/portfolio"
	"delta-ai/internal/strategy"
)

// Agent 一轮完整流水线：采集→生成策略→执行。
type Agent interface {
	RunOnce(ctx context.Context) (*strategy.Strategy, *execution.Report, error)
	ExecuteStrategy(ctx context.Context, s *strategy.Strategy) (*execution.Report, error)
}

// PortfolioSource 持仓聚合能力。
type PortfolioSource interface {
	Collect(ctx context.Context) (*portfolio.Summary, error)
}

// Server 对外暴露执行与查询接口。
type Server struct {
	cfg       config.ServerConfig
	agent     Agent
	portfolio PortfolioSource
	logger    *zap.Logger
	http      *http.Server
}

// New 创建 HTTP 服务。
func New(cfg config.ServerConfig, agent Agent, pf PortfolioSource, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:       cfg,
		agent:     agent,
		portfolio: pf,
		logger:    logger,
	}
	s.http = &http.Server{
		Addr:    cfg.Listen,
		Handler: s.Router(),
	}
	return s
}

// Router 组装路由。
func (s *Server) Router() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.handleHealth)

	api := r.Group("/api/v1")
	api.POST("/execute", s.handleExecute)
	api.GET("/portfolio", s.handlePortfolio)

	return r
}

// Run 启动监听并阻塞，直到 ctx 取消后优雅退出。
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP 服务启动", zap.String("listen", s.cfg.Listen))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("HTTP 服务已退出")
	return <-errCh
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
}

// handleExecute 请求体为空时走完整流水线（AI 生成策略）；
// 带请求体时视为内联策略，跳过 AI 直接执行。
func (s *Server) handleExecute(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "读取请求体失败"})
		return
	}

	var (
		executed *strategy.Strategy
		report   *execution.Report
	)
	if len(body) == 0 {
		executed, report, err = s.agent.RunOnce(c.Request.Context())
	} else {
		executed, err = strategy.Parse(body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		report, err = s.agent.ExecuteStrategy(c.Request.Context(), executed)
	}
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, strategy.ErrNoStrategy) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"strategy": executed,
		"report":   report,
	})
}

func (s *Server) handlePortfolio(c *gin.Context) {
	summary, err := s.portfolio.Collect(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}
