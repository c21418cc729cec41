package server

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/charging-platform/oicp-gateway/internal/config"
	"github.com/charging-platform/oicp-gateway/internal/logger"
)

// ServerConfig HTTP服务器配置
type ServerConfig struct {
	Host               string        `json:"host"`
	Port               int           `json:"port"`
	ReadTimeout        time.Duration `json:"read_timeout"`
	WriteTimeout       time.Duration `json:"write_timeout"`
	IdleTimeout        time.Duration `json:"idle_timeout"`
	MaxHeaderBytes     int           `json:"max_header_bytes"`
	KeepAlivePeriod    time.Duration `json:"keep_alive_period"`    // TCP Keep-Alive周期
	EnableTCPKeepAlive bool          `json:"enable_tcp_keepalive"` // 启用TCP Keep-Alive
}

// DefaultServerConfig 默认HTTP服务器配置
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Host:               "0.0.0.0",
		Port:               8080,
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       30 * time.Second,
		IdleTimeout:        120 * time.Second,
		MaxHeaderBytes:     1 << 20, // 1MB
		KeepAlivePeriod:    30 * time.Second,
		EnableTCPKeepAlive: true,
	}
}

// ConfigFrom 由应用配置生成服务器配置
func ConfigFrom(cfg config.ServerConfig) *ServerConfig {
	c := DefaultServerConfig()
	if cfg.Host != "" {
		c.Host = cfg.Host
	}
	c.Port = cfg.Port
	if cfg.ReadTimeout > 0 {
		c.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		c.WriteTimeout = cfg.WriteTimeout
	}
	return c
}

// Addr 监听地址
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// HTTPServer 承载SOAP端点的HTTP服务器
type HTTPServer struct {
	config   *ServerConfig
	server   *http.Server
	listener net.Listener
	logger   *logger.Logger
}

// NewHTTPServer 创建HTTP服务器
func NewHTTPServer(config *ServerConfig, handler http.Handler, log *logger.Logger) *HTTPServer {
	if config == nil {
		config = DefaultServerConfig()
	}
	if log == nil {
		log = logger.Nop()
	}
	server := &http.Server{
		Addr:           config.Addr(),
		Handler:        handler,
		ReadTimeout:    config.ReadTimeout,
		WriteTimeout:   config.WriteTimeout,
		IdleTimeout:    config.IdleTimeout,
		MaxHeaderBytes: config.MaxHeaderBytes,
	}

	return &HTTPServer{
		config: config,
		server: server,
		logger: log,
	}
}

// Listen 创建监听器，Start 之前调用可提前得知实际端口
func (s *HTTPServer) Listen(ctx context.Context) error {
	if s.listener != nil {
		return nil
	}
	lc := net.ListenConfig{}
	if s.config.EnableTCPKeepAlive {
		lc.KeepAlive = s.config.KeepAlivePeriod
	} else {
		lc.KeepAlive = -1
	}

	listener, err := lc.Listen(ctx, "tcp", s.config.Addr())
	if err != nil {
		return err
	}
	s.listener = listener
	return nil
}

// Start 启动服务器，阻塞直到服务器关闭
func (s *HTTPServer) Start() error {
	if err := s.Listen(context.Background()); err != nil {
		return err
	}
	s.logger.Infof("HTTP server listening on %s", s.listener.Addr().String())

	err := s.server.Serve(s.listener)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop 停止服务器
func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server...")

	// 优雅关闭服务器
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Errorf("Error during server shutdown: %v", err)
		// 强制关闭
		return s.server.Close()
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// GetAddr 获取服务器地址
func (s *HTTPServer) GetAddr() net.Addr {
	if s.listener != nil {
		return s.listener.Addr()
	}
	return nil
}

// HealthCheck 健康检查
func (s *HTTPServer) HealthCheck() error {
	if s.listener == nil {
		return net.ErrClosed
	}
	return nil
}
