package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charging-platform/oicp-gateway/internal/business/evse"
	"github.com/charging-platform/oicp-gateway/internal/client"
	"github.com/charging-platform/oicp-gateway/internal/config"
	"github.com/charging-platform/oicp-gateway/internal/domain/events"
	"github.com/charging-platform/oicp-gateway/internal/domain/protocol"
	"github.com/charging-platform/oicp-gateway/internal/gateway"
	"github.com/charging-platform/oicp-gateway/internal/logger"
	"github.com/charging-platform/oicp-gateway/internal/message"
	"github.com/charging-platform/oicp-gateway/internal/metrics"
	"github.com/charging-platform/oicp-gateway/internal/repo"
	"github.com/charging-platform/oicp-gateway/internal/storage"
	"github.com/charging-platform/oicp-gateway/internal/transport/server"
)

func main() {
	configPath := flag.String("config", os.Getenv("OICP_CONFIG"), "path to YAML configuration file")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
		Async:  cfg.Log.Async,
		Caller: cfg.Log.Caller,
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()
	log.Infof("Logger initialized, OICP version %s", protocol.NormalizeVersion(cfg.OICP.Version))

	if !protocol.IsVersionSupported(cfg.OICP.Version) {
		log.Fatalf("Unsupported OICP version %s, supported: %v", cfg.OICP.Version, protocol.GetSupportedVersions())
	}
	mode := protocol.ResolveParseMode(cfg.OICP.Version, cfg.OICP.StrictParsing)

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startCancel()

	// 3. 初始化事件总线
	hub := events.NewHub()
	factory := events.NewEventFactory(cfg.App.Name, protocol.NormalizeVersion(cfg.OICP.Version))
	converter := gateway.NewEventConverter(factory)

	// 4. 初始化 EVSE 缓存
	cache, err := storage.NewRedisStorage(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	cache.Mode = mode
	log.Info("Redis EVSE cache initialized")

	// 5. 初始化 CDR 存储
	pool, err := repo.Connect(startCtx, cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	cdrs := repo.NewCDRRepository(pool, mode)
	if err := cdrs.Migrate(startCtx); err != nil {
		log.Fatalf("Failed to migrate CDR schema: %v", err)
	}
	log.Info("CDR repository initialized")

	// 6. 初始化 Kafka 生产者，事件总线上的事件全部转发到 Kafka
	producer, err := message.NewKafkaProducer(cfg.Kafka, log)
	if err != nil {
		log.Fatalf("Failed to initialize Kafka producer: %v", err)
	}
	detach := producer.Attach(hub)
	log.Infof("Kafka producer initialized, events topic %s", cfg.Kafka.EventsTopic)

	// 7. 初始化 Kafka 消费者
	consumer, err := message.NewKafkaConsumer(cfg.Kafka, log)
	if err != nil {
		log.Fatalf("Failed to initialize Kafka consumer: %v", err)
	}
	log.Infof("Kafka consumer initialized with brokers: %v, group: %s", cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup)

	// 8. 初始化 EMP 客户端
	empClient := client.NewEMPClient(client.ConfigFrom(cfg.OICP), nil, hub, converter, log)
	log.Infof("EMP client initialized for %s", cfg.OICP.Endpoint)

	// 9. 初始化入站消息分发器
	dispatcherConfig := gateway.DefaultDispatcherConfig()
	dispatcherConfig.Mode = mode
	dispatcher := gateway.NewDispatcher(dispatcherConfig, converter, hub, log)
	dispatcher.OnSendChargeDetailRecord(gateway.NewCDRHandler(cdrs, converter, hub))
	log.Info("Dispatcher initialized and handlers registered")

	// 10. 初始化 EVSE 同步任务
	syncConfig, err := evse.SyncConfigFrom(cfg.OICP)
	if err != nil {
		log.Fatalf("Invalid EVSE sync configuration: %v", err)
	}
	syncer := evse.NewSyncer(empClient, cache, syncConfig, log)

	// 11. 启动服务
	metrics.RegisterMetrics()
	go startMetricsServer(cfg.GetMetricsAddr(), log)

	httpServer := server.NewHTTPServer(
		server.ConfigFrom(cfg.Server),
		server.NewHandler(dispatcher, cfg.Server.MaxMessageSize, log).Routes(),
		log,
	)
	if err := httpServer.Listen(startCtx); err != nil {
		log.Fatalf("Failed to listen on %s: %v", cfg.GetServerAddr(), err)
	}
	go func() {
		if err := httpServer.Start(); err != nil {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	executor := message.NewCommandExecutor(empClient, hub, factory, log)
	go func() {
		if err := consumer.Start(executor.Handle); err != nil {
			log.Errorf("Kafka consumer failed: %v", err)
		}
	}()
	log.Infof("Kafka consumer starting on topic %s", cfg.Kafka.CommandsTopic)

	if err := syncer.Start(); err != nil {
		log.Fatalf("Failed to start EVSE syncer: %v", err)
	}
	log.Info("OICP Gateway started successfully")

	// 12. 监听并处理优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 1. 停止接收入站请求
	if err := httpServer.Stop(ctx); err != nil {
		log.Errorf("Error shutting down HTTP server: %v", err)
	}

	// 2. 停止 EVSE 同步
	if err := syncer.Stop(); err != nil {
		log.Errorf("Error stopping EVSE syncer: %v", err)
	}

	// 3. 关闭 Kafka 消费者
	if err := consumer.Close(); err != nil {
		log.Errorf("Error closing Kafka consumer: %v", err)
	}
	log.Info("Kafka consumer closed")

	// 4. 关闭 Kafka 生产者
	detach()
	if err := producer.Close(); err != nil {
		log.Errorf("Error closing Kafka producer: %v", err)
	}
	log.Info("Kafka producer closed")

	// 5. 关闭存储
	pool.Close()
	if err := cache.Close(); err != nil {
		log.Errorf("Error closing storage: %v", err)
	}
	log.Info("Storage closed")

	log.Info("Server gracefully stopped.")
}

// startMetricsServer 启动监控服务器
func startMetricsServer(addr string, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	log.Infof("Metrics server listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Metrics server failed: %v", err)
	}
}
