package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charging-platform/oicp-gateway/internal/config"
	"github.com/charging-platform/oicp-gateway/internal/domain/protocol"
)

// 配置调试工具
// 用于验证配置文件与 OICP_ 环境变量叠加后的最终配置
func main() {
	configPath := flag.String("config", os.Getenv("OICP_CONFIG"), "path to YAML configuration file")
	flag.Parse()

	fmt.Println("=== OICP Gateway Configuration Test ===")

	// 显示环境变量
	fmt.Println("\n--- Environment Variables ---")
	envVars := []string{
		"OICP_CONFIG",
		"OICP_APP_PROFILE",
		"OICP_SERVER_PORT",
		"OICP_OICP_VERSION",
		"OICP_OICP_PROVIDER_ID",
		"OICP_OICP_ENDPOINT",
		"OICP_REDIS_ADDR",
		"OICP_POSTGRES_URL",
		"OICP_KAFKA_BROKERS",
		"OICP_LOG_LEVEL",
	}

	for _, env := range envVars {
		value := os.Getenv(env)
		if value != "" {
			fmt.Printf("%s = %s\n", env, value)
		} else {
			fmt.Printf("%s = (not set)\n", env)
		}
	}

	// 加载配置
	fmt.Println("\n--- Loading Configuration ---")
	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// 显示最终配置
	fmt.Println("\n--- Final Configuration ---")
	fmt.Printf("App Name: %s\n", cfg.App.Name)
	fmt.Printf("App Version: %s\n", cfg.App.Version)
	fmt.Printf("App Profile: %s\n", cfg.App.Profile)
	fmt.Printf("Server Address: %s\n", cfg.GetServerAddr())
	fmt.Printf("OICP Version: %s (supported: %v)\n", cfg.OICP.Version, protocol.IsVersionSupported(cfg.OICP.Version))
	fmt.Printf("OICP Provider ID: %s\n", cfg.OICP.ProviderID)
	fmt.Printf("OICP Endpoint: %s\n", cfg.OICP.Endpoint)
	fmt.Printf("OICP Request Timeout: %s\n", cfg.OICP.RequestTimeout)
	fmt.Printf("OICP Parse Mode: %s\n", protocol.ResolveParseMode(cfg.OICP.Version, cfg.OICP.StrictParsing))
	fmt.Printf("Redis Address: %s\n", cfg.Redis.Addr)
	fmt.Printf("Postgres Max Conns: %d\n", cfg.Postgres.MaxConns)
	fmt.Printf("Kafka Brokers: %v\n", cfg.Kafka.Brokers)
	fmt.Printf("Kafka Topics: events=%s commands=%s\n", cfg.Kafka.EventsTopic, cfg.Kafka.CommandsTopic)
	fmt.Printf("Log Level: %s\n", cfg.Log.Level)
	fmt.Printf("Metrics Address: %s\n", cfg.GetMetricsAddr())
	fmt.Printf("Health Check Address: %s\n", cfg.GetHealthCheckAddr())

	// 环境检查
	fmt.Println("\n--- Environment Check ---")
	fmt.Printf("Is Development: %v\n", cfg.IsDevelopment())
	fmt.Printf("Is Test: %v\n", cfg.IsTest())
	fmt.Printf("Is Production: %v\n", cfg.IsProduction())

	fmt.Println("\n=== Configuration Test Complete ===")
}
