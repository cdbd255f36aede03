//go:build integration

package testinfra

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// SkipIfNoDocker 沒有 Docker 時跳過整合測試
func SkipIfNoDocker(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if exec.CommandContext(ctx, "docker", "info").Run() != nil {
		t.Skip("Skipping test: Docker not available")
	}
}

// StartPostgres 啟動 postgres 容器，回傳連線字串
func StartPostgres(t *testing.T) string {
	t.Helper()
	SkipIfNoDocker(t)

	ctx := context.Background()
	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("mealmind"),
		postgres.WithUsername("mealmind"),
		postgres.WithPassword("mealmind"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres: %v", err)
	}
	t.Cleanup(func() { cleanup(t, ctr) })

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres dsn: %v", err)
	}
	return dsn
}

// StartRedis 啟動 redis 容器，回傳 host:port
func StartRedis(t *testing.T) string {
	t.Helper()
	SkipIfNoDocker(t)

	ctx := context.Background()
	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start redis: %v", err)
	}
	t.Cleanup(func() { cleanup(t, ctr) })

	addr, err := ctr.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("failed to get redis endpoint: %v", err)
	}
	return addr
}

func cleanup(t *testing.T, ctr testcontainers.Container) {
	if err := ctr.Terminate(context.Background()); err != nil {
		t.Logf("Warning: failed to terminate container: %v", err)
	}
}
