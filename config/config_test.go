package config

import (
	"os"
	"testing"
	"time"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("setenv %s failed: %v", key, err)
	}
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	_ = os.Unsetenv(key)
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		}
	})
}

func setGatewayEnv(t *testing.T) {
	t.Helper()
	setEnv(t, "MYSQL_DSN", "root:root@tcp(localhost:3306)/shop?parseTime=true")
	setEnv(t, "EPAY_ENABLED", "true")
	setEnv(t, "EPAY_API_TOKEN", "test-token")
	setEnv(t, "EPAY_API_URL", "https://epay.example")
	setEnv(t, "EPAY_WEBHOOK_SECRET", "test-secret")
	setEnv(t, "BRIDGE_RETURN_URL_BASE", "https://shop.example/order-received")
	setEnv(t, "BRIDGE_WEBHOOK_URL", "https://shop.example/webhooks/epay")
}

func TestLoadRequiresMySQLDSN(t *testing.T) {
	unsetEnv(t, "MYSQL_DSN")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing MYSQL_DSN")
	}
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	setGatewayEnv(t)
	setEnv(t, "APP_SERVICE_NAME", "epay-bridge-test")
	setEnv(t, "HTTP_PORT", "8181")
	setEnv(t, "MYSQL_MAX_OPEN_CONNS", "20")
	setEnv(t, "MYSQL_MAX_IDLE_CONNS", "8")
	setEnv(t, "MYSQL_CONN_MAX_LIFETIME_MINUTES", "40")
	setEnv(t, "EPAY_SIGNATURE_TOLERANCE_SECONDS", "120")
	setEnv(t, "EPAY_HTTP_TIMEOUT_SECONDS", "7")
	setEnv(t, "BRIDGE_PENDING_TIMEOUT_MINUTES", "45")
	setEnv(t, "BRIDGE_JOB_BATCH_SIZE", "99")
	setEnv(t, "BRIDGE_EXPIRE_PENDING_INTERVAL_MINUTES", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.App.ServiceName != "epay-bridge-test" {
		t.Fatalf("unexpected app service name: %s", cfg.App.ServiceName)
	}
	if cfg.HTTP.Port != "8181" {
		t.Fatalf("unexpected http port: %s", cfg.HTTP.Port)
	}
	if cfg.MySQL.MaxOpenConns != 20 || cfg.MySQL.MaxIdleConns != 8 {
		t.Fatalf("unexpected mysql pool config: %+v", cfg.MySQL)
	}
	if cfg.MySQL.ConnMaxLifetime != 40*time.Minute {
		t.Fatalf("unexpected mysql lifetime: %v", cfg.MySQL.ConnMaxLifetime)
	}
	if cfg.Gateway.SignatureToleranceSeconds != 120 {
		t.Fatalf("unexpected signature tolerance: %d", cfg.Gateway.SignatureToleranceSeconds)
	}
	if cfg.Gateway.HTTPTimeout != 7*time.Second {
		t.Fatalf("unexpected http timeout: %v", cfg.Gateway.HTTPTimeout)
	}
	if cfg.Bridge.PendingTimeout != 45*time.Minute {
		t.Fatalf("unexpected pending timeout: %v", cfg.Bridge.PendingTimeout)
	}
	if cfg.Bridge.JobBatchSize != 99 {
		t.Fatalf("unexpected job batch size: %d", cfg.Bridge.JobBatchSize)
	}
	if cfg.Jobs.ExpirePendingInterval != 3*time.Minute {
		t.Fatalf("unexpected expire pending interval: %v", cfg.Jobs.ExpirePendingInterval)
	}
}

func TestLoadDisabledGatewaySkipsValidation(t *testing.T) {
	setEnv(t, "MYSQL_DSN", "root:root@tcp(localhost:3306)/shop?parseTime=true")
	setEnv(t, "EPAY_ENABLED", "false")
	unsetEnv(t, "EPAY_API_TOKEN")
	unsetEnv(t, "EPAY_API_URL")
	unsetEnv(t, "EPAY_WEBHOOK_SECRET")
	unsetEnv(t, "BRIDGE_RETURN_URL_BASE")
	unsetEnv(t, "BRIDGE_WEBHOOK_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error for disabled gateway, got %v", err)
	}
	if cfg.Gateway.Enabled {
		t.Fatal("expected disabled gateway")
	}
}

func TestLoadRequiresTokenWhenEnabled(t *testing.T) {
	setGatewayEnv(t)
	unsetEnv(t, "EPAY_API_TOKEN")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing EPAY_API_TOKEN")
	}
}

func TestLoadRejectsRelativeGatewayURL(t *testing.T) {
	setGatewayEnv(t)
	setEnv(t, "EPAY_API_URL", "epay.example/api")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for relative EPAY_API_URL")
	}
}

func TestLoadRequiresWebhookSecretWhenEnabled(t *testing.T) {
	setGatewayEnv(t)
	unsetEnv(t, "EPAY_WEBHOOK_SECRET")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing EPAY_WEBHOOK_SECRET")
	}
}
