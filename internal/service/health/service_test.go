package health

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestHealth_AlwaysHealthy(t *testing.T) {
	// Arrange
	service := NewService("v1.0.0", zap.NewNop())

	// Act
	resp := service.Health(context.Background())

	// Assert
	if resp.Status != StatusHealthy {
		t.Errorf("expected healthy, got %s", resp.Status)
	}
	if resp.Version != "v1.0.0" {
		t.Errorf("unexpected version: %s", resp.Version)
	}
}

func TestReady_AllCredentialsConfigured(t *testing.T) {
	// Arrange
	service := NewService("v1.0.0", zap.NewNop())
	service.RegisterCredentialChecker("stt", "sk-something")
	service.RegisterCredentialChecker("llm", "gm-something")
	service.RegisterCredentialChecker("tts", "el-something")

	// Act
	resp := service.Ready(context.Background())

	// Assert
	if !resp.Ready {
		t.Error("expected ready")
	}
	if len(resp.Checks) != 3 {
		t.Errorf("expected 3 checks, got %d", len(resp.Checks))
	}
}

func TestReady_MissingCredential(t *testing.T) {
	// Arrange
	service := NewService("v1.0.0", zap.NewNop())
	service.RegisterCredentialChecker("stt", "sk-something")
	service.RegisterCredentialChecker("tts", "")

	// Act
	resp := service.Ready(context.Background())

	// Assert
	if resp.Ready {
		t.Error("expected not ready with a missing credential")
	}
	if resp.Checks["tts"].Status != StatusUnhealthy {
		t.Errorf("expected tts unhealthy, got %s", resp.Checks["tts"].Status)
	}
	if resp.Checks["stt"].Status != StatusHealthy {
		t.Errorf("expected stt healthy, got %s", resp.Checks["stt"].Status)
	}
}
