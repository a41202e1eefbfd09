package types

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Backend: "", DataDir: "/tmp/data"},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Backend: "postgres", DataDir: "/tmp/data"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:    "valid sqlite config",
			config:  Config{Backend: "sqlite", DataDir: "/tmp/data"},
			wantErr: nil,
		},
		{
			name:    "sqlite with empty DataDir is valid at config level",
			config:  Config{Backend: "sqlite", DataDir: ""},
			wantErr: nil,
		},
		{
			name:    "memory needs nothing else",
			config:  Config{Backend: "memory"},
			wantErr: nil,
		},
		{
			name:    "redis without address returns ErrRedisAddrEmpty",
			config:  Config{Backend: "redis"},
			wantErr: ErrRedisAddrEmpty,
		},
		{
			name:    "redis with address is valid",
			config:  Config{Backend: "redis", Redis: RedisConfig{Addr: "localhost:6379"}},
			wantErr: nil,
		},
		{
			name:    "negative id length returns ErrIDLengthInvalid",
			config:  Config{Backend: "memory", IDLength: -2},
			wantErr: ErrIDLengthInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigIDGen(t *testing.T) {
	gen := Config{Backend: "memory", IDLength: 12}.IDGen()
	if got := len(gen()); got != 12 {
		t.Errorf("len(id) = %d, want 12", got)
	}
	gen = Config{Backend: "memory"}.IDGen()
	if got := len(gen()); got != DefaultIDLength {
		t.Errorf("len(id) = %d, want %d", got, DefaultIDLength)
	}
}
