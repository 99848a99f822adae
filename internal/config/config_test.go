package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/soracom/connectivity-benchmark/internal/soracom"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(viper.New(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB2", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, time.Second, cfg.Serial.ReadTimeout)
	assert.Equal(t, "soracom.io", cfg.Benchmark.APN)
	assert.Equal(t, 600, cfg.Benchmark.MaxRegistrationTicks)
	assert.Equal(t, 10*time.Second, cfg.Benchmark.FactoryResetSettle)
	assert.Equal(t, "https://g.api.soracom.io/v1/", cfg.Soracom.APIRoot)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "mcc_mnc.json", cfg.Report.OperatorsFile)
	assert.Equal(t, *cfg, AppConfig)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
serial:
  port: auto
  exclude_ports: ["/dev/ttyS0"]
benchmark:
  access_technology: 3G
  poll_interval: 500ms
  max_online_polls: 30
soracom:
  api_root: http://localhost:8080/v1
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	t.Setenv("SORACOM_AUTH_KEY_ID", "keyId-env")
	t.Setenv("SORACOM_AUTH_KEY", "secret-env")
	t.Setenv("BENCHMARK_ACTIVATE", "true")

	cfg, err := LoadFrom(viper.New(), dir)
	require.NoError(t, err)

	assert.Equal(t, "auto", cfg.Serial.Port)
	assert.Equal(t, []string{"/dev/ttyS0"}, cfg.Serial.ExcludePorts)
	assert.Equal(t, "3G", cfg.Benchmark.AccessTechnology)
	assert.Equal(t, 500*time.Millisecond, cfg.Benchmark.PollInterval)
	assert.Equal(t, 30, cfg.Benchmark.MaxOnlinePolls)
	assert.True(t, cfg.Benchmark.Activate)
	assert.Equal(t, "http://localhost:8080/v1/", cfg.Soracom.APIRoot)
	assert.Equal(t, "keyId-env", cfg.Soracom.AuthKeyID)
}

func TestCredentials(t *testing.T) {
	tests := []struct {
		name string
		cfg  SoracomConfig
		want soracom.Credentials
		err  error
	}{
		{
			name: "auth key",
			cfg:  SoracomConfig{AuthKeyID: "keyId-1", AuthKey: "secret-1", UserName: "ignored", Password: "ignored"},
			want: soracom.AuthKey{ID: "keyId-1", Secret: "secret-1"},
		},
		{
			name: "SAM user",
			cfg:  SoracomConfig{OperatorID: "OP0012345678", UserName: "bench", Password: "pw"},
			want: soracom.UserPassword{OperatorID: "OP0012345678", UserName: "bench", Password: "pw"},
		},
		{
			name: "half a key pair falls back to user",
			cfg:  SoracomConfig{AuthKeyID: "keyId-1", UserName: "root@example.com", Password: "pw"},
			want: soracom.UserPassword{UserName: "root@example.com", Password: "pw"},
		},
		{
			name: "nothing set",
			err:  ErrNoCredentials,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.Credentials()
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
