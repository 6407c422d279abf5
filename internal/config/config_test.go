package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"voicepage/internal/domain/audio"
)

func TestLoadDefaults(t *testing.T) {
	secrets := t.TempDir()
	t.Setenv("SECRETS_DIR", secrets)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("CACHE_TTL", "90m")
	t.Setenv("DRIVE_UPLOAD_ENABLED", "yes")
	require.NoError(t, os.WriteFile(filepath.Join(secrets, "openai_api_key.txt"), []byte(" sk-file \n"), 0o600))

	cfg := Load()
	require.Equal(t, "sk-file", cfg.OpenAIAPIKey)
	require.Equal(t, filepath.Join(secrets, "token.json"), cfg.GmailTokenPath)
	require.Equal(t, filepath.Join(secrets, "credentials.json"), cfg.CredentialsPath)
	require.Equal(t, 0, cfg.RedisDB)
	require.Equal(t, 90*time.Minute, cfg.CacheTTL)
	require.True(t, cfg.DriveUploadEnabled)
}

func TestLoadEnvKeyWins(t *testing.T) {
	t.Setenv("SECRETS_DIR", t.TempDir())
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("GMAIL_TOKEN", "/tmp/tok.json")

	cfg := Load()
	require.Equal(t, "sk-env", cfg.OpenAIAPIKey)
	require.Equal(t, "/tmp/tok.json", cfg.GmailTokenPath)
}

func TestLoadTTSConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		return p
	}

	tests := []struct {
		name    string
		path    string
		want    TTSConfig
		wantErr bool
	}{
		{
			name: "missing file",
			path: filepath.Join(dir, "nope.yaml"),
			want: DefaultTTSConfig(),
		},
		{
			name: "partial override",
			path: write("partial.yaml", "voice: nova\nspeed: 1.25\nresponse_format: opus\n"),
			want: TTSConfig{
				Model:          "tts-1",
				Voice:          "nova",
				Speed:          1.25,
				ResponseFormat: "opus",
				MaxChars:       4096,
				Concurrency:    2,
			},
		},
		{
			name:    "speed out of range",
			path:    write("fast.yaml", "speed: 9\n"),
			wantErr: true,
		},
		{
			name:    "unknown format",
			path:    write("ogg.yaml", "response_format: ogg\n"),
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			path:    write("bad.yaml", "voice: [\n"),
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadTTSConfig(tt.path)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestTTSConfigFormat(t *testing.T) {
	t.Parallel()
	require.Equal(t, audio.FormatMP3, DefaultTTSConfig().Format())
}
