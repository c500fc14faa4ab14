package configuration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitApp_PortPrecedence(t *testing.T) {
	t.Run("APP_PORT wins over PORT", func(t *testing.T) {
		t.Setenv("APP_PORT", "9000")
		t.Setenv("PORT", "8000")
		cfg := Config{App: App{Port: 7000}}
		initApp(&cfg)
		assert.Equal(t, 9000, cfg.App.Port)
	})

	t.Run("PORT used when APP_PORT empty", func(t *testing.T) {
		t.Setenv("APP_PORT", "")
		t.Setenv("PORT", "8000")
		cfg := Config{}
		initApp(&cfg)
		assert.Equal(t, 8000, cfg.App.Port)
	})

	t.Run("default port", func(t *testing.T) {
		t.Setenv("APP_PORT", "")
		t.Setenv("PORT", "")
		cfg := Config{}
		initApp(&cfg)
		assert.Equal(t, 10001, cfg.App.Port)
	})
}

func TestInitApp_SecretAndCors(t *testing.T) {
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example,")
	cfg := Config{App: App{SecretKey: "from-file"}}
	initApp(&cfg)
	assert.Equal(t, "s3cret", cfg.App.SecretKey)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Cors.AllowOrigins)
}

func TestInitTikTok_Defaults(t *testing.T) {
	t.Setenv("TIKTOK_CLIENT_KEY", "ck")
	t.Setenv("TIKTOK_CLIENT_SECRET", "cs")
	t.Setenv("TIKTOK_REDIRECT_URI", "")
	t.Setenv("TIKTOK_DEEP_LINK_BASE", "")
	cfg := Config{}
	initTikTok(&cfg)

	require.Equal(t, "ck", cfg.TikTok.ClientKey)
	assert.Equal(t, "cs", cfg.TikTok.ClientSecret)
	assert.Equal(t, []string{"user.info.basic", "video.publish", "video.upload"}, cfg.TikTok.Scopes)
	assert.Equal(t, "mobile_", cfg.TikTok.StatePrefix)
	assert.Equal(t, "luma://auth/tiktok/callback", cfg.TikTok.DeepLinkBase)
	assert.Equal(t, DefaultTikTokTokenURL, cfg.TikTok.TokenURL)
	assert.Equal(t, DefaultTikTokUserInfoURL, cfg.TikTok.UserInfoURL)
	assert.Equal(t, DefaultTikTokAuthorizeURL, cfg.TikTok.AuthorizeURL)
	assert.Equal(t, 15, cfg.TikTok.TimeoutSeconds)
}

func TestInitTikTok_HTTPSRedirectWhenTLS(t *testing.T) {
	t.Setenv("TIKTOK_REDIRECT_URI", "http://localhost:10001/auth/tiktok/callback")
	cfg := Config{App: App{TLSEnabled: true}}
	initTikTok(&cfg)
	assert.Equal(t, "https://localhost:10001/auth/tiktok/callback", cfg.TikTok.RedirectURI)
}

func TestInitSessionAndEvents_Defaults(t *testing.T) {
	t.Setenv("SESSION_BACKEND", "")
	t.Setenv("EVENTS_DRIVER", "")
	cfg := Config{}
	initSession(&cfg)
	initEvents(&cfg)
	assert.Equal(t, "mongo", cfg.Session.Backend)
	assert.Equal(t, 300, cfg.Session.TTLSeconds)
	assert.Equal(t, "none", cfg.Events.Driver)
	assert.Equal(t, "schedule-status", cfg.Events.Topic)
	assert.Equal(t, "schedule-status", cfg.ServiceBus.Queue)

	t.Setenv("SESSION_BACKEND", "redis")
	cfg = Config{}
	initSession(&cfg)
	assert.Equal(t, "redis", cfg.Session.Backend)
}

func TestLoadEnvFromFile_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("# comment\nLUMA_TEST_NEW=fromfile\nLUMA_TEST_SET=\"fromfile\"\n"), 0o600))

	t.Setenv("LUMA_TEST_SET", "fromenv")
	os.Unsetenv("LUMA_TEST_NEW")
	t.Cleanup(func() { os.Unsetenv("LUMA_TEST_NEW") })

	LoadEnvFromFile(filepath.Join(dir, "missing.env"), path)

	assert.Equal(t, "fromfile", os.Getenv("LUMA_TEST_NEW"))
	assert.Equal(t, "fromenv", os.Getenv("LUMA_TEST_SET"))
}
