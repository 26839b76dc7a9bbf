package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Event source names. The frontend keys its websocket handlers on these, so
// they are fixed strings rather than anything derived at runtime.
const (
	PlayQueueName     = "play_queue"
	DownloadQueueName = "download_queue"
	CatalogName       = "catalog"
	FetcherName       = "fetcher"
)

var (
	// RootDir anchors all on-disk state; defaults to the working directory
	RootDir = getEnvWithDefault("SCUTTLE_ROOT", ".")

	DataDir      = filepath.Join(RootDir, "backend", "data")
	DownloadDir  = filepath.Join(DataDir, "downloads")
	DatabasePath = filepath.Join(DataDir, "audio.db")
	SeedCSVPath  = filepath.Join(DataDir, "seed.csv")
	ToolsDir     = filepath.Join(RootDir, "tools")

	// EnvFile is where --setup and --set-webhook persist their results
	EnvFile = filepath.Join(RootDir, ".env")

	Port = getEnvWithDefault("PORT", "8000")

	// Webhook notifications are disabled when unset
	WebhookURL = os.Getenv("DISCORD_WEBHOOK_URL")

	// External tool paths, produced by `scuttle-supervisor --setup`
	ServerBin  = getEnvWithDefault("SERVER_BIN_PATH", "scuttle-server")
	FetcherBin = getEnvWithDefault("FETCHER_BIN_PATH", "yt-dlp")
	FFmpegBin  = getEnvWithDefault("FFMPEG_BIN_PATH", "ffmpeg")
	FFprobeBin = getEnvWithDefault("FFPROBE_BIN_PATH", "ffprobe")
	TunnelBin  = os.Getenv("TUNNEL_BIN_PATH")

	// Fetcher behavior
	SearchLimit     = getEnvInt("SEARCH_LIMIT", 3)
	SearchTimeout   = time.Duration(getEnvInt("SEARCH_TIMEOUT_SECONDS", 30)) * time.Second
	DownloadTimeout = time.Duration(getEnvInt("DOWNLOAD_TIMEOUT_SECONDS", 300)) * time.Second

	// Supervisor behavior
	PollInterval   = time.Duration(getEnvInt("SUPERVISOR_POLL_SECONDS", 60)) * time.Second
	IdleRestart    = time.Duration(getEnvInt("SUPERVISOR_IDLE_HOURS", 3)) * time.Hour
	TunnelURLWait  = time.Duration(getEnvInt("TUNNEL_URL_WAIT_SECONDS", 60)) * time.Second
	ServerBootWait = time.Duration(getEnvInt("SERVER_BOOT_WAIT_SECONDS", 30)) * time.Second
)

// AudioExtensions is the probe order for resolving a downloaded file. The
// worker writes opus after post-processing; wav and mp3 cover files produced
// by earlier pipeline configurations.
var AudioExtensions = []string{"opus", "wav", "mp3"}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
