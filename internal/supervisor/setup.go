package supervisor

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/joho/godotenv"

	"scuttle/internal/config"
)

const tunnelReleaseAPI = "https://api.github.com/repos/cloudflare/cloudflared/releases/latest"

// Setup downloads the cloudflared binary for this platform into the tools
// directory and records its path in the env file.
func Setup() error {
	assetName, err := tunnelAssetName()
	if err != nil {
		return err
	}

	url, err := latestAssetURL(assetName)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(config.ToolsDir, 0o755); err != nil {
		return fmt.Errorf("creating tools directory: %w", err)
	}
	target := filepath.Join(config.ToolsDir, assetName)

	slog.Info("Downloading tunnel binary", "url", url, "target", target)
	if err := downloadFile(url, target); err != nil {
		return err
	}
	if err := os.Chmod(target, 0o755); err != nil {
		return fmt.Errorf("marking tunnel binary executable: %w", err)
	}

	if err := UpdateEnv("TUNNEL_BIN_PATH", target); err != nil {
		return err
	}
	slog.Info("Setup complete", "tunnel", target)
	return nil
}

func tunnelAssetName() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		if runtime.GOARCH == "arm64" {
			return "cloudflared-darwin-arm64", nil
		}
		return "cloudflared-darwin-amd64", nil
	case "linux":
		if runtime.GOARCH == "arm64" {
			return "cloudflared-linux-arm64", nil
		}
		return "cloudflared-linux-amd64", nil
	case "windows":
		return "cloudflared-windows-amd64.exe", nil
	}
	return "", fmt.Errorf("unsupported platform %s/%s", runtime.GOOS, runtime.GOARCH)
}

func latestAssetURL(assetName string) (string, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(tunnelReleaseAPI)
	if err != nil {
		return "", fmt.Errorf("fetching release metadata: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("release metadata request returned %s", resp.Status)
	}

	var release struct {
		Assets []struct {
			Name        string `json:"name"`
			DownloadURL string `json:"browser_download_url"`
		} `json:"assets"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", fmt.Errorf("parsing release metadata: %w", err)
	}

	for _, asset := range release.Assets {
		if asset.Name == assetName {
			return asset.DownloadURL, nil
		}
	}
	return "", fmt.Errorf("no release asset named %s", assetName)
}

// downloadFile streams url into target via a .part file so an interrupted
// download never leaves a half-written binary behind.
func downloadFile(url, target string) error {
	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download returned %s", resp.Status)
	}

	part := target + ".part"
	f, err := os.Create(part)
	if err != nil {
		return fmt.Errorf("creating %s: %w", part, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(part)
		return fmt.Errorf("writing %s: %w", part, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(part)
		return err
	}
	return os.Rename(part, target)
}

// UpdateEnv upserts key=value in the env file and mirrors it into the
// current process environment.
func UpdateEnv(key, value string) error {
	env, err := godotenv.Read(config.EnvFile)
	if err != nil {
		env = map[string]string{}
	}
	env[key] = value

	if err := godotenv.Write(env, config.EnvFile); err != nil {
		return fmt.Errorf("writing env file: %w", err)
	}
	os.Setenv(key, value)
	return nil
}
