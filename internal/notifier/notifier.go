// Package notifier delivers reminder text to the user: to the desktop tray
// companion when it is running, otherwise to the log.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-ps"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/constants"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/logger"
)

// ErrTrayNotRunning is returned when no live tray process owns the lockfile.
var ErrTrayNotRunning = errors.New("quiethours-tray is not running")

type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// Message is the JSON body posted to the tray webhook.
type Message struct {
	Title      string `json:"title"`
	Text       string `json:"text"`
	DurationMs uint32 `json:"duration_ms"`
}

// Tray posts notifications to the local tray app. The app advertises its
// port, PID and shared secret in a lockfile formatted "port|pid|secret".
type Tray struct {
	client      *http.Client
	configDir   func() (string, error)
	findProcess func(int) (ps.Process, error)
	retries     int
	retryDelay  time.Duration
}

func NewTray() *Tray {
	return &Tray{
		client:      &http.Client{Timeout: 5 * time.Second},
		configDir:   os.UserConfigDir,
		findProcess: ps.FindProcess,
		retries:     constants.NotifyMaxRetries,
		retryDelay:  constants.NotifyRetryDelay,
	}
}

func (t *Tray) Notify(ctx context.Context, title, body string) error {
	dir, err := t.lockfileDir()
	if err != nil {
		return err
	}
	port, secret, err := t.findTray(filepath.Join(dir, constants.NotifierLockfileName))
	if err != nil {
		return err
	}

	msg := Message{Title: title, Text: body, DurationMs: constants.NotificationDurationMs}
	var lastErr error
	for attempt := 0; attempt < t.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(t.retryDelay):
			}
		}
		if lastErr = t.send(ctx, port, secret, msg); lastErr == nil {
			return nil
		}
	}
	return lastErr
}

// lockfileDir honours a lockfile_dir override in the tray's settings.json.
func (t *Tray) lockfileDir() (string, error) {
	configDir, err := t.configDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	trayDir := filepath.Join(configDir, constants.TrayAppIdentifier)

	data, err := os.ReadFile(filepath.Join(trayDir, "settings.json"))
	if err != nil {
		return trayDir, nil
	}
	var settings struct {
		Settings struct {
			LockfileDir string `json:"lockfile_dir"`
		} `json:"settings"`
	}
	if err := json.Unmarshal(data, &settings); err == nil && settings.Settings.LockfileDir != "" {
		return settings.Settings.LockfileDir, nil
	}
	return trayDir, nil
}

func (t *Tray) findTray(lockfilePath string) (port, secret string, err error) {
	content, err := os.ReadFile(lockfilePath)
	if err != nil {
		return "", "", ErrTrayNotRunning
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return "", "", errors.New("lockfile is malformed")
	}

	port = strings.TrimSpace(parts[0])
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return "", "", errors.New("invalid port number in lockfile")
	}
	if portNum < 1 || portNum > 65535 {
		return "", "", fmt.Errorf("port number %d is outside valid range (1-65535)", portNum)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return "", "", errors.New("invalid process ID in lockfile")
	}

	secret = strings.TrimSpace(parts[2])
	if secret == "" {
		return "", "", errors.New("secret in lockfile is empty")
	}

	process, err := t.findProcess(pid)
	if err != nil || process == nil {
		return "", "", ErrTrayNotRunning
	}
	if !strings.HasPrefix(process.Executable(), constants.TrayExecutable) {
		return "", "", fmt.Errorf("process with PID %d is not %s (is %s)", pid, constants.TrayExecutable, process.Executable())
	}

	return port, secret, nil
}

func (t *Tray) send(ctx context.Context, port, secret string, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://127.0.0.1:"+port, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(constants.TraySecretHeader, secret)

	res, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}
	body, _ := io.ReadAll(res.Body)
	return fmt.Errorf("notification failed with status %d: %s", res.StatusCode, string(body))
}

// Log writes notifications to a logger.
type Log struct {
	log *log.Logger
}

func NewLog(l *log.Logger) *Log {
	if l == nil {
		l = logger.Named("notify")
	}
	return &Log{log: l}
}

func (n *Log) Notify(_ context.Context, title, body string) error {
	n.log.Info(title, "message", body)
	return nil
}

// Fallback tries Primary and hands the notification to Secondary when it
// fails.
type Fallback struct {
	Primary   Notifier
	Secondary Notifier
}

func (f Fallback) Notify(ctx context.Context, title, body string) error {
	err := f.Primary.Notify(ctx, title, body)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrTrayNotRunning) {
		logger.Debug("primary notifier failed", "error", err)
	}
	return f.Secondary.Notify(ctx, title, body)
}

// Default is the tray with a log fallback.
func Default() Notifier {
	return Fallback{Primary: NewTray(), Secondary: NewLog(nil)}
}
