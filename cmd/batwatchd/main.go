package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cptspacemanspiff/batwatch/internal/alert"
	"github.com/cptspacemanspiff/batwatch/internal/battery"
	"github.com/cptspacemanspiff/batwatch/internal/config"
	"github.com/cptspacemanspiff/batwatch/internal/notify"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config file")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	list := flag.Bool("list", false, "list detected batteries and exit")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			logger.Error("load config", "path", *configPath, "err", err)
			os.Exit(1)
		}
	}

	if *list {
		names := battery.Discover()
		if len(names) == 0 {
			fmt.Println("no batteries found")
			return
		}
		fmt.Println(strings.Join(names, "\n"))
		return
	}

	names := cfg.Battery.Names
	if len(names) > 0 {
		if i := battery.Validate(names); i >= 0 {
			logger.Error("configured device is not a battery", "name", names[i], "index", i)
			os.Exit(1)
		}
	} else {
		names = battery.Discover()
		if len(names) == 0 {
			logger.Error("no batteries found")
			os.Exit(1)
		}
	}

	state, err := battery.New(names, logger)
	if err != nil {
		logger.Error("init battery state", "err", err)
		os.Exit(1)
	}
	defer state.Close()

	notifier, err := notify.New(cfg.Alerts.AppName)
	if err != nil {
		logger.Warn("desktop notifications unavailable", "err", err)
		notifier = nil
	} else {
		defer notifier.Close()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("batwatchd started", "batteries", strings.Join(names, ","),
		"poll_timeout_secs", cfg.Poll.TimeoutSeconds, "required", cfg.Battery.Required)

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(state, cfg, notifier, logger)
	}()

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
		_ = state.Close()
		<-errCh
	case err := <-errCh:
		if err != nil {
			logger.Error("battery monitoring failed", "err", err)
			os.Exit(1)
		}
	}
}

// run is the status-reporting loop and the only WaitForUpdate caller; the
// aggregate's fields are read nowhere else while it runs. It returns nil
// once the state has been closed.
func run(state *battery.State, cfg *config.Config, notifier *notify.Notifier, logger *slog.Logger) error {
	timeout := time.Duration(cfg.Poll.TimeoutSeconds) * time.Second
	th := alert.Thresholds{
		Warning:  cfg.Alerts.WarningLevel,
		Critical: cfg.Alerts.CriticalLevel,
		Danger:   cfg.Alerts.DangerLevel,
	}

	var tracker alert.Tracker
	for {
		if err := state.WaitForUpdate(cfg.Battery.Required, timeout); err != nil {
			if errors.Is(err, battery.ErrClosed) {
				return nil
			}
			return err
		}

		logger.Debug("battery reading",
			"level", state.Level,
			"discharging", state.Discharging,
			"full", state.Full,
			"energy_now", state.EnergyNow,
			"energy_full", state.EnergyFull)

		st := alert.Classify(state.Level, state.Discharging, state.Full, th)
		if !tracker.Update(st) {
			continue
		}

		logger.Info("battery state changed", "state", st.String(), "level", state.Level)
		handleTransition(st, state.Level, cfg, notifier, logger)
	}
}

func handleTransition(st alert.State, level int, cfg *config.Config, notifier *notify.Notifier, logger *slog.Logger) {
	body := fmt.Sprintf("Battery level: %d%%", level)

	switch st {
	case alert.Warning:
		send(notifier, logger, notify.UrgencyNormal, cfg.Alerts.WarningMessage, body)
	case alert.Critical:
		send(notifier, logger, notify.UrgencyCritical, cfg.Alerts.CriticalMessage, body)
	case alert.Danger:
		send(notifier, logger, notify.UrgencyCritical, cfg.Alerts.CriticalMessage, body)
		runDangerCommand(cfg.Alerts.DangerCommand, logger)
	case alert.Full:
		if cfg.Alerts.NotifyFull {
			send(notifier, logger, notify.UrgencyLow, cfg.Alerts.FullMessage, body)
		}
	case alert.AC, alert.Discharging:
		// Back to a healthy state; withdraw any standing alert.
		if notifier != nil {
			if err := notifier.Dismiss(); err != nil {
				logger.Debug("dismiss notification", "err", err)
			}
		}
	}
}

func send(notifier *notify.Notifier, logger *slog.Logger, urgency notify.Urgency, summary, body string) {
	if notifier == nil {
		return
	}
	if err := notifier.Send(urgency, summary, body); err != nil {
		logger.Warn("send notification", "err", err)
	}
}

func runDangerCommand(command string, logger *slog.Logger) {
	if command == "" {
		return
	}
	cmd := exec.Command("sh", "-c", command)
	if err := cmd.Start(); err != nil {
		logger.Error("run danger command", "err", err)
		return
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			logger.Error("danger command failed", "err", err)
		}
	}()
}
