package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"pgrkam-assistant/utils"
	"pgrkam-assistant/work-flows/client"
	"pgrkam-assistant/work-flows/gateway"
	"pgrkam-assistant/work-flows/i18n"
	"pgrkam-assistant/work-flows/managers"
	"pgrkam-assistant/work-flows/services"
	"pgrkam-assistant/work-flows/speech"
	"pgrkam-assistant/work-flows/storage"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		utils.PrintInfo(os.Stderr, "No .env file found, using system environment variables")
	}

	cfg, err := utils.LoadConfig()
	if err != nil {
		utils.PrintError(os.Stderr, fmt.Sprintf("Invalid configuration: %v", err))
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		utils.PrintError(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func run(cfg *utils.Config) error {
	if err := os.MkdirAll(cfg.StateDir, 0o700); err != nil {
		return fmt.Errorf("failed to create state dir: %w", err)
	}

	logFile, err := os.OpenFile(cfg.LogFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	utils.InitGlobalLogger(cfg.IsDevelopment(), logFile)
	utils.Info("starting assistant", "api_url", cfg.APIURL, "store", cfg.Store, "env", cfg.Environment)

	store, err := storage.Open(cfg.Store, cfg.StateDir)
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	auth := services.NewAuthState(store)
	provider, err := i18n.NewProvider(store)
	if err != nil {
		return fmt.Errorf("failed to load translations: %w", err)
	}

	apiClient := client.NewBackendClient(cfg.APIURL, &http.Client{Timeout: cfg.HTTPTimeout}, auth)
	profile := services.NewProfileManager(apiClient, auth)

	bridge, closers := newSpeechBridge(ctx, cfg, apiClient, provider.Locale())
	defer func() {
		bridge.Close()
		for _, c := range closers {
			if err := c.Close(); err != nil {
				utils.Warn("failed to close speech client", "error", err.Error())
			}
		}
	}()

	orchestrator := gateway.NewChatbotOrchestrator(gateway.Dependencies{
		Client:       apiClient,
		Store:        store,
		Auth:         auth,
		Accounts:     services.NewAccountService(apiClient, auth),
		Profile:      profile,
		Sessions:     services.NewSessionList(apiClient),
		Conversation: managers.NewConversationManager(apiClient, profile, provider),
		Speech:       bridge,
		I18n:         provider,
		ExportDir:    filepath.Join(cfg.StateDir, "exports"),
	}, os.Stdin, os.Stdout)

	// The prompt blocks on stdin, so an interrupt exits directly after
	// silencing speech and flushing state.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		sig, ok := <-sigs
		if !ok {
			return
		}
		utils.Info("shutting down", "signal", sig.String())
		cancel()
		bridge.Close()
		if err := store.Close(); err != nil {
			utils.Error(err, "failed to close state store")
		}
		gateway.PrintGoodbye(os.Stdout, "\n"+provider.Translate("goodbye"))
		os.Exit(130)
	}()

	return orchestrator.Run(ctx)
}

// newSpeechBridge builds the engines selected in cfg. An engine that cannot
// be set up is left out, and the matching commands report it as unsupported.
func newSpeechBridge(ctx context.Context, cfg *utils.Config, apiClient client.Client, locale string) (*speech.Bridge, []io.Closer) {
	var closers []io.Closer
	bridgeCfg := speech.Config{
		Locale:         locale,
		AutoSpeak:      cfg.Speech.AutoSpeak,
		AutoSpeakDelay: cfg.Speech.AutoSpeakDelay,
	}

	switch cfg.Speech.TTSEngine {
	case utils.EngineBackend:
		bridgeCfg.Synthesizer = speech.NewBackendSynthesizer(apiClient)
	case utils.EngineGoogle:
		synth, err := speech.NewGoogleSynthesizer(ctx, cfg.Speech.CredentialsFile)
		if err != nil {
			utils.Error(err, "text-to-speech disabled")
		} else {
			bridgeCfg.Synthesizer = synth
			closers = append(closers, synth)
		}
	}

	if bridgeCfg.Synthesizer != nil {
		player, err := speech.NewCommandPlayer(cfg.Speech.Player)
		if err != nil {
			utils.Warn("audio playback disabled", "error", err.Error())
		} else {
			bridgeCfg.Player = player
		}
	}

	if cfg.Speech.STTEngine == utils.EngineGoogle {
		source, err := speech.NewCommandSource(cfg.Speech.Recorder)
		if err != nil {
			utils.Warn("speech recognition disabled", "error", err.Error())
		} else if rec, err := speech.NewGoogleRecognizer(ctx, cfg.Speech.CredentialsFile, source); err != nil {
			utils.Error(err, "speech recognition disabled")
		} else {
			bridgeCfg.Recognizer = rec
			closers = append(closers, rec)
		}
	}

	return speech.NewBridge(bridgeCfg), closers
}
