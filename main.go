package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/raine/recipe-suggester/internal/bot"
	"github.com/raine/recipe-suggester/internal/config"
	"github.com/raine/recipe-suggester/internal/llm"
	"github.com/raine/recipe-suggester/internal/recipe"
	"github.com/raine/recipe-suggester/internal/web"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

// modelFactory creates the inference model once configuration is valid.
type modelFactory func(ctx context.Context, apiKey string) (llm.Model, error)

func newGeminiModel(ctx context.Context, apiKey string) (llm.Model, error) {
	return llm.NewGeminiModel(ctx, apiKey)
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	config.LoadEnvFile()
	setupLogging(os.Getenv("LOG_LEVEL"))

	// Create context that cancels on SIGINT or SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, suggester, err := setup(ctx, os.Getenv, newGeminiModel)
	if err != nil {
		config.FatalWithWait("%v", err)
	}
	log.Info().Str("model", suggester.ModelName()).Msg("gemini model initialized")

	if err := run(ctx, cfg, suggester); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("shutdown with error")
		os.Exit(1)
	}
	log.Info().Msg("shutdown complete")
}

// setup validates configuration and builds the pipeline. newModel is only
// called when every required variable is present.
func setup(ctx context.Context, getenv func(string) string, newModel modelFactory) (*config.Config, *recipe.Suggester, error) {
	cfg, err := config.Load(getenv)
	if err != nil {
		return nil, nil, err
	}

	model, err := newModel(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, nil, err
	}

	return cfg, recipe.NewSuggester(model), nil
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	if lvl > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
}

func run(ctx context.Context, cfg *config.Config, suggester *recipe.Suggester) error {
	var tg *tgbotapi.BotAPI
	if cfg.BotToken != "" {
		var err error
		tg, err = tgbotapi.NewBotAPI(cfg.BotToken)
		if err != nil {
			return fmt.Errorf("failed to initialize telegram bot: %w", err)
		}
		tg.Debug = false
		log.Info().Str("username", tg.Self.UserName).Msg("authorized on account")
	}

	g, ctx := errgroup.WithContext(ctx)

	server := web.NewServer(cfg.ListenAddr, suggester)
	g.Go(func() error {
		return server.Run(ctx)
	})

	if tg != nil {
		g.Go(func() error {
			return runBot(ctx, tg, bot.NewBot(tg, suggester))
		})
	}

	return g.Wait()
}

func runBot(ctx context.Context, tg *tgbotapi.BotAPI, b *bot.Bot) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := tg.GetUpdatesChan(updateConfig)

	var wg sync.WaitGroup

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("stopping bot update loop")
			tg.StopReceivingUpdates()
			log.Info().Msg("waiting for active handlers to finish")
			wg.Wait()
			return nil
		case update, ok := <-updates:
			if !ok {
				log.Warn().Msg("updates channel closed")
				wg.Wait()
				return nil
			}
			wg.Add(1)
			go func(u tgbotapi.Update) {
				defer wg.Done()
				b.HandleUpdate(ctx, u)
			}(update)
		}
	}
}
