package bootstrap

import (
	"context"
	"fmt"

	"github.com/quoteflowhq/quoteflow/internal/config"
	"github.com/quoteflowhq/quoteflow/internal/core/ports"
	"github.com/quoteflowhq/quoteflow/internal/core/usecase"
	"github.com/quoteflowhq/quoteflow/internal/infrastructure/auth"
	"github.com/quoteflowhq/quoteflow/internal/infrastructure/email"
	openaillm "github.com/quoteflowhq/quoteflow/internal/infrastructure/llm/openai"
	"github.com/quoteflowhq/quoteflow/internal/infrastructure/queue/nats"
	"github.com/quoteflowhq/quoteflow/internal/infrastructure/repository/postgres"
	"github.com/quoteflowhq/quoteflow/internal/infrastructure/resilience"
	"github.com/quoteflowhq/quoteflow/internal/infrastructure/storage/localfs"
	"github.com/quoteflowhq/quoteflow/internal/pdf"
)

type App struct {
	Config config.Config

	Queue         ports.MessageQueue
	Storage       ports.ObjectStorage
	Subscriptions ports.SubscriptionRepository
	Verifier      ports.TokenVerifier
	Sender        ports.EmailSender
	LLM           *openaillm.Client

	DraftUC    ports.QuoteDrafter
	FinalizeUC ports.QuoteFinalizer
	ReadUC     ports.QuoteReader

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	quotes := postgres.NewQuoteRepository(db)
	profiles := postgres.NewCompanyProfileRepository(db)
	subscriptions := postgres.NewSubscriptionRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSEmailSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	llm := openaillm.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.OpenAITranscribeModel, executor)
	renderer := pdf.NewRenderer()

	sender, err := email.NewSender(email.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
	if err != nil {
		return nil, fmt.Errorf("init email sender: %w", err)
	}

	draftUC := usecase.NewDraftQuoteUseCase(
		quotes, profiles, subscriptions, storage,
		llm, llm, renderer, queue,
		cfg.PublicBaseURL, cfg.FreeTierQuoteLimit,
	)
	finalizeUC := usecase.NewFinalizeQuoteUseCase(
		quotes, profiles, storage, llm, renderer, queue, cfg.PublicBaseURL,
	)
	readUC := usecase.NewQuoteReadUseCase(quotes, profiles, storage, renderer, cfg.PublicBaseURL)

	return &App{
		Config: cfg,

		Queue:         queue,
		Storage:       storage,
		Subscriptions: subscriptions,
		Verifier:      auth.NewHMACVerifier(cfg.AuthSecret),
		Sender:        sender,
		LLM:           llm,

		DraftUC:    draftUC,
		FinalizeUC: finalizeUC,
		ReadUC:     readUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
