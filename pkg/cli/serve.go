package cli

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kasumi/pkg/adapters/lookup"
	"github.com/m-mizutani/kasumi/pkg/cli/config"
	server "github.com/m-mizutani/kasumi/pkg/controller/http"
	"github.com/m-mizutani/kasumi/pkg/domain/interfaces"
	"github.com/m-mizutani/kasumi/pkg/repository/archive"
	conversationsvc "github.com/m-mizutani/kasumi/pkg/service/conversation"
	feedbacksvc "github.com/m-mizutani/kasumi/pkg/service/feedback"
	llmsvc "github.com/m-mizutani/kasumi/pkg/service/llm"
	promptsvc "github.com/m-mizutani/kasumi/pkg/service/prompt"
	"github.com/m-mizutani/kasumi/pkg/service/vectorsearch"
	"github.com/m-mizutani/kasumi/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		addr           string
		feedbackWindow int
		dbCfg          config.Database
		storageCfg     config.Storage
		llmCfg         config.LLMConfig
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Aliases:     []string{"a"},
			Sources:     cli.EnvVars("KASUMI_ADDR"),
			Usage:       "Listen address (default: 127.0.0.1:8080)",
			Value:       "127.0.0.1:8080",
			Destination: &addr,
		},
		&cli.IntFlag{
			Name:        "feedback-window",
			Sources:     cli.EnvVars("KASUMI_FEEDBACK_WINDOW"),
			Usage:       "Number of recent feedback entries an improvement pass considers",
			Value:       10,
			Destination: &feedbackWindow,
		},
	}
	flags = append(flags, dbCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)
	flags = append(flags, llmCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Run server",
		Flags:   flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger := ctxlog.From(ctx)
			logger.Info("starting server",
				"addr", addr,
				"firestore", dbCfg.UseFirestore(),
				"storage", storageCfg.Configured(),
			)

			uc, cleanup, err := buildAssistant(ctx, &dbCfg, &storageCfg, &llmCfg, feedbackWindow)
			if err != nil {
				return err
			}
			defer cleanup()

			httpServer := http.Server{
				Addr:              addr,
				Handler:           server.New(server.WithUseCase(uc)),
				ReadTimeout:       30 * time.Second,
				ReadHeaderTimeout: 10 * time.Second,
				BaseContext: func(l net.Listener) context.Context {
					return ctx
				},
			}

			errCh := make(chan error, 1)
			go func() {
				defer close(errCh)
				ctxlog.From(ctx).Info("server started", "addr", addr)
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case <-sigCh:
				ctxlog.From(ctx).Info("shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return httpServer.Shutdown(shutdownCtx)
			}
		},
	}
}

// buildAssistant wires repositories, services and adapters into the use case.
// The returned cleanup function closes any backend clients.
func buildAssistant(ctx context.Context, dbCfg *config.Database, storageCfg *config.Storage, llmCfg *config.LLMConfig, feedbackWindow int) (*usecase.Assistant, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	repo, repoCleanup, err := dbCfg.CreateRepository(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to create repository")
	}
	if repoCleanup != nil {
		cleanups = append(cleanups, repoCleanup)
	}

	promptStore := promptsvc.New(repo)
	if err := promptStore.Initialize(ctx); err != nil {
		cleanup()
		return nil, nil, goerr.Wrap(err, "failed to initialize prompt store")
	}

	feedbackLog := feedbacksvc.New(repo)
	if err := feedbackLog.Initialize(ctx); err != nil {
		cleanup()
		return nil, nil, goerr.Wrap(err, "failed to initialize feedback log")
	}

	conversationLog := conversationsvc.New(repo)
	if err := conversationLog.Initialize(ctx); err != nil {
		cleanup()
		return nil, nil, goerr.Wrap(err, "failed to initialize conversation log")
	}

	providersConfig, err := llmCfg.LoadAndValidate()
	if err != nil {
		cleanup()
		return nil, nil, goerr.Wrap(err, "failed to load LLM configuration")
	}

	factory, err := llmCfg.BuildFactory(ctx, providersConfig)
	if err != nil {
		cleanup()
		return nil, nil, goerr.Wrap(err, "failed to build LLM factory")
	}

	opts := []usecase.Option{
		usecase.WithPromptStore(promptStore),
		usecase.WithFeedbackLog(feedbackLog),
		usecase.WithConversationLog(conversationLog),
		usecase.WithLLMClient(factory.GetDefaultClient()),
		usecase.WithCompletionClient(llmsvc.NewCompletionService(factory.GetDefaultClient())),
		usecase.WithTools(lookup.NewToolSet()),
		usecase.WithFeedbackWindow(feedbackWindow),
	}

	// Archive and vector index persistence share the storage adapter
	if storageCfg.Configured() {
		adapter, storageCleanup, err := storageCfg.CreateAdapter(ctx)
		if err != nil {
			cleanup()
			return nil, nil, goerr.Wrap(err, "failed to create storage adapter")
		}
		if storageCleanup != nil {
			cleanups = append(cleanups, storageCleanup)
		}

		opts = append(opts, usecase.WithArchive(archive.New(adapter)))

		index, err := buildVectorIndex(ctx, factory, adapter, providersConfig.Embedding.Dimension)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		opts = append(opts, usecase.WithVectorSearch(index))
	} else {
		index, err := buildVectorIndex(ctx, factory, nil, providersConfig.Embedding.Dimension)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		opts = append(opts, usecase.WithVectorSearch(index))
	}

	return usecase.New(opts...), cleanup, nil
}

func buildVectorIndex(ctx context.Context, factory *llmsvc.Factory, storage interfaces.StorageAdapter, dimension int) (*vectorsearch.Index, error) {
	embedder, err := factory.GetEmbeddingClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create embedding client")
	}

	var indexOpts []vectorsearch.Option
	if dimension > 0 {
		indexOpts = append(indexOpts, vectorsearch.WithDimension(dimension))
	}

	index := vectorsearch.New(embedder, storage, indexOpts...)
	if err := index.Initialize(ctx, lookup.KnowledgeSeeds()); err != nil {
		return nil, goerr.Wrap(err, "failed to initialize vector index")
	}

	return index, nil
}
