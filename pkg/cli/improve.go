package cli

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kasumi/pkg/cli/config"
	"github.com/m-mizutani/kasumi/pkg/repository/archive"
	feedbacksvc "github.com/m-mizutani/kasumi/pkg/service/feedback"
	llmsvc "github.com/m-mizutani/kasumi/pkg/service/llm"
	promptsvc "github.com/m-mizutani/kasumi/pkg/service/prompt"
	"github.com/m-mizutani/kasumi/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdImprove() *cli.Command {
	var (
		feedbackWindow int
		dbCfg          config.Database
		storageCfg     config.Storage
		llmCfg         config.LLMConfig
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "feedback-window",
			Sources:     cli.EnvVars("KASUMI_FEEDBACK_WINDOW"),
			Usage:       "Number of recent feedback entries to consider",
			Value:       10,
			Destination: &feedbackWindow,
		},
	}
	flags = append(flags, dbCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)
	flags = append(flags, llmCfg.Flags()...)

	return &cli.Command{
		Name:  "improve",
		Usage: "Run a single feedback-driven prompt improvement pass",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger := ctxlog.From(ctx)

			repo, repoCleanup, err := dbCfg.CreateRepository(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to create repository")
			}
			if repoCleanup != nil {
				defer repoCleanup()
			}

			promptStore := promptsvc.New(repo)
			if err := promptStore.Initialize(ctx); err != nil {
				return goerr.Wrap(err, "failed to initialize prompt store")
			}

			feedbackLog := feedbacksvc.New(repo)
			if err := feedbackLog.Initialize(ctx); err != nil {
				return goerr.Wrap(err, "failed to initialize feedback log")
			}

			providersConfig, err := llmCfg.LoadAndValidate()
			if err != nil {
				return goerr.Wrap(err, "failed to load LLM configuration")
			}

			factory, err := llmCfg.BuildFactory(ctx, providersConfig)
			if err != nil {
				return goerr.Wrap(err, "failed to build LLM factory")
			}

			opts := []usecase.Option{
				usecase.WithPromptStore(promptStore),
				usecase.WithFeedbackLog(feedbackLog),
				usecase.WithCompletionClient(llmsvc.NewCompletionService(factory.GetDefaultClient())),
				usecase.WithFeedbackWindow(feedbackWindow),
			}

			if storageCfg.Configured() {
				adapter, storageCleanup, err := storageCfg.CreateAdapter(ctx)
				if err != nil {
					return goerr.Wrap(err, "failed to create storage adapter")
				}
				if storageCleanup != nil {
					defer storageCleanup()
				}
				opts = append(opts, usecase.WithArchive(archive.New(adapter)))
			}

			uc := usecase.New(opts...)

			result, err := uc.RunImprovementPass(ctx)
			if err != nil {
				return err
			}

			switch {
			case result.Failed:
				logger.Error("improvement pass failed", "detail", result.ErrorDetail)
			case result.Unchanged:
				logger.Info("prompt unchanged", "reason", result.Reason)
			default:
				logger.Info("new prompt version created",
					"version", result.NewVersion.Version,
					"improvements", result.Improvements,
					"processed_feedback", result.ProcessedIDs,
				)
			}

			return nil
		},
	}
}
