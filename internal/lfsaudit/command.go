package lfsaudit

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/allgit/internal/shared"
	"github.com/temirov/allgit/internal/utils"
)

const (
	commandUseConstant                = "lfs-audit"
	commandShortDescriptionConstant   = "Verify every historical large object against its remotes"
	commandLongDescriptionConstant    = "lfs-audit enumerates every large file pointer across the repository history, probes each remote's verification endpoint for the object, and reports the commits referencing objects no remote can confirm. Confirmed objects are cached so later runs skip them."
	repositoryFlagNameConstant        = "repository"
	repositoryFlagDescriptionConstant = "Path to the repository to audit"
	cacheDirFlagNameConstant          = "cache-dir"
	cacheDirFlagDescriptionConstant   = "Directory holding the audit caches"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the large object audit command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	GitExecutor           shared.GitExecutor
	Verifier              ObjectVerifier
	ConfigurationProvider func() CommandConfiguration
}

// Build constructs the lfs-audit command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	defaults := DefaultCommandConfiguration()
	command.Flags().String(repositoryFlagNameConstant, defaults.RepositoryPath, repositoryFlagDescriptionConstant)
	command.Flags().String(cacheDirFlagNameConstant, defaults.CacheDirectory, cacheDirFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()

	repositoryPath := configuration.RepositoryPath
	if command.Flags().Changed(repositoryFlagNameConstant) {
		flagRepositoryPath, repositoryFlagError := command.Flags().GetString(repositoryFlagNameConstant)
		if repositoryFlagError != nil {
			return repositoryFlagError
		}
		repositoryPath = flagRepositoryPath
	}

	cacheDirectory := configuration.CacheDirectory
	if command.Flags().Changed(cacheDirFlagNameConstant) {
		flagCacheDirectory, cacheDirFlagError := command.Flags().GetString(cacheDirFlagNameConstant)
		if cacheDirFlagError != nil {
			return cacheDirFlagError
		}
		cacheDirectory = flagCacheDirectory
	}

	logger := builder.resolveLogger()
	gitExecutor, executorError := shared.ResolveGitExecutor(builder.GitExecutor, logger)
	if executorError != nil {
		return executorError
	}

	verifier := builder.Verifier
	if verifier == nil {
		verifier = NewHTTPObjectVerifier()
	}

	service, serviceCreationError := NewService(Dependencies{
		Logger:         logger,
		PointerLister:  NewPointerLister(gitExecutor, cacheDirectory),
		RemoteResolver: NewRemoteResolver(gitExecutor, NewGitCredentialHelper(gitExecutor)),
		CommitLocator:  NewCommitLocator(gitExecutor),
		Verifier:       verifier,
		OutputWriter:   utils.NewFlushingWriter(command.OutOrStdout()),
	})
	if serviceCreationError != nil {
		return serviceCreationError
	}

	executionContext, stopNotify := signal.NotifyContext(command.Context(), os.Interrupt, syscall.SIGTERM)
	defer stopNotify()

	return service.Run(executionContext, Options{RepositoryPath: repositoryPath, CacheDirectory: cacheDirectory})
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
