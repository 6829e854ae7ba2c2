package fetch

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/allgit/internal/shared"
	"github.com/temirov/allgit/internal/utils"
)

const (
	commandUseConstant              = "fetch"
	commandShortDescriptionConstant = "Fetch every repository beneath the working directory"
	commandLongDescriptionConstant  = "fetch discovers all git checkouts beneath the current directory and runs git fetch --all --prune --tags in each through a bounded worker pool, retrying once on failure."
	workersFlagNameConstant         = "workers"
	workersFlagDescriptionConstant  = "Number of repositories fetched concurrently"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the batch fetch command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	GitExecutor           shared.GitExecutor
	Discoverer            shared.RepositoryDiscoverer
	ConfigurationProvider func() CommandConfiguration
}

// Build constructs the fetch command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	command.Flags().Int(workersFlagNameConstant, DefaultCommandConfiguration().WorkerCount, workersFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()

	workerCount := configuration.WorkerCount
	if command.Flags().Changed(workersFlagNameConstant) {
		flagWorkerCount, workersFlagError := command.Flags().GetInt(workersFlagNameConstant)
		if workersFlagError != nil {
			return workersFlagError
		}
		workerCount = flagWorkerCount
	}

	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return workingDirectoryError
	}

	logger := builder.resolveLogger()
	gitExecutor, executorError := shared.ResolveGitExecutor(builder.GitExecutor, logger)
	if executorError != nil {
		return executorError
	}

	service, serviceCreationError := NewService(Dependencies{
		GitExecutor:  gitExecutor,
		Discoverer:   shared.ResolveRepositoryDiscoverer(builder.Discoverer),
		OutputWriter: utils.NewFlushingWriter(command.OutOrStdout()),
	})
	if serviceCreationError != nil {
		return serviceCreationError
	}

	return service.Run(command.Context(), Options{Root: workingDirectory, WorkerCount: CommandConfiguration{WorkerCount: workerCount}.Sanitize().WorkerCount})
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
