package history

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/allgit/internal/shared"
	"github.com/temirov/allgit/internal/utils"
)

const (
	yesterdayCommandUseConstant          = "yesterday"
	yesterdayShortDescriptionConstant    = "Show commits from the previous workday across repositories"
	lastWeekCommandUseConstant           = "last-week"
	lastWeekShortDescriptionConstant     = "Show commits from the trailing seven days across repositories"
	rangeCommandUseConstant              = "range AFTER BEFORE"
	rangeShortDescriptionConstant        = "Show commits between two dates across repositories"
	rangeArgumentCountConstant           = 2
	goneCommandUseConstant               = "gone"
	goneShortDescriptionConstant         = "List local branches whose upstream is gone across repositories"
	execCommandUseConstant               = "exec -- ARGS..."
	execShortDescriptionConstant         = "Run an arbitrary git command across repositories"
	authorFlagNameConstant               = "author"
	authorFlagDescriptionConstant        = "Filter commits by author substring"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the history command family.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	GitExecutor           shared.GitExecutor
	Discoverer            shared.RepositoryDiscoverer
	Clock                 shared.Clock
	ConfigurationProvider func() CommandConfiguration
}

// Build constructs the yesterday, last-week, range, gone, and exec commands.
func (builder *CommandBuilder) Build() ([]*cobra.Command, error) {
	yesterdayCommand := &cobra.Command{
		Use:   yesterdayCommandUseConstant,
		Short: yesterdayShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.runLogCommand(command, YesterdayRange(shared.ResolveClock(builder.Clock)))
		},
	}
	builder.addAuthorFlag(yesterdayCommand.Flags())

	lastWeekCommand := &cobra.Command{
		Use:   lastWeekCommandUseConstant,
		Short: lastWeekShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.runLogCommand(command, LastWeekRange(shared.ResolveClock(builder.Clock)))
		},
	}
	builder.addAuthorFlag(lastWeekCommand.Flags())

	rangeCommand := &cobra.Command{
		Use:   rangeCommandUseConstant,
		Short: rangeShortDescriptionConstant,
		Args:  cobra.ExactArgs(rangeArgumentCountConstant),
		RunE: func(command *cobra.Command, arguments []string) error {
			afterTime, afterError := ParseDay(arguments[0])
			if afterError != nil {
				return afterError
			}
			beforeTime, beforeError := ParseDay(arguments[1])
			if beforeError != nil {
				return beforeError
			}
			return builder.runLogCommand(command, TimeRange{After: afterTime, Before: beforeTime})
		},
	}
	builder.addAuthorFlag(rangeCommand.Flags())

	goneCommand := &cobra.Command{
		Use:   goneCommandUseConstant,
		Short: goneShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			service, workingDirectory, serviceError := builder.buildService(command)
			if serviceError != nil {
				return serviceError
			}
			return service.PrintGoneBranches(command.Context(), workingDirectory)
		},
	}

	execCommand := &cobra.Command{
		Use:   execCommandUseConstant,
		Short: execShortDescriptionConstant,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			service, workingDirectory, serviceError := builder.buildService(command)
			if serviceError != nil {
				return serviceError
			}
			return service.RunPassthrough(command.Context(), workingDirectory, arguments)
		},
	}

	return []*cobra.Command{yesterdayCommand, lastWeekCommand, rangeCommand, goneCommand, execCommand}, nil
}

func (builder *CommandBuilder) addAuthorFlag(flagSet *pflag.FlagSet) {
	flagSet.String(authorFlagNameConstant, DefaultCommandConfiguration().Author, authorFlagDescriptionConstant)
}

func (builder *CommandBuilder) runLogCommand(command *cobra.Command, timeRange TimeRange) error {
	service, workingDirectory, serviceError := builder.buildService(command)
	if serviceError != nil {
		return serviceError
	}

	author := builder.resolveConfiguration().Author
	if command.Flags().Changed(authorFlagNameConstant) {
		flagAuthor, authorFlagError := command.Flags().GetString(authorFlagNameConstant)
		if authorFlagError != nil {
			return authorFlagError
		}
		author = flagAuthor
	}

	return service.PrintLogs(command.Context(), LogOptions{
		Root:   workingDirectory,
		Author: author,
		Range:  timeRange,
	})
}

func (builder *CommandBuilder) buildService(command *cobra.Command) (*Service, string, error) {
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return nil, "", workingDirectoryError
	}

	logger := builder.resolveLogger()
	gitExecutor, executorError := shared.ResolveGitExecutor(builder.GitExecutor, logger)
	if executorError != nil {
		return nil, "", executorError
	}

	service, serviceCreationError := NewService(Dependencies{
		GitExecutor:  gitExecutor,
		Discoverer:   shared.ResolveRepositoryDiscoverer(builder.Discoverer),
		OutputWriter: utils.NewFlushingWriter(command.OutOrStdout()),
	})
	if serviceCreationError != nil {
		return nil, "", serviceCreationError
	}
	return service, workingDirectory, nil
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
