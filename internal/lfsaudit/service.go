package lfsaudit

import (
	"context"
	"errors"
	"io"
	"path/filepath"

	"go.uber.org/zap"
)

const (
	presenceCacheFileNameConstant        = "verified.json"
	progressReportIntervalConstant       = 100
	progressMessageConstant              = "Verified large objects"
	progressCheckedFieldNameConstant     = "checked"
	progressConfirmedFieldNameConstant   = "confirmed"
	progressPercentFieldNameConstant     = "percent"
	auditStartMessageConstant            = "Auditing large object references"
	auditRepositoryFieldNameConstant     = "repository"
	auditRemoteCountFieldNameConstant    = "remotes"
	auditPointerCountFieldNameConstant   = "pointers"
	auditInterruptedMessageConstant      = "Audit interrupted, reporting partial results"
	verificationFailedMessageConstant    = "Verification request failed"
	verificationRemoteFieldNameConstant  = "remote"
	verificationPointerFieldNameConstant = "pointer"
	loggerMissingMessageConstant         = "lfs audit service requires a logger"
	listerMissingMessageConstant         = "lfs audit service requires a pointer lister"
	remoteResolverMissingMessageConstant = "lfs audit service requires a remote resolver"
	commitLocatorMissingMessageConstant  = "lfs audit service requires a commit locator"
	verifierMissingMessageConstant       = "lfs audit service requires an object verifier"
	outputWriterMissingMessageConstant   = "lfs audit service requires an output writer"
)

// Dependency validation errors.
var (
	ErrLoggerNotConfigured         = errors.New(loggerMissingMessageConstant)
	ErrPointerListerNotConfigured  = errors.New(listerMissingMessageConstant)
	ErrRemoteResolverNotConfigured = errors.New(remoteResolverMissingMessageConstant)
	ErrCommitLocatorNotConfigured  = errors.New(commitLocatorMissingMessageConstant)
	ErrVerifierNotConfigured       = errors.New(verifierMissingMessageConstant)
	ErrOutputWriterNotConfigured   = errors.New(outputWriterMissingMessageConstant)
)

// Dependencies bundles the collaborators required by the audit service.
type Dependencies struct {
	Logger         *zap.Logger
	PointerLister  *PointerLister
	RemoteResolver *RemoteResolver
	CommitLocator  *CommitLocator
	Verifier       ObjectVerifier
	OutputWriter   io.Writer
}

// Options carries per-invocation audit parameters.
type Options struct {
	RepositoryPath string
	CacheDirectory string
}

// Service audits every historical large object pointer against every remote's
// verification endpoint and reports the commits referencing unverified objects.
type Service struct {
	dependencies Dependencies
}

// NewService validates dependencies and constructs the audit service.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if dependencies.PointerLister == nil {
		return nil, ErrPointerListerNotConfigured
	}
	if dependencies.RemoteResolver == nil {
		return nil, ErrRemoteResolverNotConfigured
	}
	if dependencies.CommitLocator == nil {
		return nil, ErrCommitLocatorNotConfigured
	}
	if dependencies.Verifier == nil {
		return nil, ErrVerifierNotConfigured
	}
	if dependencies.OutputWriter == nil {
		return nil, ErrOutputWriterNotConfigured
	}
	return &Service{dependencies: dependencies}, nil
}

// Run performs the audit. The presence cache is flushed on every exit path so
// confirmed objects never need re-probing, even after failures or interrupts.
func (service *Service) Run(executionContext context.Context, options Options) (runError error) {
	pointers, listError := service.dependencies.PointerLister.ListPointers(executionContext, options.RepositoryPath)
	if listError != nil {
		return listError
	}

	remotes, remotesError := service.dependencies.RemoteResolver.ListRemotes(executionContext, options.RepositoryPath)
	if remotesError != nil {
		return remotesError
	}

	cacheFilePath := filepath.Join(options.CacheDirectory, presenceCacheFileNameConstant)
	presenceCache, cacheError := LoadPresenceCache(cacheFilePath)
	if cacheError != nil {
		return cacheError
	}
	defer func() {
		saveError := presenceCache.Save(cacheFilePath)
		if runError == nil {
			runError = saveError
		}
	}()

	service.dependencies.Logger.Info(auditStartMessageConstant,
		zap.String(auditRepositoryFieldNameConstant, options.RepositoryPath),
		zap.Int(auditRemoteCountFieldNameConstant, len(remotes)),
		zap.Int(auditPointerCountFieldNameConstant, len(pointers)),
	)

	remoteNames := make([]string, 0, len(remotes))
	for _, remote := range remotes {
		remoteNames = append(remoteNames, remote.Name)
	}
	report := NewMissingReferenceReport(remoteNames)

	checkedCount := 0
	interrupted := false

probeLoop:
	for _, pointer := range pointers {
		for _, remote := range remotes {
			if executionContext.Err() != nil {
				interrupted = true
				break probeLoop
			}
			if presenceCache.Contains(remote.Name, pointer.Oid) {
				continue
			}

			verificationStatus, verificationError := service.dependencies.Verifier.Verify(executionContext, remote, pointer)
			if verificationError != nil {
				notFoundError := EndpointNotFoundError{}
				if errors.As(verificationError, &notFoundError) {
					return verificationError
				}
				service.dependencies.Logger.Error(verificationFailedMessageConstant,
					zap.String(verificationRemoteFieldNameConstant, remote.Name),
					zap.String(verificationPointerFieldNameConstant, pointer.Name),
					zap.Error(verificationError),
				)
				return verificationError
			}

			if verificationStatus == VerificationPresent {
				presenceCache.Record(remote.Name, pointer.Oid)
				continue
			}

			if recordError := service.recordMissingPointer(executionContext, options.RepositoryPath, report, pointer, remote.Name); recordError != nil {
				return recordError
			}
		}

		checkedCount++
		if checkedCount%progressReportIntervalConstant == 0 {
			service.dependencies.Logger.Info(progressMessageConstant,
				zap.Int(progressCheckedFieldNameConstant, checkedCount),
				zap.Int(progressConfirmedFieldNameConstant, presenceCache.ConfirmedCount()),
				zap.Float64(progressPercentFieldNameConstant, float64(checkedCount)/float64(len(pointers))*100),
			)
		}
	}

	if interrupted {
		service.dependencies.Logger.Warn(auditInterruptedMessageConstant,
			zap.Int(progressCheckedFieldNameConstant, checkedCount),
		)
	}

	report.Print(service.dependencies.OutputWriter)
	return nil
}

func (service *Service) recordMissingPointer(executionContext context.Context, repositoryPath string, report *MissingReferenceReport, pointer Pointer, remoteName string) error {
	commits, commitsError := service.dependencies.CommitLocator.CommitsReferencing(executionContext, repositoryPath, pointer)
	if commitsError != nil {
		return commitsError
	}
	for _, commitIdentifier := range commits {
		commitSummary, summaryError := service.dependencies.CommitLocator.SummarizeCommit(executionContext, repositoryPath, commitIdentifier)
		if summaryError != nil {
			return summaryError
		}
		report.Record(commitSummary, pointer, remoteName)
	}
	return nil
}
