package lfsaudit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/temirov/allgit/internal/execshell"
	"github.com/temirov/allgit/internal/shared"
)

const (
	lsFilesCacheFileNameConstant        = "ls-files.json"
	gitLFSSubcommandConstant            = "lfs"
	gitLFSListSubcommandConstant        = "ls-files"
	gitLFSListAllFlagConstant           = "--all"
	gitLFSListJSONFlagConstant          = "--json"
	pointerListingErrorTemplateConstant = "failed to list large file pointers: %w"
	pointerParseErrorTemplateConstant   = "failed to parse large file pointer listing: %w"
	listingCacheReadTemplateConstant    = "failed to read pointer listing cache: %w"
	listingCacheWriteTemplateConstant   = "failed to write pointer listing cache: %w"
)

type pointerListing struct {
	Files []Pointer `json:"files"`
}

// PointerLister enumerates every large file pointer tracked across a repository's history.
//
// The raw listing is cached on disk so repeated audit runs skip the expensive
// full-history walk.
type PointerLister struct {
	executor       shared.GitExecutor
	cacheDirectory string
}

// NewPointerLister constructs a lister that caches raw listings under the cache directory.
func NewPointerLister(executor shared.GitExecutor, cacheDirectory string) *PointerLister {
	return &PointerLister{executor: executor, cacheDirectory: cacheDirectory}
}

// ListPointers returns all pointers tracked by the repository, reusing the cached listing when present.
func (lister *PointerLister) ListPointers(executionContext context.Context, repositoryPath string) ([]Pointer, error) {
	rawListing, listingError := lister.rawListing(executionContext, repositoryPath)
	if listingError != nil {
		return nil, listingError
	}

	var parsedListing pointerListing
	if unmarshalError := json.Unmarshal(rawListing, &parsedListing); unmarshalError != nil {
		return nil, fmt.Errorf(pointerParseErrorTemplateConstant, unmarshalError)
	}
	return parsedListing.Files, nil
}

func (lister *PointerLister) rawListing(executionContext context.Context, repositoryPath string) ([]byte, error) {
	cacheFilePath := filepath.Join(lister.cacheDirectory, lsFilesCacheFileNameConstant)

	cachedListing, readError := os.ReadFile(cacheFilePath)
	if readError == nil {
		return cachedListing, nil
	}
	if !errors.Is(readError, fs.ErrNotExist) {
		return nil, fmt.Errorf(listingCacheReadTemplateConstant, readError)
	}

	executionResult, executionError := lister.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitLFSSubcommandConstant, gitLFSListSubcommandConstant, gitLFSListAllFlagConstant, gitLFSListJSONFlagConstant},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return nil, fmt.Errorf(pointerListingErrorTemplateConstant, executionError)
	}

	rawListing := []byte(executionResult.StandardOutput)
	if mkdirError := os.MkdirAll(lister.cacheDirectory, cacheDirectoryPermissionsConstant); mkdirError != nil {
		return nil, fmt.Errorf(listingCacheWriteTemplateConstant, mkdirError)
	}
	if writeError := os.WriteFile(cacheFilePath, rawListing, cacheFilePermissionsConstant); writeError != nil {
		return nil, fmt.Errorf(listingCacheWriteTemplateConstant, writeError)
	}
	return rawListing, nil
}
