package discovery_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/allgit/internal/discovery"
)

const (
	gitDirectoryNameConstant        = ".git"
	firstRepositoryNameConstant     = "alpha"
	secondRepositoryNameConstant    = "beta"
	nestedRepositoryParentConstant  = "alpha"
	nestedRepositoryNameConstant    = "vendored"
	unrelatedDirectoryNameConstant  = "notes"
	gitFileWorktreeContentConstant  = "gitdir: /elsewhere\n"
	gitFileRepositoryNameConstant   = "linked"
	deepRepositoryIntermediateConst = "projects"
)

func createGitDirectory(testInstance *testing.T, repositoryPath string) {
	testInstance.Helper()
	require.NoError(testInstance, os.MkdirAll(filepath.Join(repositoryPath, gitDirectoryNameConstant), 0o755))
}

func TestDiscoverRepositoriesFindsNestedCheckouts(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()
	createGitDirectory(testInstance, filepath.Join(rootDirectory, firstRepositoryNameConstant))
	createGitDirectory(testInstance, filepath.Join(rootDirectory, deepRepositoryIntermediateConst, secondRepositoryNameConstant))
	createGitDirectory(testInstance, filepath.Join(rootDirectory, nestedRepositoryParentConstant, nestedRepositoryNameConstant))
	require.NoError(testInstance, os.MkdirAll(filepath.Join(rootDirectory, unrelatedDirectoryNameConstant), 0o755))

	discoverer := discovery.NewFilesystemRepositoryDiscoverer()
	repositories, discoveryError := discoverer.DiscoverRepositories(rootDirectory)
	require.NoError(testInstance, discoveryError)

	expectedRepositories := []string{
		firstRepositoryNameConstant,
		filepath.Join(nestedRepositoryParentConstant, nestedRepositoryNameConstant),
		filepath.Join(deepRepositoryIntermediateConst, secondRepositoryNameConstant),
	}
	require.ElementsMatch(testInstance, expectedRepositories, repositories)
}

func TestDiscoverRepositoriesReportsQualifyingRootAbsolutely(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()
	createGitDirectory(testInstance, rootDirectory)
	createGitDirectory(testInstance, filepath.Join(rootDirectory, firstRepositoryNameConstant))

	discoverer := discovery.NewFilesystemRepositoryDiscoverer()
	repositories, discoveryError := discoverer.DiscoverRepositories(rootDirectory)
	require.NoError(testInstance, discoveryError)
	require.Len(testInstance, repositories, 2)

	absoluteRoot, absoluteError := filepath.Abs(rootDirectory)
	require.NoError(testInstance, absoluteError)
	require.Contains(testInstance, repositories, absoluteRoot)
	require.Contains(testInstance, repositories, firstRepositoryNameConstant)
}

func TestDiscoverRepositoriesAcceptsGitFileWorktrees(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()
	linkedRepositoryPath := filepath.Join(rootDirectory, gitFileRepositoryNameConstant)
	require.NoError(testInstance, os.MkdirAll(linkedRepositoryPath, 0o755))
	require.NoError(testInstance, os.WriteFile(filepath.Join(linkedRepositoryPath, gitDirectoryNameConstant), []byte(gitFileWorktreeContentConstant), 0o644))

	discoverer := discovery.NewFilesystemRepositoryDiscoverer()
	repositories, discoveryError := discoverer.DiscoverRepositories(rootDirectory)
	require.NoError(testInstance, discoveryError)
	require.Equal(testInstance, []string{gitFileRepositoryNameConstant}, repositories)
}

func TestDiscoverRepositoriesReturnsSortedUniqueEntries(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()
	createGitDirectory(testInstance, filepath.Join(rootDirectory, secondRepositoryNameConstant))
	createGitDirectory(testInstance, filepath.Join(rootDirectory, firstRepositoryNameConstant))

	discoverer := discovery.NewFilesystemRepositoryDiscoverer()
	repositories, discoveryError := discoverer.DiscoverRepositories(rootDirectory)
	require.NoError(testInstance, discoveryError)
	require.Equal(testInstance, []string{firstRepositoryNameConstant, secondRepositoryNameConstant}, repositories)
}
