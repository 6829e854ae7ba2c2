package lfsaudit_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/allgit/internal/execshell"
	"github.com/temirov/allgit/internal/lfsaudit"
)

const (
	testRepositoryPathConstant = "/tmp/audited"
	testListingContentConstant = `{"files":[{"name":"assets/big.bin","oid_type":"sha256","oid":"abc123","size":4}]}`
)

type scriptedGitResponse struct {
	standardOutput string
	exitCode       int
	err            error
}

type scriptedGitExecutor struct {
	responses map[string]scriptedGitResponse
	calls     []string
}

func newScriptedGitExecutor() *scriptedGitExecutor {
	return &scriptedGitExecutor{responses: map[string]scriptedGitResponse{}}
}

func (executor *scriptedGitExecutor) respond(arguments string, response scriptedGitResponse) {
	executor.responses[arguments] = response
}

func (executor *scriptedGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	argumentKey := strings.Join(details.Arguments, " ")
	executor.calls = append(executor.calls, argumentKey)

	response, scripted := executor.responses[argumentKey]
	if !scripted {
		return execshell.ExecutionResult{}, fmt.Errorf("unexpected git invocation: %s", argumentKey)
	}
	if response.err != nil {
		return execshell.ExecutionResult{}, response.err
	}
	result := execshell.ExecutionResult{StandardOutput: response.standardOutput, ExitCode: response.exitCode}
	if response.exitCode != 0 {
		return result, execshell.CommandFailedError{
			Command: execshell.ShellCommand{Name: execshell.CommandGit, Details: details},
			Result:  result,
		}
	}
	return result, nil
}

func (executor *scriptedGitExecutor) callCount(arguments string) int {
	matched := 0
	for _, call := range executor.calls {
		if call == arguments {
			matched++
		}
	}
	return matched
}

func TestPointerListerParsesFreshListingAndWritesCache(testInstance *testing.T) {
	cacheDirectory := filepath.Join(testInstance.TempDir(), "cache")
	executor := newScriptedGitExecutor()
	executor.respond("lfs ls-files --all --json", scriptedGitResponse{standardOutput: testListingContentConstant})

	lister := lfsaudit.NewPointerLister(executor, cacheDirectory)
	pointers, listError := lister.ListPointers(context.Background(), testRepositoryPathConstant)

	require.NoError(testInstance, listError)
	require.Len(testInstance, pointers, 1)
	require.Equal(testInstance, "assets/big.bin", pointers[0].Name)
	require.Equal(testInstance, "abc123", pointers[0].Oid)
	require.Equal(testInstance, int64(4), pointers[0].Size)

	cachedListing, readError := os.ReadFile(filepath.Join(cacheDirectory, "ls-files.json"))
	require.NoError(testInstance, readError)
	require.Equal(testInstance, testListingContentConstant, string(cachedListing))
}

func TestPointerListerPrefersCachedListing(testInstance *testing.T) {
	cacheDirectory := testInstance.TempDir()
	require.NoError(testInstance, os.WriteFile(filepath.Join(cacheDirectory, "ls-files.json"), []byte(testListingContentConstant), 0o644))
	executor := newScriptedGitExecutor()

	lister := lfsaudit.NewPointerLister(executor, cacheDirectory)
	pointers, listError := lister.ListPointers(context.Background(), testRepositoryPathConstant)

	require.NoError(testInstance, listError)
	require.Len(testInstance, pointers, 1)
	require.Empty(testInstance, executor.calls)
}

func TestRemoteResolverNormalizesURLsAndAttachesCredentials(testInstance *testing.T) {
	executor := newScriptedGitExecutor()
	executor.respond("remote", scriptedGitResponse{standardOutput: "origin\nbackup\n"})
	executor.respond("remote get-url origin", scriptedGitResponse{standardOutput: "https://example.com/repo\n"})
	executor.respond("remote get-url backup", scriptedGitResponse{standardOutput: "https://mirror.example.com/repo.git\n"})
	executor.respond("credential fill", scriptedGitResponse{standardOutput: "username=auditor\npassword=secret\n"})

	resolver := lfsaudit.NewRemoteResolver(executor, lfsaudit.NewGitCredentialHelper(executor))
	remotes, listError := resolver.ListRemotes(context.Background(), testRepositoryPathConstant)

	require.NoError(testInstance, listError)
	require.Len(testInstance, remotes, 2)
	require.Equal(testInstance, "origin", remotes[0].Name)
	require.Equal(testInstance, "https://example.com/repo.git", remotes[0].URL)
	require.NotNil(testInstance, remotes[0].Credential)
	require.Equal(testInstance, "auditor", remotes[0].Credential.Username)
	require.Equal(testInstance, "secret", remotes[0].Credential.Password)
	require.Equal(testInstance, "https://mirror.example.com/repo.git", remotes[1].URL)
}

func TestGitCredentialHelperReturnsNilWithoutCompletePair(testInstance *testing.T) {
	executor := newScriptedGitExecutor()
	executor.respond("credential fill", scriptedGitResponse{standardOutput: "username=auditor\n"})

	helper := lfsaudit.NewGitCredentialHelper(executor)
	credential, resolveError := helper.Resolve(context.Background(), "https://example.com/repo.git")

	require.NoError(testInstance, resolveError)
	require.Nil(testInstance, credential)
}

func TestCommitLocatorFindsReferencingCommits(testInstance *testing.T) {
	pointer := lfsaudit.Pointer{Name: "assets/big.bin", OidType: "sha256", Oid: "abc123", Size: 4}
	executor := newScriptedGitExecutor()
	executor.respond("rev-list --all -- assets/big.bin", scriptedGitResponse{standardOutput: "commit1\ncommit2\n"})
	executor.respond("grep --text --fixed-strings oid sha256:abc123 commit1 commit2 -- assets/big.bin", scriptedGitResponse{
		standardOutput: "commit1:assets/big.bin:oid sha256:abc123\n",
	})

	locator := lfsaudit.NewCommitLocator(executor)
	commits, locateError := locator.CommitsReferencing(context.Background(), testRepositoryPathConstant, pointer)

	require.NoError(testInstance, locateError)
	require.Equal(testInstance, []string{"commit1"}, commits)
}

func TestCommitLocatorTreatsGrepExitOneAsNoMatches(testInstance *testing.T) {
	pointer := lfsaudit.Pointer{Name: "assets/big.bin", OidType: "sha256", Oid: "abc123", Size: 4}
	executor := newScriptedGitExecutor()
	executor.respond("rev-list --all -- assets/big.bin", scriptedGitResponse{standardOutput: "commit1\n"})
	executor.respond("grep --text --fixed-strings oid sha256:abc123 commit1 -- assets/big.bin", scriptedGitResponse{exitCode: 1})

	locator := lfsaudit.NewCommitLocator(executor)
	commits, locateError := locator.CommitsReferencing(context.Background(), testRepositoryPathConstant, pointer)

	require.NoError(testInstance, locateError)
	require.Empty(testInstance, commits)
}

func TestCommitLocatorMemoizesRevisionListings(testInstance *testing.T) {
	firstVersion := lfsaudit.Pointer{Name: "assets/big.bin", OidType: "sha256", Oid: "abc123", Size: 4}
	secondVersion := lfsaudit.Pointer{Name: "assets/big.bin", OidType: "sha256", Oid: "def456", Size: 8}
	executor := newScriptedGitExecutor()
	executor.respond("rev-list --all -- assets/big.bin", scriptedGitResponse{standardOutput: "commit1\n"})
	executor.respond("grep --text --fixed-strings oid sha256:abc123 commit1 -- assets/big.bin", scriptedGitResponse{exitCode: 1})
	executor.respond("grep --text --fixed-strings oid sha256:def456 commit1 -- assets/big.bin", scriptedGitResponse{exitCode: 1})

	locator := lfsaudit.NewCommitLocator(executor)
	_, firstError := locator.CommitsReferencing(context.Background(), testRepositoryPathConstant, firstVersion)
	_, secondError := locator.CommitsReferencing(context.Background(), testRepositoryPathConstant, secondVersion)

	require.NoError(testInstance, firstError)
	require.NoError(testInstance, secondError)
	require.Equal(testInstance, 1, executor.callCount("rev-list --all -- assets/big.bin"))
}

func TestCommitLocatorSkipsGrepWhenNothingTouchedThePath(testInstance *testing.T) {
	pointer := lfsaudit.Pointer{Name: "assets/big.bin", OidType: "sha256", Oid: "abc123", Size: 4}
	executor := newScriptedGitExecutor()
	executor.respond("rev-list --all -- assets/big.bin", scriptedGitResponse{standardOutput: ""})

	locator := lfsaudit.NewCommitLocator(executor)
	commits, locateError := locator.CommitsReferencing(context.Background(), testRepositoryPathConstant, pointer)

	require.NoError(testInstance, locateError)
	require.Empty(testInstance, commits)
	require.Len(testInstance, executor.calls, 1)
}
