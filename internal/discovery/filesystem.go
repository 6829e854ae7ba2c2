package discovery

import (
	"io/fs"
	"path/filepath"
	"sort"
)

const gitMetadataDirectoryNameConstant = ".git"

// FilesystemRepositoryDiscoverer locates git repositories on disk.
type FilesystemRepositoryDiscoverer struct{}

// NewFilesystemRepositoryDiscoverer constructs a repository discoverer backed by filepath.WalkDir.
func NewFilesystemRepositoryDiscoverer() *FilesystemRepositoryDiscoverer {
	return &FilesystemRepositoryDiscoverer{}
}

// DiscoverRepositories walks the provided root and returns one entry per directory containing a .git entry.
//
// The root itself is reported as an absolute path when it qualifies; nested
// matches are reported relative to the root. Results are sorted so callers see
// deterministic enumeration, but no further ordering is part of the contract.
func (discoverer *FilesystemRepositoryDiscoverer) DiscoverRepositories(root string) ([]string, error) {
	seen := make(map[string]struct{})
	var repositories []string

	walkError := filepath.WalkDir(root, func(path string, directoryEntry fs.DirEntry, entryError error) error {
		if entryError != nil {
			return entryError
		}

		if directoryEntry.Name() != gitMetadataDirectoryNameConstant {
			return nil
		}

		repositoryPath := filepath.Dir(path)
		if _, alreadySeen := seen[repositoryPath]; alreadySeen {
			if directoryEntry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		seen[repositoryPath] = struct{}{}

		reportedPath, conversionError := discoverer.reportablePath(root, repositoryPath)
		if conversionError != nil {
			return conversionError
		}
		repositories = append(repositories, reportedPath)

		if directoryEntry.IsDir() {
			return fs.SkipDir
		}
		return nil
	})
	if walkError != nil {
		return nil, walkError
	}

	sort.Strings(repositories)
	return repositories, nil
}

func (discoverer *FilesystemRepositoryDiscoverer) reportablePath(root string, repositoryPath string) (string, error) {
	if filepath.Clean(repositoryPath) == filepath.Clean(root) {
		return filepath.Abs(repositoryPath)
	}
	return filepath.Rel(root, repositoryPath)
}
