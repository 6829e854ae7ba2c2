package lfsaudit

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

const (
	cacheReadErrorTemplateConstant    = "failed to read presence cache: %w"
	cacheParseErrorTemplateConstant   = "failed to parse presence cache: %w"
	cacheWriteErrorTemplateConstant   = "failed to write presence cache: %w"
	cacheFilePermissionsConstant      = 0o644
	cacheDirectoryPermissionsConstant = 0o755
)

// PresenceCache records which object hashes are confirmed present on which remotes.
//
// A hash recorded for a remote must never be probed again for that remote.
type PresenceCache struct {
	confirmedHashes map[string]map[string]struct{}
}

// NewPresenceCache constructs an empty cache.
func NewPresenceCache() *PresenceCache {
	return &PresenceCache{confirmedHashes: map[string]map[string]struct{}{}}
}

// LoadPresenceCache reads a cache file, returning an empty cache when the file does not exist.
func LoadPresenceCache(cacheFilePath string) (*PresenceCache, error) {
	cache := NewPresenceCache()

	cacheContent, readError := os.ReadFile(cacheFilePath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return cache, nil
		}
		return nil, fmt.Errorf(cacheReadErrorTemplateConstant, readError)
	}

	var persistedHashes map[string][]string
	if unmarshalError := json.Unmarshal(cacheContent, &persistedHashes); unmarshalError != nil {
		return nil, fmt.Errorf(cacheParseErrorTemplateConstant, unmarshalError)
	}

	for remoteName, objectHashes := range persistedHashes {
		for _, objectHash := range objectHashes {
			cache.Record(remoteName, objectHash)
		}
	}
	return cache, nil
}

// Contains reports whether the hash is confirmed present on the named remote.
func (cache *PresenceCache) Contains(remoteName string, objectHash string) bool {
	remoteHashes, remoteExists := cache.confirmedHashes[remoteName]
	if !remoteExists {
		return false
	}
	_, hashExists := remoteHashes[objectHash]
	return hashExists
}

// Record marks the hash as confirmed present on the named remote.
func (cache *PresenceCache) Record(remoteName string, objectHash string) {
	remoteHashes, remoteExists := cache.confirmedHashes[remoteName]
	if !remoteExists {
		remoteHashes = map[string]struct{}{}
		cache.confirmedHashes[remoteName] = remoteHashes
	}
	remoteHashes[objectHash] = struct{}{}
}

// ConfirmedCount returns the total number of confirmed remote/hash pairs.
func (cache *PresenceCache) ConfirmedCount() int {
	totalConfirmed := 0
	for _, remoteHashes := range cache.confirmedHashes {
		totalConfirmed += len(remoteHashes)
	}
	return totalConfirmed
}

// Save rewrites the cache file in full, creating the parent directory when needed.
func (cache *PresenceCache) Save(cacheFilePath string) error {
	persistedHashes := make(map[string][]string, len(cache.confirmedHashes))
	for remoteName, remoteHashes := range cache.confirmedHashes {
		sortedHashes := make([]string, 0, len(remoteHashes))
		for objectHash := range remoteHashes {
			sortedHashes = append(sortedHashes, objectHash)
		}
		sort.Strings(sortedHashes)
		persistedHashes[remoteName] = sortedHashes
	}

	serializedCache, marshalError := json.Marshal(persistedHashes)
	if marshalError != nil {
		return fmt.Errorf(cacheWriteErrorTemplateConstant, marshalError)
	}

	if mkdirError := os.MkdirAll(filepath.Dir(cacheFilePath), cacheDirectoryPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(cacheWriteErrorTemplateConstant, mkdirError)
	}
	if writeError := os.WriteFile(cacheFilePath, serializedCache, cacheFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(cacheWriteErrorTemplateConstant, writeError)
	}
	return nil
}
