// Package shared defines the collaborator interfaces and default resolvers
// common to the batch runners and the LFS auditor.
package shared
