package lfsaudit

import (
	"fmt"
	"io"
	"strings"
)

const (
	reportHeaderConstant               = "Missing large objects by commit:\n"
	reportEmptyConstant                = "All large objects verified present.\n"
	reportCommitTemplateConstant       = "%s\n"
	reportPointerTemplateConstant      = "\t%s %s\n"
	reportRemoteSuffixTemplateConstant = " [%s]"
	reportObjectIDsTemplateConstant    = "object_ids: %s\n"
	oidSeparatorConstant               = " "
)

type missingPointer struct {
	pointer        Pointer
	missingRemotes map[string]struct{}
}

type missingCommit struct {
	summary  string
	pointers []*missingPointer
	byOid    map[string]*missingPointer
}

// MissingReferenceReport accumulates unverified pointers keyed by the commits
// that reference them, preserving discovery order for deterministic output.
//
// Pointer identity is the content hash: two historical versions of the same
// file stay separate entries with separate missing-remote sets.
type MissingReferenceReport struct {
	remoteNames []string
	commitOrder []string
	commits     map[string]*missingCommit
}

// NewMissingReferenceReport constructs a report covering the given remotes.
func NewMissingReferenceReport(remoteNames []string) *MissingReferenceReport {
	return &MissingReferenceReport{
		remoteNames: remoteNames,
		commits:     map[string]*missingCommit{},
	}
}

// Record notes that the pointer referenced by the commit could not be verified
// on the named remote.
func (report *MissingReferenceReport) Record(commitSummary string, pointer Pointer, remoteName string) {
	commitEntry, commitKnown := report.commits[commitSummary]
	if !commitKnown {
		commitEntry = &missingCommit{summary: commitSummary, byOid: map[string]*missingPointer{}}
		report.commits[commitSummary] = commitEntry
		report.commitOrder = append(report.commitOrder, commitSummary)
	}

	pointerEntry, pointerKnown := commitEntry.byOid[pointer.Oid]
	if !pointerKnown {
		pointerEntry = &missingPointer{pointer: pointer, missingRemotes: map[string]struct{}{}}
		commitEntry.byOid[pointer.Oid] = pointerEntry
		commitEntry.pointers = append(commitEntry.pointers, pointerEntry)
	}

	pointerEntry.missingRemotes[remoteName] = struct{}{}
}

// Empty reports whether no missing references were recorded.
func (report *MissingReferenceReport) Empty() bool {
	return len(report.commitOrder) == 0
}

// Print writes the report. Remote names annotate an entry only when its hash
// is missing from a strict subset of the remotes; each commit closes with a
// space-joined list of every affected hash.
func (report *MissingReferenceReport) Print(outputWriter io.Writer) {
	if report.Empty() {
		fmt.Fprint(outputWriter, reportEmptyConstant)
		return
	}

	fmt.Fprint(outputWriter, reportHeaderConstant)
	for _, commitSummary := range report.commitOrder {
		commitEntry := report.commits[commitSummary]
		fmt.Fprintf(outputWriter, reportCommitTemplateConstant, commitEntry.summary)

		affectedHashes := make([]string, 0, len(commitEntry.pointers))
		for _, pointerEntry := range commitEntry.pointers {
			pointerLabel := pointerEntry.pointer.Name
			if len(pointerEntry.missingRemotes) < len(report.remoteNames) {
				pointerLabel += fmt.Sprintf(reportRemoteSuffixTemplateConstant, strings.Join(sortedRemoteNames(report.remoteNames, pointerEntry.missingRemotes), oidSeparatorConstant))
			}
			fmt.Fprintf(outputWriter, reportPointerTemplateConstant, pointerLabel, pointerEntry.pointer.Oid)
			affectedHashes = append(affectedHashes, pointerEntry.pointer.Oid)
		}

		fmt.Fprintf(outputWriter, reportObjectIDsTemplateConstant, strings.Join(affectedHashes, oidSeparatorConstant))
	}
}

func sortedRemoteNames(orderedNames []string, selected map[string]struct{}) []string {
	var names []string
	for _, remoteName := range orderedNames {
		if _, isSelected := selected[remoteName]; isSelected {
			names = append(names, remoteName)
		}
	}
	return names
}
