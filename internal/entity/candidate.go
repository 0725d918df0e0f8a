package entity

// FileSource identifies which Salesforce file representation a binary uses.
type FileSource string

const (
	// SourceAttachment is the legacy representation, tied one-to-one to a
	// single parent record.
	SourceAttachment FileSource = "Attachment"

	// SourceFile is the modern ContentDocument/ContentVersion representation,
	// linked to parent records via ContentDocumentLink rows.
	SourceFile FileSource = "File"
)

// KindDir returns the storage subdirectory for the source kind.
func (s FileSource) KindDir() string {
	if s == SourceAttachment {
		return "files_legacy"
	}
	return "files"
}

// CandidateRecord describes one remote binary scheduled for download.
// Candidates are built by the enumerator, consumed once by the downloader
// and never mutated.
type CandidateRecord struct {
	ObjectType    string
	RecordID      string // parent record id
	RecordName    string
	FileID        string
	FileLinkID    string // ContentDocumentId; set only for SourceFile
	FileName      string
	FileExtension string
	FileSource    FileSource
}
