package entity

// DownloadOutcome records the result of downloading one candidate.
// Exactly one outcome exists per candidate. Either the download succeeded
// and LocalPath, ContentHash and ByteCount are all set, or it failed and
// Error is set while the other three stay zero.
type DownloadOutcome struct {
	Candidate   CandidateRecord
	LocalPath   string
	ContentHash string
	ByteCount   int64
	Error       string
}

// Failed reports whether the download failed.
func (o DownloadOutcome) Failed() bool {
	return o.Error != ""
}

// LinkAssociation expresses that a content document is linked to a parent
// record, with sharing metadata. Produced only for SourceFile candidates and
// written independently of download success.
type LinkAssociation struct {
	ContentID      string
	LinkedEntityID string
	ShareType      string
	Visibility     string
}

// MasterIndexEntry is one row of the externally maintained master documents
// index, the consolidated cross-kind view of which files have been localized.
// An empty LocalPath marks the file as still missing.
type MasterIndexEntry struct {
	RecordID      string
	ObjectType    string
	FileID        string
	FileName      string
	FileExtension string
	FileSource    FileSource
	LocalPath     string
}
