package salesforce

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/ksteptoe/sfdump-sub001/internal/entity"
)

// linkChunkSize is how many document ids fit in one SOQL IN(...) list.
const linkChunkSize = 200

// Enumerator lists download candidates from the API, grouped by file-source
// kind. Repeated enumeration with identical inputs yields identical ordering,
// which the partitioner depends on.
type Enumerator struct {
	client   *Client
	prefixes PrefixMap
	order    string // "", "asc" or "desc" by file id
	log      *slog.Logger
}

// NewEnumerator creates an enumerator. prefixes maps 3-character record-id
// prefixes to object type names and may be nil. order is "", "asc" or "desc".
func NewEnumerator(client *Client, prefixes PrefixMap, order string, log *slog.Logger) *Enumerator {
	if log == nil {
		log = slog.Default()
	}
	return &Enumerator{client: client, prefixes: prefixes, order: strings.ToLower(order), log: log}
}

// ContentFiles enumerates modern files (latest ContentVersion per document).
// where is an optional SOQL filter appended to the query.
func (e *Enumerator) ContentFiles(ctx context.Context, where string) ([]entity.CandidateRecord, error) {
	soql := "SELECT Id, ContentDocumentId, Title, FileType, ContentSize, VersionNumber FROM ContentVersion WHERE IsLatest = true"
	if where != "" {
		soql += " AND (" + where + ")"
	}

	rows, err := e.client.QueryAll(ctx, soql)
	if err != nil {
		return nil, fmt.Errorf("enumerate content versions: %w", err)
	}
	e.log.Info("enumerated content versions", "count", len(rows))

	candidates := make([]entity.CandidateRecord, 0, len(rows))
	for _, r := range rows {
		candidates = append(candidates, entity.CandidateRecord{
			FileID:        str(r["Id"]),
			FileLinkID:    str(r["ContentDocumentId"]),
			FileName:      str(r["Title"]),
			FileExtension: strings.ToLower(str(r["FileType"])),
			FileSource:    entity.SourceFile,
		})
	}
	e.sortCandidates(candidates)
	return candidates, nil
}

// Attachments enumerates legacy attachments. The parent record id doubles as
// the object-type discriminator via its 3-character prefix.
func (e *Enumerator) Attachments(ctx context.Context, where string) ([]entity.CandidateRecord, error) {
	soql := "SELECT Id, ParentId, Name, BodyLength, ContentType FROM Attachment"
	if where != "" {
		soql += " WHERE " + where
	}

	rows, err := e.client.QueryAll(ctx, soql)
	if err != nil {
		return nil, fmt.Errorf("enumerate attachments: %w", err)
	}
	e.log.Info("enumerated attachments", "count", len(rows))

	candidates := make([]entity.CandidateRecord, 0, len(rows))
	for _, r := range rows {
		parent := str(r["ParentId"])
		candidates = append(candidates, entity.CandidateRecord{
			ObjectType: e.prefixes.ObjectType(parent),
			RecordID:   parent,
			FileID:     str(r["Id"]),
			FileName:   str(r["Name"]),
			FileSource: entity.SourceAttachment,
		})
	}
	e.sortCandidates(candidates)
	return candidates, nil
}

// Links fetches the link associations for the given content document ids,
// querying in chunks to stay within SOQL length limits.
func (e *Enumerator) Links(ctx context.Context, docIDs []string) ([]entity.LinkAssociation, error) {
	var links []entity.LinkAssociation

	for start := 0; start < len(docIDs); start += linkChunkSize {
		end := start + linkChunkSize
		if end > len(docIDs) {
			end = len(docIDs)
		}

		soql := "SELECT ContentDocumentId, LinkedEntityId, ShareType, Visibility " +
			"FROM ContentDocumentLink WHERE ContentDocumentId IN (" + quoteIDs(docIDs[start:end]) + ")"

		rows, err := e.client.QueryAll(ctx, soql)
		if err != nil {
			return nil, fmt.Errorf("enumerate document links: %w", err)
		}
		for _, r := range rows {
			links = append(links, entity.LinkAssociation{
				ContentID:      str(r["ContentDocumentId"]),
				LinkedEntityID: str(r["LinkedEntityId"]),
				ShareType:      str(r["ShareType"]),
				Visibility:     str(r["Visibility"]),
			})
		}
	}

	return links, nil
}

// Estimate holds a no-download size estimate for one kind.
type Estimate struct {
	Count      int
	TotalBytes int64
}

// EstimateContentFiles sums ContentSize over the latest content versions.
func (e *Enumerator) EstimateContentFiles(ctx context.Context, where string) (Estimate, error) {
	soql := "SELECT Id, ContentSize FROM ContentVersion WHERE IsLatest = true"
	if where != "" {
		soql += " AND (" + where + ")"
	}
	return e.estimate(ctx, soql, "ContentSize")
}

// EstimateAttachments sums BodyLength over legacy attachments.
func (e *Enumerator) EstimateAttachments(ctx context.Context, where string) (Estimate, error) {
	soql := "SELECT Id, BodyLength FROM Attachment"
	if where != "" {
		soql += " WHERE " + where
	}
	return e.estimate(ctx, soql, "BodyLength")
}

func (e *Enumerator) estimate(ctx context.Context, soql, sizeField string) (Estimate, error) {
	rows, err := e.client.QueryAll(ctx, soql)
	if err != nil {
		return Estimate{}, fmt.Errorf("estimate: %w", err)
	}

	est := Estimate{Count: len(rows)}
	for _, r := range rows {
		if size, ok := r[sizeField].(float64); ok {
			est.TotalBytes += int64(size)
		}
	}
	return est, nil
}

// sortCandidates applies the configured id ordering, if any.
func (e *Enumerator) sortCandidates(candidates []entity.CandidateRecord) {
	switch e.order {
	case "asc":
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].FileID < candidates[j].FileID
		})
	case "desc":
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].FileID > candidates[j].FileID
		})
	}
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
