package salesforce

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ksteptoe/sfdump-sub001/internal/entity"
)

// CandidateFetcher adapts Client to the download executor's Fetcher
// interface, building the REST blob path for each candidate kind.
type CandidateFetcher struct {
	Client *Client
}

// Open streams the remote binary for a candidate. ContentDocument ids are
// resolved to their latest published version first; everything else maps
// directly to the sobject binary field.
func (f *CandidateFetcher) Open(ctx context.Context, c entity.CandidateRecord) (io.ReadCloser, error) {
	switch c.FileSource {
	case entity.SourceAttachment:
		return f.Client.Fetch(ctx, f.Client.sobjectBlobPath("Attachment", c.FileID, "Body"))
	case entity.SourceFile:
		id := c.FileID
		if strings.HasPrefix(id, ContentDocumentPrefix) {
			versionID, err := f.Client.LatestVersionID(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("resolve ContentDocument %s: %w", id, err)
			}
			id = versionID
		}
		return f.Client.Fetch(ctx, f.Client.sobjectBlobPath("ContentVersion", id, "VersionData"))
	default:
		return nil, fmt.Errorf("unknown file source %q", c.FileSource)
	}
}
