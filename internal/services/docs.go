// Google Docs document writer
package services

import (
	"context"
	"fmt"

	"github.com/desertthunder/taskdoc/internal/shared"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/option"
)

// DocsService overwrites the body text of Google Docs.
type DocsService struct {
	opts []option.ClientOption
}

// NewDocsService creates a document writer. Extra options are applied after the credential client.
func NewDocsService(opts ...option.ClientOption) *DocsService {
	return &DocsService{opts: opts}
}

// Overwrite replaces the visible content of docID with content.
//
// Existing text is deleted only when there is some, so an empty document never
// receives a zero-length delete. Writing the same content twice leaves the same
// document. Failures wrap [shared.ErrWriteFailed] and are not retried.
func (d *DocsService) Overwrite(ctx context.Context, creds *Credentials, docID, content string) error {
	opts := append([]option.ClientOption{option.WithHTTPClient(creds.HTTPClient())}, d.opts...)
	srv, err := docs.NewService(ctx, opts...)
	if err != nil {
		return fmt.Errorf("%w: failed to create docs client: %v", shared.ErrWriteFailed, err)
	}

	doc, err := srv.Documents.Get(docID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: get %s: %s", shared.ErrWriteFailed, docID, describe(err))
	}

	requests := OverwriteRequests(EndIndex(doc), content)
	if len(requests) == 0 {
		return nil
	}

	_, err = srv.Documents.BatchUpdate(docID, &docs.BatchUpdateDocumentRequest{Requests: requests}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: batchUpdate %s: %s", shared.ErrWriteFailed, docID, describe(err))
	}
	return nil
}

// EndIndex returns the end index of the document body, 1 when the body has no elements.
func EndIndex(doc *docs.Document) int64 {
	if doc == nil || doc.Body == nil || len(doc.Body.Content) == 0 {
		return 1
	}
	last := doc.Body.Content[len(doc.Body.Content)-1]
	if last == nil || last.EndIndex < 1 {
		return 1
	}
	return last.EndIndex
}

// OverwriteRequests builds the batch that turns a body ending at endIndex into content.
//
// The body always ends with a newline the API will not delete, so the text span is
// [1, endIndex-1). It is deleted only when non-empty.
func OverwriteRequests(endIndex int64, content string) []*docs.Request {
	var requests []*docs.Request

	if endIndex-1 > 1 {
		requests = append(requests, &docs.Request{
			DeleteContentRange: &docs.DeleteContentRangeRequest{
				Range: &docs.Range{StartIndex: 1, EndIndex: endIndex - 1},
			},
		})
	}

	if content != "" {
		requests = append(requests, &docs.Request{
			InsertText: &docs.InsertTextRequest{
				Location: &docs.Location{Index: 1},
				Text:     content,
			},
		})
	}

	return requests
}
