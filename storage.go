package listmeta

import (
	"context"
)

// Document is the page-level metadata sink a renderer reads the head from.
type Document interface {
	SetMetaData(key, value string, kind AttributeKind)
}

// RecordStore loads list records by id.
type RecordStore interface {
	GetList(ctx context.Context, id int64) (*ListRecord, error)
}

// ThumbnailStore resolves the relative thumbnail path mapped to a list.
// ok is false when no mapping exists.
type ThumbnailStore interface {
	ThumbnailPath(ctx context.Context, listID int64) (path string, ok bool, err error)
}

// AssetChecker reports whether a site-relative asset exists.
type AssetChecker interface {
	Exists(ctx context.Context, relPath string) (bool, error)
}

// MetadataAnnotator populates a document's social metadata when a list is displayed.
type MetadataAnnotator interface {
	// OnLoadData writes the tags for record into doc. It never fails: missing
	// data results in omitted tags.
	OnLoadData(ctx context.Context, record ListRecord, doc Document)

	CanView(view string) bool
}
