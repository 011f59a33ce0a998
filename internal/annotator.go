package internal

import (
	"context"
	"errors"

	"github.com/lychee-technology/listmeta"
	"go.uber.org/zap"
)

// ImageOutcome classifies how image resolution ended for one annotation.
type ImageOutcome string

const (
	ImageResolved    ImageOutcome = "resolved"
	ImageNoID        ImageOutcome = "no_id"
	ImageNoRow       ImageOutcome = "no_row"
	ImageMissingFile ImageOutcome = "missing_file"
	ImageLookupError ImageOutcome = "lookup_error"
)

// Annotator writes Open Graph, Twitter card and generic meta tags for a list.
// It holds no per-request state and is safe for concurrent use.
type Annotator struct {
	thumbnails listmeta.ThumbnailStore
	assets     listmeta.AssetChecker
	siteRoot   string
	cfg        listmeta.AnnotatorConfig
}

var _ listmeta.MetadataAnnotator = (*Annotator)(nil)

// NewAnnotator creates an annotator. siteRootURL is the public site root that
// thumbnail paths are appended to.
func NewAnnotator(thumbnails listmeta.ThumbnailStore, assets listmeta.AssetChecker, siteRootURL string, cfg listmeta.AnnotatorConfig) *Annotator {
	if cfg.OGType == "" {
		cfg.OGType = listmeta.DefaultOGType
	}
	if cfg.TwitterCard == "" {
		cfg.TwitterCard = listmeta.DefaultTwitterCard
	}
	return &Annotator{
		thumbnails: thumbnails,
		assets:     assets,
		siteRoot:   NormalizeSiteRoot(siteRootURL),
		cfg:        cfg,
	}
}

// CanView always allows the metadata to be shown.
func (a *Annotator) CanView(view string) bool {
	return true
}

// OnLoadData writes the tags for record into doc.
func (a *Annotator) OnLoadData(ctx context.Context, record listmeta.ListRecord, doc listmeta.Document) {
	title := record.Label
	description := record.Introduction
	if a.cfg.StripMarkup {
		title = StripMarkup(title)
		description = StripMarkup(description)
	}

	image, outcome := a.ResolveImage(ctx, record.ID)
	EmitImageOutcome(ctx, outcome)

	a.setOgTags(doc, title, description, image)
	a.setTwitterTags(doc, title, description, image)
	if a.cfg.EmitGenericTags {
		a.setTags(doc, title, description, image)
	}

	zap.S().Debugw("list metadata annotated", "list_id", record.ID, "image_outcome", outcome)
}

// ResolveImage returns the absolute thumbnail URL for listID. The returned
// string is empty unless the outcome is ImageResolved.
func (a *Annotator) ResolveImage(ctx context.Context, listID int64) (string, ImageOutcome) {
	if listID == 0 {
		return "", ImageNoID
	}

	if a.thumbnails == nil {
		return "", ImageNoRow
	}
	thumb, ok, err := a.thumbnails.ThumbnailPath(ctx, listID)
	if errors.Is(err, ErrLookupSuspended) {
		zap.S().Debugw("thumbnail lookup skipped", "list_id", listID, "err", err)
		return "", ImageLookupError
	}
	if err != nil {
		zap.S().Warnw("thumbnail lookup failed", "list_id", listID, "err", err)
		return "", ImageLookupError
	}
	rel := TrimLeadingSlashes(thumb)
	if !ok || rel == "" {
		return "", ImageNoRow
	}

	if a.assets == nil {
		return "", ImageMissingFile
	}
	exists, err := a.assets.Exists(ctx, rel)
	if err != nil {
		zap.S().Warnw("thumbnail existence check failed", "list_id", listID, "path", rel, "err", err)
		return "", ImageLookupError
	}
	if !exists {
		return "", ImageMissingFile
	}

	return a.siteRoot + rel, ImageResolved
}

func (a *Annotator) setOgTags(doc listmeta.Document, title, description, image string) {
	doc.SetMetaData(listmeta.KeyOGTitle, title, listmeta.AttributeProperty)
	doc.SetMetaData(listmeta.KeyOGDescription, description, listmeta.AttributeProperty)
	doc.SetMetaData(listmeta.KeyOGType, a.cfg.OGType, listmeta.AttributeProperty)

	if image != "" {
		doc.SetMetaData(listmeta.KeyOGImage, image, listmeta.AttributeProperty)
	}
}

func (a *Annotator) setTwitterTags(doc listmeta.Document, title, description, image string) {
	doc.SetMetaData(listmeta.KeyTwitterCard, a.cfg.TwitterCard, listmeta.AttributeProperty)
	doc.SetMetaData(listmeta.KeyTwitterTitle, title, listmeta.AttributeProperty)
	doc.SetMetaData(listmeta.KeyTwitterDescription, description, listmeta.AttributeProperty)

	if image != "" {
		doc.SetMetaData(listmeta.KeyTwitterImage, image, listmeta.AttributeProperty)
	}
}

func (a *Annotator) setTags(doc listmeta.Document, title, description, image string) {
	doc.SetMetaData(listmeta.KeyTitle, title, listmeta.AttributeProperty)
	doc.SetMetaData(listmeta.KeyDescription, description, listmeta.AttributeProperty)

	if image != "" {
		doc.SetMetaData(listmeta.KeyImage, image, listmeta.AttributeProperty)
	}
}
