package listmeta

// ListRecord is the subset of a list row needed to describe it to link previewers.
type ListRecord struct {
	ID           int64  `json:"id"`
	Label        string `json:"label"`
	Introduction string `json:"introduction"`
}

// AttributeKind selects the HTML attribute that carries a meta tag's key.
type AttributeKind string

const (
	AttributeName      AttributeKind = "name"
	AttributeProperty  AttributeKind = "property"
	AttributeHTTPEquiv AttributeKind = "http-equiv"
)

// Valid reports whether k is one of the known attribute kinds.
func (k AttributeKind) Valid() bool {
	switch k {
	case AttributeName, AttributeProperty, AttributeHTTPEquiv:
		return true
	default:
		return false
	}
}

// Open Graph keys
const (
	KeyOGTitle       = "og:title"
	KeyOGDescription = "og:description"
	KeyOGType        = "og:type"
	KeyOGImage       = "og:image"
)

// Twitter card keys
const (
	KeyTwitterCard        = "twitter:card"
	KeyTwitterTitle       = "twitter:title"
	KeyTwitterDescription = "twitter:description"
	KeyTwitterImage       = "twitter:image"
)

// Generic keys
const (
	KeyTitle       = "title"
	KeyDescription = "description"
	KeyImage       = "image"
)

const (
	DefaultOGType      = "website"
	DefaultTwitterCard = "summary_large_image"
)

// View names passed to CanView by list hosts.
const (
	ViewList = "list"
	ViewForm = "form"
)
