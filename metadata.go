package listmeta

import (
	"encoding/json"
)

// MetaTag is a single key/value pair destined for the page head.
type MetaTag struct {
	Key   string        `json:"key"`
	Value string        `json:"value"`
	Kind  AttributeKind `json:"kind"`
}

// MetadataSet is an ordered, request-scoped collection of meta tags.
// Setting a key that is already present replaces its value and kind in place,
// so the first write of a key fixes its position.
type MetadataSet struct {
	tags  []MetaTag
	index map[string]int
}

// NewMetadataSet creates an empty set.
func NewMetadataSet() *MetadataSet {
	return &MetadataSet{
		index: make(map[string]int),
	}
}

// SetMetaData implements Document. An empty kind defaults to AttributeName.
func (m *MetadataSet) SetMetaData(key, value string, kind AttributeKind) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if kind == "" {
		kind = AttributeName
	}
	tag := MetaTag{Key: key, Value: value, Kind: kind}
	if i, ok := m.index[key]; ok {
		m.tags[i] = tag
		return
	}
	m.index[key] = len(m.tags)
	m.tags = append(m.tags, tag)
}

// Get returns the tag stored under key.
func (m *MetadataSet) Get(key string) (MetaTag, bool) {
	if m == nil {
		return MetaTag{}, false
	}
	i, ok := m.index[key]
	if !ok {
		return MetaTag{}, false
	}
	return m.tags[i], true
}

// Has reports whether key has been set.
func (m *MetadataSet) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Tags returns a copy of the tags in insertion order.
func (m *MetadataSet) Tags() []MetaTag {
	if m == nil {
		return nil
	}
	out := make([]MetaTag, len(m.tags))
	copy(out, m.tags)
	return out
}

func (m *MetadataSet) Len() int {
	if m == nil {
		return 0
	}
	return len(m.tags)
}

func (m *MetadataSet) MarshalJSON() ([]byte, error) {
	tags := m.Tags()
	if tags == nil {
		tags = []MetaTag{}
	}
	return json.Marshal(tags)
}
