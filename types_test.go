package listmeta

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// MetadataSet Tests
// =============================================================================

func TestMetadataSet_SetKeepsInsertionOrder(t *testing.T) {
	m := NewMetadataSet()
	m.SetMetaData(KeyOGTitle, "Sales Q1", AttributeProperty)
	m.SetMetaData(KeyOGDescription, "Summary", AttributeProperty)
	m.SetMetaData(KeyOGType, DefaultOGType, AttributeProperty)

	want := []MetaTag{
		{Key: KeyOGTitle, Value: "Sales Q1", Kind: AttributeProperty},
		{Key: KeyOGDescription, Value: "Summary", Kind: AttributeProperty},
		{Key: KeyOGType, Value: "website", Kind: AttributeProperty},
	}
	if diff := cmp.Diff(want, m.Tags()); diff != "" {
		t.Errorf("Tags() mismatch (-want +got):\n%s", diff)
	}
}

func TestMetadataSet_OverwriteReplacesInPlace(t *testing.T) {
	m := NewMetadataSet()
	m.SetMetaData(KeyTitle, "old", AttributeName)
	m.SetMetaData(KeyDescription, "desc", AttributeProperty)
	m.SetMetaData(KeyTitle, "new", AttributeProperty)

	want := []MetaTag{
		{Key: KeyTitle, Value: "new", Kind: AttributeProperty},
		{Key: KeyDescription, Value: "desc", Kind: AttributeProperty},
	}
	if diff := cmp.Diff(want, m.Tags()); diff != "" {
		t.Errorf("Tags() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, m.Len())
}

func TestMetadataSet_EmptyKindDefaultsToName(t *testing.T) {
	m := NewMetadataSet()
	m.SetMetaData("robots", "noindex", "")

	tag, ok := m.Get("robots")
	require.True(t, ok)
	assert.Equal(t, AttributeName, tag.Kind)
}

func TestMetadataSet_ZeroValueIsUsable(t *testing.T) {
	var m MetadataSet
	m.SetMetaData(KeyOGTitle, "x", AttributeProperty)
	assert.True(t, m.Has(KeyOGTitle))
	assert.False(t, m.Has(KeyOGImage))
}

func TestMetadataSet_NilReceiver(t *testing.T) {
	var m *MetadataSet
	assert.Equal(t, 0, m.Len())
	assert.Nil(t, m.Tags())
	_, ok := m.Get(KeyTitle)
	assert.False(t, ok)
}

func TestMetadataSet_TagsReturnsCopy(t *testing.T) {
	m := NewMetadataSet()
	m.SetMetaData(KeyTitle, "a", AttributeProperty)

	tags := m.Tags()
	tags[0].Value = "mutated"

	tag, _ := m.Get(KeyTitle)
	assert.Equal(t, "a", tag.Value)
}

func TestMetadataSet_MarshalJSON(t *testing.T) {
	m := NewMetadataSet()
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))

	m.SetMetaData(KeyOGImage, "https://example.org/images/5.png", AttributeProperty)
	data, err = json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"key":"og:image","value":"https://example.org/images/5.png","kind":"property"}]`, string(data))
}

func TestAttributeKind_Valid(t *testing.T) {
	assert.True(t, AttributeName.Valid())
	assert.True(t, AttributeProperty.Valid())
	assert.True(t, AttributeHTTPEquiv.Valid())
	assert.False(t, AttributeKind("itemprop").Valid())
	assert.False(t, AttributeKind("").Valid())
}

// =============================================================================
// Error Tests
// =============================================================================

func TestListMetaError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ListMetaError
		want string
	}{
		{
			name: "with list id",
			err:  NewListNotFoundError(42),
			want: "[not_found:LIST_NOT_FOUND] list 42: list not found",
		},
		{
			name: "with field",
			err:  NewListMetaError(ErrorTypeValidation, ErrCodeInvalidConfig, "bad").WithField("site.rootURL"),
			want: "[validation:INVALID_CONFIG] field 'site.rootURL': bad",
		},
		{
			name: "with cause",
			err:  NewQueryError(0, "select thumbnail", errors.New("conn reset")),
			want: "[query:QUERY_FAILED] select thumbnail: conn reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestListMetaError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewAssetCheckError("images/5.png", cause)
	assert.ErrorIs(t, err, cause)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NewListNotFoundError(1)))
	assert.True(t, IsNotFound(errors.Join(errors.New("ctx"), NewListNotFoundError(1))))
	assert.False(t, IsNotFound(NewQueryError(1, "q", nil)))
	assert.False(t, IsNotFound(errors.New("plain")))
	assert.False(t, IsNotFound(nil))
}
