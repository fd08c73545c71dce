package translation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/bb/internal/adapters/translation"
	"go.trai.ch/bb/internal/core/domain"
)

func TestCatalog_AssignsStableIDs(t *testing.T) {
	c := translation.NewCatalog()

	hello := domain.TranslationSite{Message: "Hello", Literal: true}
	hinted := domain.TranslationSite{Message: "Hello", Hint: "greeting", Literal: true}

	assert.Equal(t, 0, c.Replace(hello))
	assert.Equal(t, 1, c.Replace(hinted))
	assert.Equal(t, 0, c.Replace(hello))
	c.Report(domain.TranslationSite{Message: "{n} items", WithParams: true, JustFormat: true})

	msgs := c.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, translation.Message{ID: 2, Text: "{n} items", WithParams: true, JustFormat: true}, msgs[2])
}

func TestCatalog_FlushOnlyWhenDirty(t *testing.T) {
	c := translation.NewCatalog()

	data, _, err := c.Flush()
	require.NoError(t, err)
	assert.Nil(t, data)

	c.Replace(domain.TranslationSite{Message: "Hi"})
	data, commit, err := c.Flush()
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":0,"message":"Hi"}]`, string(data))
	commit()

	data, _, err = c.Flush()
	require.NoError(t, err)
	assert.Nil(t, data, "unchanged catalog must not be flushed again")
}

func TestCatalog_FlushWithoutCommitRepeats(t *testing.T) {
	c := translation.NewCatalog()
	c.Replace(domain.TranslationSite{Message: "Hi"})

	first, _, err := c.Flush()
	require.NoError(t, err)
	require.NotNil(t, first)

	again, commit, err := c.Flush()
	require.NoError(t, err)
	assert.Equal(t, first, again)

	c.Replace(domain.TranslationSite{Message: "Later"})
	commit()
	data, _, err := c.Flush()
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":0,"message":"Hi"},{"id":1,"message":"Later"}]`, string(data),
		"a message added after the snapshot keeps the catalog dirty")
}

func TestCatalog_LoadKeepsIDs(t *testing.T) {
	c := translation.NewCatalog()
	require.NoError(t, c.Load([]byte(`[{"id":4,"message":"Later"},{"id":2,"message":"Hi","hint":"h"}]`)))

	assert.Equal(t, 2, c.Replace(domain.TranslationSite{Message: "Hi", Hint: "h"}))
	assert.Equal(t, 5, c.Replace(domain.TranslationSite{Message: "New"}))
	assert.Equal(t, 3, c.Len())
}

func TestCatalog_LoadInvalid(t *testing.T) {
	err := translation.NewCatalog().Load([]byte("{"))
	assert.ErrorContains(t, err, domain.ErrCatalogParseFailed.Error())
}

func TestCatalog_LoadRejectsDuplicateIDs(t *testing.T) {
	tests := []struct {
		name   string
		before []domain.TranslationSite
		data   string
	}{
		{
			name: "two stored messages",
			data: `[{"id":1,"message":"Hi"},{"id":1,"message":"Bye"}]`,
		},
		{
			name: "one message stored twice",
			data: `[{"id":1,"message":"Hi"},{"id":2,"message":"Hi"}]`,
		},
		{
			name:   "id taken by a known message",
			before: []domain.TranslationSite{{Message: "Known"}},
			data:   `[{"id":0,"message":"Hi"}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := translation.NewCatalog()
			for _, site := range tt.before {
				c.Replace(site)
			}

			err := c.Load([]byte(tt.data))
			require.Error(t, err)
			assert.ErrorContains(t, err, domain.ErrDuplicateMessageID.Error())
			assert.Equal(t, len(tt.before), c.Len(), "nothing is merged from a rejected catalog")
		})
	}
}
