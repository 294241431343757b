package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultVocabularyGuidanceIsSupersetOfQuery(t *testing.T) {
	v := DefaultVocabulary()
	guidance := make(map[string]struct{}, len(v.GuidanceTerms))
	for _, term := range v.GuidanceTerms {
		guidance[term] = struct{}{}
	}
	for _, term := range v.QueryTerms {
		_, ok := guidance[term]
		assert.True(t, ok, "query term %q missing from guidance terms", term)
	}
}

func TestDefaultVocabularyIsACopy(t *testing.T) {
	a := DefaultVocabulary()
	a.QueryTerms[0] = "mutated"
	a.Questions["new"] = "x"
	b := DefaultVocabulary()
	assert.NotEqual(t, "mutated", b.QueryTerms[0])
	_, ok := b.Questions["new"]
	assert.False(t, ok)
}

func TestLoadVocabularyOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`queryTerms: ["kafka", " Kafka ", "", "broker"]
questions:
  "Is the broker healthy?": "broker health"
`), 0o644))

	v, err := LoadVocabulary(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"kafka", "broker"}, v.QueryTerms)
	assert.Equal(t, DefaultVocabulary().GuidanceTerms, v.GuidanceTerms)
	term, ok := v.MapQuestion("Is the broker healthy?")
	assert.True(t, ok)
	assert.Equal(t, "broker health", term)
	_, ok = v.MapQuestion("What is the underlying root cause?")
	assert.True(t, ok, "default questions are kept")
}

func TestLoadVocabularyMissingFileUsesDefaults(t *testing.T) {
	v, err := LoadVocabulary(filepath.Join(t.TempDir(), "none.yaml"), nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultVocabulary().QueryTerms, v.QueryTerms)
}

func TestLoadVocabularyInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("queryTerms: [unterminated"), 0o644))
	_, err := LoadVocabulary(path, nil)
	assert.Error(t, err)
}

func TestMatchTermsCaseInsensitive(t *testing.T) {
	v := &Vocabulary{QueryTerms: []string{"active directory", "sso"}}
	assert.Equal(t, []string{"active directory", "sso"}, v.MatchQueryTerms("SSO broken after ACTIVE DIRECTORY sync"))
	assert.Empty(t, v.MatchQueryTerms("nothing relevant"))
}
