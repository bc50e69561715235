package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverridePolicy_MatchesGroups(t *testing.T) {
	p := DefaultOverridePolicy()

	assert.Equal(t, []string{"procedure"}, p.Matches("How do I file a case against my landlord?"))
	assert.Equal(t, []string{"rights"}, p.Matches("What are my rights during an arrest?"))
	assert.Equal(t, []string{"legality"}, p.Matches("Is it legal to record a phone call?"))
	assert.Equal(t, []string{"scenario"}, p.Matches("Hypothetically, can a minor sign a contract?"))
}

func TestOverridePolicy_MultipleGroupsFire(t *testing.T) {
	p := DefaultOverridePolicy()
	fired := p.Matches("What happens if I file an FIR about my rights?")
	assert.Contains(t, fired, "procedure")
	assert.Contains(t, fired, "rights")
	assert.Contains(t, fired, "legality")
}

func TestOverridePolicy_NoMatch(t *testing.T) {
	p := DefaultOverridePolicy()
	assert.Empty(t, p.Matches("Explain the doctrine of basic structure"))
	assert.False(t, p.Allows("Explain the doctrine of basic structure"))
}

func TestOverridePolicy_MatchingIsCaseInsensitive(t *testing.T) {
	p := DefaultOverridePolicy()
	assert.True(t, p.Allows("HOW DO I FILE A COMPLAINT?"))
}

func TestLoadOverridePolicy_ReplacesGroupsKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	content := "procedure:\n  - \"custom marker\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p, err := LoadOverridePolicy(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"custom marker"}, p.Procedure)
	// Groups absent from the file keep the compiled-in defaults.
	assert.Equal(t, DefaultOverridePolicy().Rights, p.Rights)
}

func TestLoadOverridePolicy_MissingFile(t *testing.T) {
	_, err := LoadOverridePolicy("/does/not/exist.yaml")
	assert.Error(t, err)
}
