package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTranslateServer fakes a LibreTranslate endpoint that echoes the
// input with a marker so tests can see which direction ran.
func newTranslateServer(t *testing.T) (*httptest.Server, *[]translateRequest) {
	t.Helper()
	var seen []translateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/translate", r.URL.Path)
		var req translateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		seen = append(seen, req)
		json.NewEncoder(w).Encode(translateResponse{
			TranslatedText: "<" + req.Target + ">" + req.Q,
		})
	}))
	t.Cleanup(server.Close)
	return server, &seen
}

func TestToEnglish_TranslatesNonEnglish(t *testing.T) {
	server, seen := newTranslateServer(t)
	tr := NewHTTPTranslator(server.URL)

	out := tr.ToEnglish(context.Background(), "chori ki saza", "hi")

	assert.Equal(t, "<en>chori ki saza", out)
	require.Len(t, *seen, 1)
	assert.Equal(t, "auto", (*seen)[0].Source)
}

// TestToEnglish_EnglishPassthrough verifies English input never hits the
// wire, in either code or name form.
func TestToEnglish_EnglishPassthrough(t *testing.T) {
	server, seen := newTranslateServer(t)
	tr := NewHTTPTranslator(server.URL)

	assert.Equal(t, "already english", tr.ToEnglish(context.Background(), "  already english ", "en"))
	assert.Equal(t, "also english", tr.ToEnglish(context.Background(), "also english", "English"))
	assert.Empty(t, *seen)
}

func TestFromEnglish_Localizes(t *testing.T) {
	server, _ := newTranslateServer(t)
	tr := NewHTTPTranslator(server.URL)

	out := tr.FromEnglish(context.Background(), "You may file a complaint.", "ta")
	assert.Equal(t, "<ta>You may file a complaint.", out)
}

// TestFromEnglish_ServerErrorKeepsEnglish verifies passthrough
// degradation: a failing service returns the English text untouched.
func TestFromEnglish_ServerErrorKeepsEnglish(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)
	tr := NewHTTPTranslator(server.URL)

	out := tr.FromEnglish(context.Background(), "You may file a complaint.", "ta")
	assert.Equal(t, "You may file a complaint.", out)
}

func TestToEnglish_UnreachableServiceKeepsOriginal(t *testing.T) {
	tr := NewHTTPTranslator("http://127.0.0.1:1")

	out := tr.ToEnglish(context.Background(), "chori ki saza", "hi")
	assert.Equal(t, "chori ki saza", out)
}

func TestFromEnglish_EmptyAndEnglishInputs(t *testing.T) {
	server, seen := newTranslateServer(t)
	tr := NewHTTPTranslator(server.URL)

	assert.Empty(t, tr.FromEnglish(context.Background(), "   ", "hi"))
	assert.Equal(t, "keep me", tr.FromEnglish(context.Background(), "keep me", "en"))
	assert.Empty(t, *seen)
}
