package httpds

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsURL_Source(t *testing.T) {
	t.Parallel()

	assert.True(t, IsURL("https://example.com/items.csv"))
	assert.True(t, IsURL("HTTP://example.com/items.csv"))
	assert.False(t, IsURL("items.csv"))
	assert.False(t, IsURL("ftp://example.com/items.csv"))
}

func TestSource_Open_Source(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/items.csv" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, "code,title\nQ1,Add\n")
	}))
	defer srv.Close()

	c := NewClient(Config{})

	rc, err := NewSource(c, srv.URL+"/items.csv").Open(context.Background())
	require.NoError(t, err)
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "code,title\nQ1,Add\n", string(b))

	_, err = NewSource(c, srv.URL+"/missing.csv").Open(context.Background())
	assert.ErrorContains(t, err, "404")
}
