package regions

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"collection-points/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDirectoryServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClient_Generic(t *testing.T) {
	server := newDirectoryServer(t, map[string]string{
		"/states":           `[{"code":"SP"},{"code":"RJ"},{"code":" "}]`,
		"/states/SP/cities": `[{"name":"São Paulo"},{"name":"Campinas"}]`,
	})
	client := NewClient(server.URL, time.Second, DialectGeneric)

	states, err := client.ListStates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"SP", "RJ"}, states)

	cities, err := client.ListCities(context.Background(), "SP")
	require.NoError(t, err)
	assert.Equal(t, []string{"São Paulo", "Campinas"}, cities)
}

func TestClient_IBGE(t *testing.T) {
	server := newDirectoryServer(t, map[string]string{
		"/estados":              `[{"id":35,"sigla":"SP","nome":"São Paulo"},{"id":33,"sigla":"RJ","nome":"Rio de Janeiro"}]`,
		"/estados/RJ/municipios": `[{"id":3304557,"nome":"Rio de Janeiro"},{"id":3303302,"nome":"Niterói"}]`,
	})
	client := NewClient(server.URL, time.Second, DialectIBGE)

	states, err := client.ListStates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"SP", "RJ"}, states)

	cities, err := client.ListCities(context.Background(), "RJ")
	require.NoError(t, err)
	assert.Equal(t, []string{"Rio de Janeiro", "Niterói"}, cities)
}

func TestClient_EmptyDirectory(t *testing.T) {
	server := newDirectoryServer(t, map[string]string{
		"/states":           `[]`,
		"/states/AC/cities": `[]`,
	})
	client := NewClient(server.URL, time.Second, "")

	states, err := client.ListStates(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, states)
	assert.Empty(t, states)

	cities, err := client.ListCities(context.Background(), "AC")
	require.NoError(t, err)
	assert.NotNil(t, cities)
	assert.Empty(t, cities)
}

func TestClient_Unavailable(t *testing.T) {
	server := newDirectoryServer(t, map[string]string{})
	client := NewClient(server.URL, time.Second, DialectGeneric)

	_, err := client.ListStates(context.Background())
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrDirectoryUnavailable))

	_, err = client.ListCities(context.Background(), "SP")
	require.Error(t, err)
	stdErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, "SP", stdErr.Metadata["stateCode"])
	assert.Equal(t, ServiceName, stdErr.Metadata["service"])
}

func TestClient_ListCities_RequiresState(t *testing.T) {
	client := NewClient("http://unused.local", time.Second, DialectGeneric)
	_, err := client.ListCities(context.Background(), "  ")
	assert.True(t, stderrors.Is(err, errors.ErrDirectoryUnavailable))
}
