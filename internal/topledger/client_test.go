package topledger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchRowsQueryResultEnvelope(t *testing.T) {
	srv := serve(t, http.StatusOK, `{
		"query_result": {"data": {"rows": [
			{"block_date": "2024-01-01T00:00:00", "mint": "M1"},
			{"block_date": "2024-01-02T00:00:00", "mint": "M2"}
		]}}
	}`)

	rows, err := New(srv.URL).FetchRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "M1", rows[0]["mint"])
}

func TestFetchRowsDataEnvelope(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"data": {"rows": [{"mint": "M1"}]}}`)

	rows, err := New(srv.URL).FetchRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestFetchRowsBareArray(t *testing.T) {
	srv := serve(t, http.StatusOK, `[{"mint": "M1"}, {"mint": "M2"}, {"mint": "M3"}]`)

	rows, err := New(srv.URL).FetchRows(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestFetchRowsTopLevelRows(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"rows": [{"mint": "M1"}]}`)

	rows, err := New(srv.URL).FetchRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestFetchRowsSingleObjectFallback(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"mint": "M1", "supply": 5}`)

	rows, err := New(srv.URL).FetchRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "M1", rows[0]["mint"])
}

func TestFetchRowsEmptyRows(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"query_result": {"data": {"rows": []}}}`)

	rows, err := New(srv.URL).FetchRows(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows, "an empty result set is not an error")
}

func TestFetchRowsServerError(t *testing.T) {
	srv := serve(t, http.StatusBadGateway, `upstream unavailable`)

	_, err := New(srv.URL).FetchRows(context.Background())
	assert.Error(t, err)
}

func TestFetchRowsUnreachable(t *testing.T) {
	srv := serve(t, http.StatusOK, `{}`)
	url := srv.URL
	srv.Close()

	_, err := New(url).FetchRows(context.Background())
	assert.Error(t, err)
}
