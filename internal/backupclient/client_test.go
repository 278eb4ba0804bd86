package backupclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerBackup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cgi-bin/backup":
			_, _ = w.Write([]byte("/backups/siakad-20240510.dump\n"))
		default:
			http.Error(w, "no restore today", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := New(srv.URL + "/")
	path, err := c.TriggerBackup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/backups/siakad-20240510.dump", path)

	_, err = c.RestoreLatest(context.Background())
	assert.ErrorContains(t, err, "http 500: no restore today")
}
