package api_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gene2phenotype/g2ptools/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*api.Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := api.NewClient(server.URL + "/")
	require.NoError(t, err)

	return client, server
}

func TestLoginKeepsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login/", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "curator", payload["username"])
		assert.Equal(t, "secret", payload["password"])

		http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "abc123", Path: "/"})
		fmt.Fprint(w, `{}`)
	})
	mux.HandleFunc("/logout/", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("sessionid")
		require.NoError(t, err, "logout call should carry the session cookie")
		assert.Equal(t, "abc123", cookie.Value)
		w.WriteHeader(http.StatusNoContent)
	})

	client, _ := newTestClient(t, mux)

	require.NoError(t, client.Login("curator", "secret"))
	require.NoError(t, client.Logout())
}

func TestLoginBadCredentials(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"detail": "invalid credentials"}`)
	}))

	err := client.Login("curator", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestAddDisease(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/add/disease/", r.URL.Path)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "new disease", payload["name"])

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id": 42, "name": "new disease"}`)
	}))

	id, err := client.AddDisease("new disease")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestUpdateDiseases(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var updates []api.DiseaseUpdate
		require.NoError(t, json.NewDecoder(r.Body).Decode(&updates))
		require.Len(t, updates, 2)

		fmt.Fprint(w, `{"errors": [{"id": 2, "existing_id": 7}]}`)
	}))

	result, err := client.UpdateDiseases([]api.DiseaseUpdate{
		{ID: 1, Name: "renamed one"},
		{ID: 2, Name: "renamed two"},
	})
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, uint(2), result.Errors[0].ID)
	assert.Equal(t, uint(7), result.Errors[0].ExistingID)
}

func TestActivityLogsPagination(t *testing.T) {
	var server *httptest.Server

	mux := http.NewServeMux()
	mux.HandleFunc("/activity_logs/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `{"results": [{"g2p_id": "G2P00003", "change_type": "created"}], "next": null}`)
			return
		}

		assert.Equal(t, "2025-08-23", r.URL.Query().Get("date_cutoff"))
		next := server.URL + "/activity_logs/?page=2"
		fmt.Fprintf(w, `{"results": [
			{"g2p_id": "G2P00001", "change_type": "updated"},
			{"g2p_id": "G2P00002", "change_type": "deleted", "is_deleted": 1}
		], "next": %q}`, next)
	})

	client, server := newTestClient(t, mux)

	logs, err := client.ActivityLogs("2025-08-23")
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "G2P00001", logs[0].G2PID)
	assert.Equal(t, 1, logs[1].IsDeleted)
	assert.Equal(t, "G2P00003", logs[2].G2PID)
}

func TestRecordActivityLogs(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "G2P00001", r.URL.Query().Get("stable_id"))
		fmt.Fprint(w, `{"results": [
			{"g2p_id": "G2P00001", "change_type": "created"},
			{"g2p_id": "G2P00001", "change_type": "updated"}
		], "next": null}`)
	}))

	logs, err := client.RecordActivityLogs("G2P00001")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "created", logs[0].ChangeType)
}

func TestDownloadPanel(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/panel/dd/download/", r.URL.Path)
		fmt.Fprint(w, "g2p id,gene symbol\nG2P00001,KCNQ2\n")
	}))

	data, err := client.DownloadPanel("dd")
	require.NoError(t, err)
	assert.Contains(t, string(data), "KCNQ2")
}

func TestGenCCEndpoints(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/unsubmitted_stable_ids/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `["G2P00001", "G2P00002"]`)
	})
	mux.HandleFunc("/later_review_date/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"ids": {"G2P00003": "100011200003"}}`)
	})
	mux.HandleFunc("/gencc_deleted_records/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"ids": ["G2P00004"]}`)
	})
	mux.HandleFunc("/gencc_create/", func(w http.ResponseWriter, r *http.Request) {
		var entries []api.GenCCSubmissionEntry
		require.NoError(t, json.NewDecoder(r.Body).Decode(&entries))
		require.Len(t, entries, 1)
		assert.Equal(t, "create", entries[0].TypeOfSubmission)
		w.WriteHeader(http.StatusCreated)
	})

	client, _ := newTestClient(t, mux)

	unsubmitted, err := client.UnsubmittedStableIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"G2P00001", "G2P00002"}, unsubmitted)

	updated, err := client.UpdatedSinceSubmission()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"G2P00003": "100011200003"}, updated)

	deleted, err := client.DeletedSubmittedRecords()
	require.NoError(t, err)
	assert.Equal(t, []string{"G2P00004"}, deleted)

	err = client.CreateGenCCSubmissions([]api.GenCCSubmissionEntry{{
		SubmissionID:     "100011200001",
		DateOfSubmission: "2025-08-30",
		TypeOfSubmission: "create",
		G2PStableID:      "G2P00001",
	}})
	require.NoError(t, err)
}
