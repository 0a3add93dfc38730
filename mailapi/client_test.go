package mailapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"crmmail/config"
	"crmmail/models"
	"crmmail/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.ProviderConfig{
		BaseURL:        baseURL,
		APIKey:         "test-key",
		TimeoutSeconds: 5,
	}, utils.Log)
}

func TestListMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/inbox", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "sent", r.URL.Query().Get("folder"))
		assert.Equal(t, "broker.com", r.URL.Query().Get("domain"))
		assert.Equal(t, "25", r.URL.Query().Get("limit"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"emails": []models.Email{{ID: "1", Subject: "Hi"}},
		})
	}))
	defer srv.Close()

	emails, err := newTestClient(srv.URL).ListMessages(context.Background(), "sent", "broker.com", 25)
	require.NoError(t, err)
	require.Len(t, emails, 1)
	assert.Equal(t, "1", emails[0].ID)
}

func TestSendMultipartEncoding(t *testing.T) {
	var got struct {
		to, cc, subject, message string
		ccPresent, bccPresent    bool
		attachmentNames          []string
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		got.to = r.FormValue("to")
		got.subject = r.FormValue("subject")
		got.message = r.FormValue("message")
		_, got.ccPresent = r.MultipartForm.Value["cc"]
		_, got.bccPresent = r.MultipartForm.Value["bcc"]
		got.cc = r.FormValue("cc")
		for _, fh := range r.MultipartForm.File["attachments"] {
			got.attachmentNames = append(got.attachmentNames, fh.Filename)
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Send(context.Background(), OutgoingMessage{
		To:      "a@b.co",
		Cc:      "c@d.co",
		Subject: "Hello",
		Body:    "<p>body</p>",
		Attachments: []models.Attachment{
			{Filename: "deed.pdf", Content: []byte("pdf-bytes")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "a@b.co", got.to)
	assert.Equal(t, "Hello", got.subject)
	assert.Equal(t, "<p>body</p>", got.message)
	assert.True(t, got.ccPresent)
	assert.Equal(t, "c@d.co", got.cc)
	assert.False(t, got.bccPresent, "empty bcc must be omitted from the form")
	assert.Equal(t, []string{"deed.pdf"}, got.attachmentNames)
}

func TestSendOmitsEmptyCc(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, ccPresent := r.MultipartForm.Value["cc"]
		assert.False(t, ccPresent)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Send(context.Background(), OutgoingMessage{
		To: "a@b.co", Subject: "Hi", Body: "x",
	})
	require.NoError(t, err)
}

func TestServerErrorCarriesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error": "Mailbox suspended"}`))
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Send(context.Background(), OutgoingMessage{To: "a@b.co"})
	require.Error(t, err)

	var serverErr *ServerError
	require.True(t, errors.As(err, &serverErr))
	assert.Equal(t, 422, serverErr.StatusCode)
	assert.Equal(t, "Mailbox suspended", serverErr.Message)
}

func TestServerErrorFallsBackToMessageField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message": "bad input"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).ListMessages(context.Background(), "inbox", "", 0)
	var serverErr *ServerError
	require.True(t, errors.As(err, &serverErr))
	assert.Equal(t, "bad input", serverErr.Message)
}

func TestTransportErrorWhenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	_, err := newTestClient(srv.URL).ListMessages(context.Background(), "inbox", "", 0)
	require.Error(t, err)

	var transportErr *TransportError
	assert.True(t, errors.As(err, &transportErr))
}

func TestFetchMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "1,2,3", r.URL.Query().Get("emailIds"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"metadata": map[string]*models.EmailMetadata{
				"1": {EmailID: "1", IsRead: true},
			},
		})
	}))
	defer srv.Close()

	meta, err := newTestClient(srv.URL).FetchMetadata(context.Background(), []string{"1", "2", "3"})
	require.NoError(t, err)
	require.Contains(t, meta, "1")
	assert.True(t, meta["1"].IsRead)
	assert.NotContains(t, meta, "2", "ids with no stored metadata are absent")
}

func TestFetchMetadataEmptyIdsSkipsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	defer srv.Close()

	meta, err := newTestClient(srv.URL).FetchMetadata(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, meta)
}

func TestUpdateMetadataReturnsMergedRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/metadata", r.URL.Path)

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "42", payload["email_id"])
		assert.Equal(t, true, payload["is_read"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"metadata": &models.EmailMetadata{EmailID: "42", IsRead: true, Tags: []string{"kept"}},
		})
	}))
	defer srv.Close()

	meta, err := newTestClient(srv.URL).UpdateMetadata(context.Background(), "42", models.MetadataUpdate{
		IsRead: models.Bool(true),
	})
	require.NoError(t, err)
	assert.True(t, meta.IsRead)
	assert.Equal(t, []string{"kept"}, meta.Tags)
}

func TestBulkUpdateMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)

		var payload struct {
			EmailIDs []string              `json:"email_ids"`
			Updates  models.MetadataUpdate `json:"updates"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, []string{"1", "2"}, payload.EmailIDs)
		require.NotNil(t, payload.Updates.IsArchived)
		assert.True(t, *payload.Updates.IsArchived)

		w.Write([]byte(`{"updated": 2}`))
	}))
	defer srv.Close()

	updated, err := newTestClient(srv.URL).BulkUpdateMetadata(context.Background(), []string{"1", "2"}, models.MetadataUpdate{
		IsArchived: models.Bool(true),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated)
}

func TestSearchContacts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/contacts/search", r.URL.Path)
		assert.Equal(t, "ali", r.URL.Query().Get("q"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"contacts": []models.Contact{{ID: "c1", Name: "Alice", Email: "alice@example.com"}},
		})
	}))
	defer srv.Close()

	contacts, err := newTestClient(srv.URL).SearchContacts(context.Background(), "ali", 10)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "Alice", contacts[0].Name)
}

func TestGetMessageNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"email": null}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetMessage(context.Background(), "missing", "inbox")
	var serverErr *ServerError
	require.True(t, errors.As(err, &serverErr))
	assert.Equal(t, 404, serverErr.StatusCode)
}
