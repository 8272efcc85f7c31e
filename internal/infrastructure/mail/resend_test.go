package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/invoicehub/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResendMailer_Send(t *testing.T) {
	var captured resendRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resendResponse{ID: "msg-123"})
	}))
	defer server.Close()

	mailer, err := NewResendMailer(&config.MailConfig{
		APIBaseURL:  server.URL,
		APIKey:      "test-key",
		FromAddress: "billing@acme.test",
		FromName:    "Acme Billing",
		SendTimeout: 5 * time.Second,
	}, nil)
	require.NoError(t, err)

	id, err := mailer.Send(context.Background(), &Message{
		To:      []string{"customer@globex.test"},
		Subject: "Invoice INV-00042",
		HTML:    "<p>Your invoice is attached.</p>",
		Attachments: []Attachment{
			{Filename: "INV-00042.pdf", ContentType: "application/pdf", Data: []byte("%PDF")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "msg-123", id)
	assert.Equal(t, "Acme Billing <billing@acme.test>", captured.From)
	assert.Equal(t, []string{"customer@globex.test"}, captured.To)
	require.Len(t, captured.Attachments, 1)
	assert.Equal(t, "INV-00042.pdf", captured.Attachments[0].Filename)
}

func TestResendMailer_Send_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid from"}`, http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	mailer, err := NewResendMailer(&config.MailConfig{
		APIBaseURL:  server.URL,
		APIKey:      "test-key",
		FromAddress: "billing@acme.test",
	}, nil)
	require.NoError(t, err)

	_, err = mailer.Send(context.Background(), &Message{
		To:      []string{"customer@globex.test"},
		Subject: "Invoice",
	})
	assert.Error(t, err)
}

func TestResendMailer_Send_Validation(t *testing.T) {
	mailer, err := NewResendMailer(&config.MailConfig{
		APIBaseURL:  "http://localhost:0",
		APIKey:      "k",
		FromAddress: "a@b.test",
	}, nil)
	require.NoError(t, err)

	_, err = mailer.Send(context.Background(), &Message{Subject: "x"})
	assert.Error(t, err)

	_, err = mailer.Send(context.Background(), &Message{To: []string{"a@b.test"}})
	assert.Error(t, err)
}

func TestStubMailer_RecordsMessages(t *testing.T) {
	stub := NewStubMailer()

	id, err := stub.Send(context.Background(), &Message{
		To:      []string{"a@b.test"},
		Subject: "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "stub-1", id)

	sent := stub.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "hello", sent[0].Subject)
}
