package emails

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrevoClient_NoKeyIsNoop(t *testing.T) {
	c := &BrevoClient{Endpoint: "http://127.0.0.1:1"}
	assert.NoError(t, c.SendGoalCompleted(context.Background(), "a@b.co.ke", "Amina", "Land", 200))
}

func TestBrevoClient_SendGoalAlerts(t *testing.T) {
	var got BrevoSendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k", r.Header.Get("api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := &BrevoClient{APIKey: "k", Endpoint: srv.URL}
	err := c.SendGoalAlerts(context.Background(), "amina@example.co.ke", "Amina", "School fees <2027>", 80, []GoalAlert{
		{Type: "milestone", Message: "You've reached 75% of your goal"},
	})
	require.NoError(t, err)
	assert.Equal(t, "noreply@pesaguru.co.ke", got.Sender.Email)
	assert.Equal(t, "amina@example.co.ke", got.To[0].Email)
	assert.Contains(t, got.Subject, "School fees")
	assert.Contains(t, got.HTMLContent, "School fees &lt;2027&gt;")
	assert.Contains(t, got.HTMLContent, "reached 75%")
}

func TestBrevoClient_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := &BrevoClient{APIKey: "bad", Endpoint: srv.URL}
	assert.Error(t, c.SendWelcome(context.Background(), "a@b.co.ke", ""))
}
