package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/martineserios/enhanced-rag-multi-db-ai-agent/app/service/chat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProcessor struct {
	result *chat.Result
	gotID  string
	gotMsg string
}

func (s *stubProcessor) ProcessMessage(_ context.Context, conversationID, message string) *chat.Result {
	s.gotID = conversationID
	s.gotMsg = message

	result := *s.result
	result.ConversationID = conversationID
	return &result
}

func postChat(t *testing.T, s *Service, body string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.app.Test(req)
	require.NoError(t, err)

	return resp
}

func TestHandleChatSuccess(t *testing.T) {
	processor := &stubProcessor{result: &chat.Result{
		Response:      "Nausea can have many causes.",
		DetectedTerms: map[string][]string{"symptom": {"nausea"}},
	}}
	s := newService(":0", processor)

	resp := postChat(t, s, `{"conversation_id":"c1","message":"I have nausea"}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body chatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "c1", body.ConversationID)
	assert.Equal(t, "Nausea can have many causes.", body.Response)
	assert.Equal(t, []string{"nausea"}, body.DetectedTerms["symptom"])

	assert.Equal(t, "c1", processor.gotID)
	assert.Equal(t, "I have nausea", processor.gotMsg)
}

func TestHandleChatMintsConversationID(t *testing.T) {
	processor := &stubProcessor{result: &chat.Result{Response: "ok"}}
	s := newService(":0", processor)

	resp := postChat(t, s, `{"message":"hello"}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body chatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.ConversationID)
	assert.Equal(t, body.ConversationID, processor.gotID)
}

func TestHandleChatMalformedInputIsBadRequest(t *testing.T) {
	processor := &stubProcessor{result: &chat.Result{
		ErrorMessage: "Your message could not be processed.",
		ErrorKind:    chat.KindMalformedInput,
	}}
	s := newService(":0", processor)

	resp := postChat(t, s, `{"message":""}`)

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, string(chat.KindMalformedInput), body.Kind)
	assert.NotEmpty(t, body.Error)
}

func TestHandleChatProviderFailureIsBadGateway(t *testing.T) {
	processor := &stubProcessor{result: &chat.Result{
		ErrorMessage: "I'm sorry, I cannot process your query at this time.",
		ErrorKind:    chat.KindProvider,
	}}
	s := newService(":0", processor)

	resp := postChat(t, s, `{"message":"I have a fever"}`)

	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, string(chat.KindProvider), body.Kind)
}

func TestHandleChatRejectsInvalidBody(t *testing.T) {
	processor := &stubProcessor{result: &chat.Result{Response: "ok"}}
	s := newService(":0", processor)

	resp := postChat(t, s, `{not json`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	s := newService(":0", &stubProcessor{result: &chat.Result{}})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := s.app.Test(req)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ok")
}
