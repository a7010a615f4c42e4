package api

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/respicare/triage-engine/internal/domain"
)

func dialChat(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(s.Router())
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/chat"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestChat_Greeting(t *testing.T) {
	s := newTestServer(t, Deps{})
	conn := dialChat(t, s)

	require.NoError(t, conn.WriteJSON(chatMessage{Message: "hola, buenos días"}))

	var resp chatResponse
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "greeting", resp.Type)
	assert.True(t, resp.NeedsFollowUp)
	assert.Nil(t, resp.Result)
}

func TestChat_TriageTurn(t *testing.T) {
	s := newTestServer(t, Deps{})
	conn := dialChat(t, s)

	require.NoError(t, conn.WriteJSON(chatMessage{Message: "llevo dos días con fiebre alta y tos con flema", Age: 30}))

	var resp chatResponse
	require.NoError(t, conn.ReadJSON(&resp))
	require.Equal(t, "triage", resp.Type)
	require.NotNil(t, resp.Result)
	assert.Equal(t, "Neumonía grave", resp.Result.ConditionName)
	assert.Contains(t, resp.Message, "Neumonía grave")
}

func TestChat_EmergencyTurn(t *testing.T) {
	emergency := &domain.TriageResult{
		ConditionName: domain.ConditionEmergency,
		Confidence:    1.0,
		Urgency:       domain.UrgencyCritical,
		Severity:      domain.SeverityExtreme,
		IsEmergency:   true,
		Action:        domain.EmergencyAction,
		Warnings:      []string{"ATENCIÓN MÉDICA URGENTE REQUERIDA - Síntoma crítico detectado: cianosis"},
		Validation:    domain.ValidationPassed,
	}
	s := newTestServer(t, Deps{Triager: &stubTriager{result: emergency}})
	conn := dialChat(t, s)

	require.NoError(t, conn.WriteJSON(chatMessage{Message: "mi hijo tiene los labios azules y no responde bien"}))

	var resp chatResponse
	require.NoError(t, conn.ReadJSON(&resp))
	require.Equal(t, "triage", resp.Type)
	assert.Contains(t, resp.Message, domain.EmergencyAction)
	assert.True(t, resp.Result.IsEmergency)
}

func TestChat_GeneralQuestion(t *testing.T) {
	needsInfo := &domain.TriageResult{
		ConditionName: domain.ConditionNeedsInfo,
		Urgency:       domain.UrgencyLow,
		Severity:      domain.SeverityMild,
		Validation:    domain.ValidationPassed,
		NeedsFollowUp: true,
	}
	s := newTestServer(t, Deps{Triager: &stubTriager{result: needsInfo}})
	conn := dialChat(t, s)

	require.NoError(t, conn.WriteJSON(chatMessage{Message: "¿qué enfermedades respiratorias existen en niños pequeños?"}))

	var resp chatResponse
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "question", resp.Type)
	assert.True(t, resp.NeedsFollowUp)
}

func TestIsGreeting(t *testing.T) {
	assert.True(t, isGreeting("Hola"))
	assert.True(t, isGreeting("buenas tardes doctor"))
	assert.True(t, isGreeting("hey"))
	assert.False(t, isGreeting("tengo mucha dificultad para respirar desde ayer"))
}

func TestIsQuestion(t *testing.T) {
	assert.True(t, isQuestion("¿qué es la bronquitis?"))
	assert.True(t, isQuestion("como se contagia la gripe"))
	assert.False(t, isQuestion("tengo fiebre y tos"))
}
