package api

import (
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/respicare/triage-engine/internal/domain"
)

const (
	chatWriteTimeout = 10 * time.Second
	chatReadLimit    = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The REST surface already allows any origin; the chat socket
	// follows the same policy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatMessage is one client turn in the conversational flow.
type chatMessage struct {
	Message string `json:"message"`
	Age     int    `json:"age"`
}

// chatResponse is one server turn. Result is present only when the
// turn produced a triage.
type chatResponse struct {
	Type          string               `json:"type"` // "greeting", "question", "triage", "error"
	Message       string               `json:"message"`
	NeedsFollowUp bool                 `json:"needs_followup"`
	Result        *domain.TriageResult `json:"result,omitempty"`
}

var greetingPhrases = []string{
	"hola", "buenos días", "buenos dias", "buenas tardes", "buenas noches",
	"saludos", "buen día", "buen dia", "buenas", "qué tal", "que tal",
}

var questionWords = []string{
	"qué", "que", "cuál", "cual", "cómo", "como", "por qué", "porque",
	"cuándo", "cuando", "dónde", "donde", "quién", "quien",
}

const greetingReply = "¡Hola! Soy tu asistente médico de Respicare. " +
	"Estoy aquí para ayudarte con información sobre salud respiratoria. " +
	"Describe tus síntomas y te oriento sobre qué podría ser y qué tan urgente es."

const questionReply = "Puedo ayudarte con:\n" +
	"• Análisis de síntomas respiratorios\n" +
	"• Información sobre enfermedades respiratorias\n" +
	"• Orientación sobre el nivel de urgencia\n\n" +
	"Para comenzar, describe los síntomas que estás experimentando."

const errorReply = "Lo siento, hubo un error procesando tu mensaje. " +
	"Por favor intenta de nuevo."

// handleChat upgrades the connection and serves the conversational
// loop until the client disconnects.
func (s *Server) handleChat(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(chatReadLimit)
	requestID := c.GetString("request_id")
	log := s.log.WithField("request_id", requestID)
	log.Info("Chat session opened")

	for {
		var msg chatMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Warn("Chat session ended abnormally")
			} else {
				log.Info("Chat session closed")
			}
			return
		}

		resp := s.chatTurn(c, msg)
		conn.SetWriteDeadline(time.Now().Add(chatWriteTimeout))
		if err := conn.WriteJSON(resp); err != nil {
			log.WithError(err).Warn("Chat write failed")
			return
		}
	}
}

// chatTurn maps one incoming message to a response: greetings and
// general questions get canned guidance, anything else goes through the
// triage pipeline.
func (s *Server) chatTurn(c *gin.Context, msg chatMessage) chatResponse {
	if isGreeting(msg.Message) {
		return chatResponse{Type: "greeting", Message: greetingReply, NeedsFollowUp: true}
	}

	result, err := s.deps.Triager.Triage(c.Request.Context(), msg.Message, msg.Age)
	if err != nil {
		if isQuestion(msg.Message) {
			return chatResponse{Type: "question", Message: questionReply, NeedsFollowUp: true}
		}
		s.log.WithFields(logrus.Fields{"error": err}).Warn("Chat triage failed")
		return chatResponse{Type: "error", Message: errorReply, NeedsFollowUp: true}
	}

	// A question with no detected symptoms reads as a general inquiry,
	// not a triage request.
	if result.NeedsFollowUp && len(result.Symptoms) == 0 && isQuestion(msg.Message) {
		return chatResponse{Type: "question", Message: questionReply, NeedsFollowUp: true}
	}

	return chatResponse{
		Type:          "triage",
		Message:       chatSummary(result),
		NeedsFollowUp: result.NeedsFollowUp,
		Result:        result,
	}
}

// chatSummary renders the triage result as a conversational message.
func chatSummary(result *domain.TriageResult) string {
	var b strings.Builder

	if result.IsEmergency {
		if len(result.Warnings) > 0 {
			b.WriteString(result.Warnings[0])
			b.WriteString("\n\n")
		}
		b.WriteString(result.Action)
		return b.String()
	}

	if result.ConditionName == domain.ConditionNeedsInfo {
		b.WriteString("No pude identificar síntomas específicos en tu mensaje. ")
		b.WriteString("Cuéntame con más detalle qué estás sintiendo: por ejemplo fiebre, tos, dolor o dificultad para respirar.")
		return b.String()
	}

	b.WriteString("Según lo que describes, podría tratarse de: ")
	b.WriteString(result.ConditionName)
	b.WriteString(".\n\n")
	if result.Recommendation != "" {
		b.WriteString(result.Recommendation)
	}
	return b.String()
}

func isGreeting(message string) bool {
	lowered := strings.ToLower(strings.TrimSpace(message))
	for _, phrase := range greetingPhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}

	// Very short messages with letters read as greetings.
	if len(lowered) < 10 {
		for _, r := range lowered {
			if unicode.IsLetter(r) {
				return true
			}
		}
	}
	return false
}

func isQuestion(message string) bool {
	lowered := strings.ToLower(message)
	if strings.Contains(lowered, "?") {
		return true
	}
	for _, word := range questionWords {
		for _, token := range strings.Fields(lowered) {
			if strings.Trim(token, "¿?.,!¡") == word {
				return true
			}
		}
	}
	return false
}
