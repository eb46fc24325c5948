package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/JesusVicken/brain-school/internal/domain"
	"github.com/JesusVicken/brain-school/internal/session"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// WSHandler runs one quiz over one websocket connection. The identity
// provider's popup lives entirely in the client; the only thing it feeds
// the core is presence and a display name, which arrive here as the `name`
// query parameter.
type WSHandler struct {
	runs      session.RunRepository
	validator *domain.SetupValidator
	upgrader  websocket.Upgrader
	log       logrus.FieldLogger
}

func NewWSHandler(runs session.RunRepository, log logrus.FieldLogger) *WSHandler {
	return &WSHandler{
		runs:      runs,
		validator: domain.NewSetupValidator(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Index int `json:"index"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and wires the connection into a run.
// Inbound: setup, answer, restart. Outbound: state snapshots, answerResult,
// result, error.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "missing name", http.StatusBadRequest)
		return
	}
	runID := r.URL.Query().Get("runId")
	if runID == "" {
		runID = uuid.NewString()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	run := h.runs.GetOrCreate(runID)
	defer h.runs.Delete(runID)
	defer run.Close()

	updates, cancel := run.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.WithError(err).Debug("ws write error")
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		finished := false
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "state", Payload: update}:
				case <-closeSignals:
					return
				}
				if update.Results != nil && !finished {
					finished = true
					select {
					case send <- outboundMessage[any]{Type: "result", Payload: update.Results}:
					case <-closeSignals:
						return
					}
				}
				if update.Results == nil {
					finished = false
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "setup":
			var setup domain.QuizSetupData
			if err := json.Unmarshal(inbound.Payload, &setup); err != nil {
				send <- errorMessage("invalid setup payload")
				continue
			}
			setup.Name = firstNonEmpty(setup.Name, name)
			if err := h.validator.Validate(setup); err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			if err := run.Begin(r.Context(), setup); err != nil {
				if errors.Is(err, domain.ErrRunBusy) {
					send <- errorMessage("quiz generation already in progress")
				} else {
					send <- errorMessage(err.Error())
				}
			}
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorMessage("invalid answer payload")
				continue
			}
			if fb, ok := run.SelectAnswer(payload.Index); ok {
				send <- outboundMessage[any]{Type: "answerResult", Payload: fb}
			}
			// a repeated or out-of-range selection is a no-op, not an error
		case "restart":
			run.Restart()
		default:
			send <- errorMessage("unsupported message type")
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
