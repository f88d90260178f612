package util

import (
	"encoding/json"
	"fmt"
	"net/http"

	"valsia/internal/app/models"
)

// WriteSSE 按 type 扁平化输出一条 data: 事件并立即 flush
func WriteSSE(w http.ResponseWriter, eventType string, data interface{}) error {
	var event map[string]interface{}

	switch v := data.(type) {
	case models.HeartbeatEvent:
		event = map[string]interface{}{
			"type": eventType,
		}
	case models.AppendTextEvent:
		event = map[string]interface{}{
			"type": eventType,
			"text": v.Text,
		}
	case models.ErrorEvent:
		event = map[string]interface{}{
			"type":  eventType,
			"error": v.Error,
		}
		if v.Status != 0 {
			event["status"] = v.Status
		}
	case models.MessageEndEvent:
		event = map[string]interface{}{
			"type":     eventType,
			"response": v.Response,
		}
	default:
		if m, ok := data.(map[string]interface{}); ok {
			m["type"] = eventType
			event = m
		} else {
			return fmt.Errorf("unsupported event data type: %T", data)
		}
	}

	bytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "data: %s\n\n", bytes); err != nil {
		return err
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

func WriteHeartbeat(w http.ResponseWriter) error {
	return WriteSSE(w, "heartbeat", models.HeartbeatEvent{})
}

func WriteAppendText(w http.ResponseWriter, text string) error {
	return WriteSSE(w, "append-text", models.AppendTextEvent{Text: text})
}

func WriteError(w http.ResponseWriter, message string, status int) error {
	return WriteSSE(w, "error", models.ErrorEvent{Error: message, Status: status})
}

func WriteMessageEnd(w http.ResponseWriter, response string) error {
	return WriteSSE(w, "message-end", models.MessageEndEvent{Response: response})
}

func WriteDone(w http.ResponseWriter) {
	_, _ = fmt.Fprintf(w, "data: [DONE]\n\n")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
