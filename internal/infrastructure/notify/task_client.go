// Package notify contiene los adaptadores HTTP hacia los canales externos de
// notificación: el canal de tareas del farmacéutico y el canal de
// publicaciones del marketplace. Ambos son best-effort desde el punto de
// vista de los runners; los reintentos viven en el colaborador externo.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fixmation/DigiFarmacy-sub001/internal/application/automation"
)

const defaultChannelTimeout = 15 * time.Second

var _ automation.PharmacistNotifier = (*TaskChannelClient)(nil)

// TaskChannelClient implementa PharmacistNotifier contra el canal HTTP de
// tareas (función edge del backend principal). Autentica con una API key
// compartida en el header X-Api-Key.
type TaskChannelClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewTaskChannelClient construye el cliente del canal de tareas.
func NewTaskChannelClient(baseURL, apiKey string) *TaskChannelClient {
	return &TaskChannelClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultChannelTimeout},
	}
}

type taskRequest struct {
	PharmacistID string `json:"pharmacist_id"`
	Message      string `json:"message"`
}

type taskResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// SendTask entrega una tarea al farmacéutico. Retorna el resultado del canal;
// un status HTTP distinto de 2xx se reporta como error.
func (c *TaskChannelClient) SendTask(ctx context.Context, pharmacistID, message string) (*automation.TaskResult, error) {
	body, err := json.Marshal(taskRequest{PharmacistID: pharmacistID, Message: message})
	if err != nil {
		return nil, fmt.Errorf("serializar tarea: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("crear request de tarea: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("enviar tarea: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("leer respuesta del canal de tareas: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("canal de tareas respondió %d: %s", resp.StatusCode, raw)
	}

	var out taskResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decodificar respuesta del canal de tareas: %w", err)
	}
	if !out.Success {
		return &automation.TaskResult{Success: false}, fmt.Errorf("canal de tareas rechazó el mensaje: %s", out.Error)
	}
	return &automation.TaskResult{Success: true, MessageID: out.MessageID}, nil
}
