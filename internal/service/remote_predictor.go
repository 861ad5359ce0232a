package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"krishisense/internal/model"
)

// RemotePredictor scores feature vectors with an HTTP model server
type RemotePredictor struct {
	endpoint   string
	httpClient *http.Client
}

// NewRemotePredictor creates a predictor for baseURL/predict
func NewRemotePredictor(baseURL string, timeout time.Duration) *RemotePredictor {
	return &RemotePredictor{
		endpoint: strings.TrimRight(baseURL, "/") + "/predict",
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type remotePredictRequest struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

type remotePredictResponse struct {
	Predictions []float64 `json:"predictions"`
}

func (p *RemotePredictor) Name() string {
	return "remote:" + p.endpoint
}

// Predict sends one positional row and expects exactly one prediction back.
func (p *RemotePredictor) Predict(fv model.FeatureVector) (float64, error) {
	body, err := json.Marshal(remotePredictRequest{
		Columns: model.FeatureColumns,
		Rows:    [][]any{fv.Values()},
	})
	if err != nil {
		return 0, p.fail(fmt.Errorf("failed to marshal request: %w", err))
	}

	resp, err := p.httpClient.Post(p.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, p.fail(fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, p.fail(fmt.Errorf("model server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))))
	}

	var result remotePredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, p.fail(fmt.Errorf("failed to decode response: %w", err))
	}
	if len(result.Predictions) != 1 {
		return 0, p.fail(fmt.Errorf("expected 1 prediction, got %d", len(result.Predictions)))
	}
	return result.Predictions[0], nil
}

func (p *RemotePredictor) fail(err error) error {
	return &InferenceError{Predictor: p.Name(), Err: err}
}

var _ Predictor = (*RemotePredictor)(nil)
