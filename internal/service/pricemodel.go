package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"krishisense/internal/config"
	"krishisense/internal/model"
)

// Predictor maps a feature vector to a price
type Predictor interface {
	Predict(fv model.FeatureVector) (float64, error)
	Name() string
}

// PredictorLoader produces the real predictor. It runs at most once per ModelService.
type PredictorLoader func(ctx context.Context) (Predictor, string, error)

type loadedPredictor struct {
	predictor      Predictor
	source         string
	fallbackReason string
}

// ModelService owns the process-wide predictor, loading it lazily on first use
type ModelService struct {
	loader PredictorLoader
	rmse   float64
	mae    float64

	mu     sync.Mutex
	loaded atomic.Pointer[loadedPredictor]
	loads  atomic.Int32
}

// NewModelService creates a model service backed by the configured artifact, download URL or remote service
func NewModelService(cfg *config.ModelConfig) *ModelService {
	return NewModelServiceWithLoader(DefaultLoader(cfg), cfg.RMSE, cfg.MAE)
}

// NewModelServiceWithLoader creates a model service with a custom loader
func NewModelServiceWithLoader(loader PredictorLoader, rmse, mae float64) *ModelService {
	return &ModelService{
		loader: loader,
		rmse:   rmse,
		mae:    mae,
	}
}

// Predictor returns the active predictor, loading it on first call.
// Concurrent first callers block on the same load; a failed load installs the fallback.
func (s *ModelService) Predictor() Predictor {
	if lp := s.loaded.Load(); lp != nil {
		return lp.predictor
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if lp := s.loaded.Load(); lp != nil {
		return lp.predictor
	}

	s.loads.Add(1)
	lp := &loadedPredictor{}
	predictor, source, err := s.runLoader()
	if err != nil || predictor == nil {
		reason := "loader returned no predictor"
		if err != nil {
			reason = err.Error()
		}
		log.Printf("⚠️  Using fallback price estimator. Reason: %s", reason)
		lp.predictor = FallbackPredictor{}
		lp.source = "fallback"
		lp.fallbackReason = reason
	} else {
		log.Printf("✅ Loaded price model %s from %s", predictor.Name(), source)
		lp.predictor = predictor
		lp.source = source
	}
	s.loaded.Store(lp)
	return lp.predictor
}

// runLoader turns a loader panic into an error so the fallback is still installed exactly once.
func (s *ModelService) runLoader() (predictor Predictor, source string, err error) {
	defer func() {
		if r := recover(); r != nil {
			predictor, source = nil, ""
			err = fmt.Errorf("model loader panicked: %v", r)
		}
	}()
	return s.loader(context.Background())
}

// Predict scores a fully populated feature vector.
func (s *ModelService) Predict(fv model.FeatureVector) (float64, error) {
	predictor := s.Predictor()
	if err := fv.Validate(); err != nil {
		return 0, &InferenceError{Predictor: predictor.Name(), Err: err}
	}

	price, err := predictor.Predict(fv)
	if err != nil {
		var inf *InferenceError
		if errors.As(err, &inf) {
			return 0, err
		}
		return 0, &InferenceError{Predictor: predictor.Name(), Err: err}
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, &InferenceError{Predictor: predictor.Name(), Err: fmt.Errorf("non-finite prediction %v", price)}
	}
	return math.Max(0, price), nil
}

// LoadCount reports how many times the loader has run.
func (s *ModelService) LoadCount() int {
	return int(s.loads.Load())
}

// Info describes the active model without forcing a load.
func (s *ModelService) Info() model.ModelInfo {
	info := model.ModelInfo{
		RMSE:    s.rmse,
		MAE:     s.mae,
		Columns: model.FeatureColumns,
	}
	lp := s.loaded.Load()
	if lp == nil {
		info.Name = "not loaded"
		return info
	}
	info.Loaded = true
	info.Name = lp.predictor.Name()
	info.Source = lp.source
	info.Fallback = lp.fallbackReason != ""
	info.FallbackReason = lp.fallbackReason
	return info
}

// DefaultLoader prefers a remote predictor, then the local artifact (downloading it once if missing).
func DefaultLoader(cfg *config.ModelConfig) PredictorLoader {
	return func(ctx context.Context) (Predictor, string, error) {
		if cfg.ServiceURL != "" {
			return NewRemotePredictor(cfg.ServiceURL, cfg.DownloadTimeout), cfg.ServiceURL, nil
		}

		if err := downloadModelIfNeeded(ctx, cfg.Path, cfg.URL, cfg.DownloadTimeout); err != nil {
			return nil, "", err
		}
		artifact, err := LoadLinearArtifact(cfg.Path)
		if err != nil {
			return nil, "", err
		}
		return artifact, cfg.Path, nil
	}
}

// downloadModelIfNeeded fetches the artifact to path when it does not exist yet. It never retries.
func downloadModelIfNeeded(ctx context.Context, path, url string, timeout time.Duration) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if url == "" {
		return fmt.Errorf("model file is missing at %s and MODEL_URL is not set", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create download request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model download failed with status %d", resp.StatusCode)
	}

	// Write to a temp file first so a cut-off download never leaves a truncated artifact behind.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".model-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move model into place: %w", err)
	}
	log.Printf("✅ Downloaded price model to %s", path)
	return nil
}
