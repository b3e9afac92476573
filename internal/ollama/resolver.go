package ollama

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrNoModelAvailable indicates neither the preferred model nor any
// fallback is available on the server.
var ErrNoModelAvailable = errors.New("no compatible model available")

// Resolver confirms a generation model is available, pulling the
// preferred model or walking an ordered fallback list when it is not.
// The resolved name is returned to the caller; nothing is mutated.
type Resolver struct {
	client    *Client
	fallbacks []string
	logger    *zap.Logger
}

// NewResolver creates a resolver with an ordered fallback list.
func NewResolver(client *Client, fallbacks []string, logger *zap.Logger) *Resolver {
	return &Resolver{client: client, fallbacks: fallbacks, logger: logger}
}

// EnsureModel returns preferred if it is available on the server,
// pulling it if needed. If the pull fails it adopts the first fallback
// already present, and fails with ErrNoModelAvailable only when every
// candidate is missing.
func (r *Resolver) EnsureModel(ctx context.Context, preferred string) (string, error) {
	available, err := r.availableModels(ctx)
	if err == nil && available[preferred] {
		return preferred, nil
	}

	if err == nil {
		r.logger.Info("preferred model not found, attempting pull",
			zap.String("model", preferred))
		if pullErr := r.client.Pull(ctx, preferred); pullErr == nil {
			return preferred, nil
		} else {
			r.logger.Warn("model pull failed", zap.String("model", preferred), zap.Error(pullErr))
		}
	} else {
		r.logger.Warn("model list failed", zap.Error(err))
	}

	// Re-query: the list call above may have failed, or the pull attempt
	// may have partially populated the server.
	available, err = r.availableModels(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoModelAvailable, err)
	}
	for _, fallback := range r.fallbacks {
		if available[fallback] {
			r.logger.Info("using fallback model", zap.String("model", fallback))
			return fallback, nil
		}
	}

	return "", fmt.Errorf("%w: install one with: ollama pull %s", ErrNoModelAvailable, preferred)
}

func (r *Resolver) availableModels(ctx context.Context) (map[string]bool, error) {
	models, err := r.client.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	available := make(map[string]bool, len(models))
	for _, m := range models {
		available[m.Name] = true
	}
	return available, nil
}
