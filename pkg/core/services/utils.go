package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/jakechorley/hostelhub/pkg/core/model"
)

// timeNow is swapped out by tests
var timeNow = time.Now

// writeWithRetry runs write, and once more after delay if it fails. A second failure is
// returned wrapped in model.ErrTransientWrite. Not-found and cancellation are not retried.
func writeWithRetry(ctx context.Context, logger *zap.Logger, delay time.Duration, what string, write func() error) error {
	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		err := write()
		if err == nil {
			return struct{}{}, nil
		}
		if isNotFound(err) || errors.Is(err, context.Canceled) {
			return struct{}{}, backoff.Permanent(err)
		}

		logger.Warn("Write failed",
			zap.String("write", what),
			zap.Int("attempt", attempt),
			zap.Error(err))
		return struct{}{}, err
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(delay)),
		backoff.WithMaxTries(2),
	)
	if err == nil {
		return nil
	}

	if isNotFound(err) || errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("failed to %s: %w: %w", what, model.ErrTransientWrite, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound)
}

// requireID rejects blank identifiers as invalid input
func requireID(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return model.NewError(field, fmt.Errorf("is required: %w", model.ErrInvalidInput))
	}
	return nil
}

// uniqueStrings returns values without duplicates, keeping first-seen order
func uniqueStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
