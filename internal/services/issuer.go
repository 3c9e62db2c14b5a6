// server/internal/services/issuer.go
package services

import (
	"context"
	"fmt"
	"math/rand/v2"

	"shipment-tracking-api-server/internal/apperrors"
	"shipment-tracking-api-server/internal/metrics"
)

const (
	trackingCodeSpace    = 1_000_000
	defaultIssueAttempts = 10
)

type codeChecker interface {
	TrackingCodeExists(ctx context.Context, code string) (bool, error)
}

// Issuer hands out tracking codes of the form TRK######.
type Issuer struct {
	codes    codeChecker
	attempts int
	draw     func() int
}

func NewIssuer(codes codeChecker, attempts int) *Issuer {
	if attempts <= 0 {
		attempts = defaultIssueAttempts
	}
	return &Issuer{
		codes:    codes,
		attempts: attempts,
		draw:     func() int { return rand.IntN(trackingCodeSpace) },
	}
}

func FormatTrackingCode(n int) string {
	return fmt.Sprintf("TRK%06d", n)
}

// Issue draws codes until one is not yet taken. The check is advisory: the
// unique index on trackingCode is what finally rejects a duplicate.
func (i *Issuer) Issue(ctx context.Context) (string, error) {
	for attempt := 0; attempt < i.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		code := FormatTrackingCode(i.draw())
		exists, err := i.codes.TrackingCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
		metrics.TrackingCodeCollisionsTotal.Inc()
	}
	return "", fmt.Errorf("%w after %d attempts", apperrors.ErrIssuanceExhausted, i.attempts)
}
