package nats

import (
	"context"
	"errors"
	"net"

	"github.com/nats-io/nats.go"

	"github.com/rvaldezm/docscope/internal/core/domain"
	"github.com/rvaldezm/docscope/internal/infrastructure/resilience"
)

// classifyPublishError maps publish failures onto retry/breaker behavior.
// Connectivity losses retry and count against the breaker; a malformed
// publish (oversized status payload, bad subject) is a caller defect and
// must neither retry nor poison broker health.
func classifyPublishError(err error) resilience.ErrorClassification {
	switch {
	case err == nil:
		return resilience.ErrorClassification{}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	case errors.Is(err, nats.ErrMaxPayload), errors.Is(err, nats.ErrBadSubject):
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	case resilience.IsCircuitOpen(err), isBrokerConnectivity(err):
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	default:
		return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
	}
}

func isBrokerConnectivity(err error) bool {
	for _, sentinel := range []error{
		nats.ErrNoServers,
		nats.ErrTimeout,
		nats.ErrConnectionClosed,
		nats.ErrDisconnected,
		nats.ErrConnectionDraining,
		nats.ErrReconnectBufExceeded,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// markTemporary tags broker-connectivity failures with ErrTemporary so the
// ingestion pipeline can tell "status event delayed, retry later" apart
// from a permanently rejected publish. Already-tagged errors pass through.
func markTemporary(err error) error {
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifyPublishError(err).Retryable {
		return domain.WrapError(domain.ErrTemporary, "publish ingestion status", err)
	}
	return err
}
