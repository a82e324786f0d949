package collect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/diogo-arista/arista-tac-utilities/internal/catalog"
	"github.com/diogo-arista/arista-tac-utilities/internal/transport"
)

// DefaultTimeout bounds a single command when the caller does not say
// otherwise. Commands like "show tech" relatives can be slow on loaded
// supervisors; a minute is generous without hanging the whole run.
const DefaultTimeout = 60 * time.Second

// Session is the slice of transport.Conn the executor needs.
type Session interface {
	Run(ctx context.Context, command string, structured bool) (string, error)
}

// Executor runs single commands and normalizes their outcomes.
type Executor struct {
	session Session
	timeout time.Duration
	logger  *zap.Logger
}

// NewExecutor wraps a session. A non-positive timeout selects
// DefaultTimeout.
func NewExecutor(session Session, timeout time.Duration, logger *zap.Logger) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{
		session: session,
		timeout: timeout,
		logger:  logger.Named("collect"),
	}
}

// Execute runs one command and always returns a Result; errors are folded
// into it with a classified reason.
func (e *Executor) Execute(ctx context.Context, spec catalog.Spec) Result {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	raw, err := e.session.Run(ctx, spec.Text, spec.Shape == catalog.Structured)
	elapsed := time.Since(start)

	if err != nil {
		reason := FailTransport
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			reason = FailTimeout
		case transport.IsRemoteFailure(err):
			reason = FailExit
		}
		e.logger.Warn("command failed",
			zap.String("key", spec.Key),
			zap.String("reason", string(reason)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return failed(spec, reason, err, elapsed)
	}

	if spec.Shape == catalog.Structured {
		payload, derr := decodeTree(raw)
		if derr != nil {
			e.logger.Warn("command output not decodable",
				zap.String("key", spec.Key),
				zap.Error(derr))
			return failed(spec, FailDecode, derr, elapsed)
		}
		e.logger.Debug("command ok", zap.String("key", spec.Key), zap.Duration("elapsed", elapsed))
		return succeeded(spec, payload, "", elapsed)
	}

	e.logger.Debug("command ok", zap.String("key", spec.Key), zap.Duration("elapsed", elapsed))
	return succeeded(spec, nil, raw, elapsed)
}

// decodeTree parses structured output, insisting on a JSON object at the
// top level because that is what every EOS show command emits.
func decodeTree(raw string) (map[string]any, error) {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, fmt.Errorf("decode structured output: %w", err)
	}
	tree, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("structured output is %T, want a JSON object", value)
	}
	return tree, nil
}
