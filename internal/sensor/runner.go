package sensor

import (
	"context"
	"os/exec"
	"time"

	"codeberg.org/mutker/pimon/internal/errors"
)

type execRunner struct {
	timeout time.Duration
}

// NewRunner returns a Runner backed by os/exec. A positive timeout bounds
// each invocation; a stuck command degrades the probe to its default instead
// of hanging the whole aggregation cycle.
func NewRunner(timeout time.Duration) Runner {
	return &execRunner{timeout: timeout}
}

func (r *execRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	out, err := exec.CommandContext(ctx, name, args...).Output()
	if ctx.Err() != nil {
		return "", errors.Wrap(errors.ErrCommandFailed, ctx.Err())
	}
	if err != nil {
		return "", errors.Wrap(errors.ErrCommandFailed, err)
	}

	return string(out), nil
}
