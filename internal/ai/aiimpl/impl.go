package aiimpl

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/orgball2608/technews-autopilot/internal/ai"
	"github.com/orgball2608/technews-autopilot/internal/metrics"
	"github.com/orgball2608/technews-autopilot/pkg/config"
	"github.com/orgball2608/technews-autopilot/pkg/errors"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
	"go.uber.org/fx"
	"resty.dev/v3"
)

type Opts struct {
	fx.In
	Config    *config.Config
	Logger    logger.Logger
	Lifecycle fx.Lifecycle `optional:"true"`
}

type Impl struct {
	http     *resty.Client
	keys     *KeyRing
	endpoint string
	model    string
	logger   logger.Logger
	// timer is swapped in tests to skip real waits
	timer backoff.Timer
}

var _ ai.Client = (*Impl)(nil)

func New(opts Opts) *Impl {
	client := resty.New().
		SetTimeout(opts.Config.Groq.Timeout).
		SetHeader("Content-Type", "application/json").
		AddResponseMiddleware(metrics.RestyMiddleware)

	impl := &Impl{
		http:     client,
		keys:     NewKeyRing(opts.Config.Groq.Keys),
		endpoint: opts.Config.Groq.Endpoint,
		model:    opts.Config.Groq.Model,
		logger:   opts.Logger.WithComponent("AI"),
	}

	if opts.Lifecycle != nil {
		opts.Lifecycle.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
	}

	if impl.keys.Len() == 0 {
		impl.logger.Warn("No Groq API keys configured, AI calls will fail")
	}

	return impl
}

func (i *Impl) Rewrite(ctx context.Context, title, body string) (string, error) {
	return i.invoke(ctx, rewritePrompt(title, body))
}

func (i *Impl) GenerateReply(ctx context.Context, originalPost, comment string) (string, error) {
	return i.invoke(ctx, replyPrompt(originalPost, comment))
}

func (i *Impl) GenerateComment(ctx context.Context, postContent string) (string, error) {
	return i.invoke(ctx, commentPrompt(postContent))
}

func (i *Impl) SplitIntoThread(_ context.Context, text string, limit int) ([]string, error) {
	return ai.SplitThread(text, limit), nil
}

// invoke runs a prompt with key rotation. Throttled attempts move to the next
// key immediately, other failures rotate and back off 1s, 2s.
func (i *Impl) invoke(ctx context.Context, prompt string) (string, error) {
	if i.keys.Len() == 0 {
		return "", errors.WrapWithCode(errors.ErrNoAPIKeys, errors.CodeAI, "groq call")
	}

	policy := newRotationBackOff()
	b := backoff.WithContext(backoff.WithMaxRetries(policy, maxAttempts-1), ctx)

	attempt := 0
	op := func() (string, error) {
		attempt++
		key, err := i.keys.Current()
		if err != nil {
			return "", backoff.Permanent(err)
		}

		text, err := i.complete(ctx, key, prompt)
		if err == nil {
			metrics.AICalls.WithLabelValues("success").Inc()
			return text, nil
		}

		metrics.AICalls.WithLabelValues("failure").Inc()
		policy.immediate = errors.Transient(err)
		// A plain failure keeps the key when no attempt follows.
		if policy.immediate || attempt < maxAttempts {
			i.keys.Rotate()
			metrics.AIKeyRotations.Inc()
		}

		i.logger.Warn("Groq attempt failed", "attempt", attempt, "error", err, "rotated_to", i.keys.Cursor())
		return "", err
	}

	notify := func(err error, next time.Duration) {
		if next > 0 {
			i.logger.Debug("Backing off before next Groq attempt", "delay", next)
		}
	}

	text, err := backoff.RetryNotifyWithTimerAndData(op, b, notify, i.timer)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.CodeAI, "all groq attempts failed")
	}
	return text, nil
}
