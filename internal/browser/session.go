package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/internal/repositories/credential"
	"github.com/orgball2608/technews-autopilot/internal/repositories/session"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
)

type SessionOpts struct {
	Driver      Driver
	Credentials credential.Repository
	Sessions    session.Repository
	Logger      logger.Logger
	UserAgent   string
	// OnLoginFailure is called from the worker goroutine when a login attempt fails.
	OnLoginFailure func(platform domain.Platform, err error)
}

type request struct {
	ctx    context.Context
	fn     func(ctx context.Context, d Driver) (string, error)
	result chan result
}

type result struct {
	ref string
	err error
}

// Session serialises every driver call of one platform through a single goroutine.
type Session struct {
	platform    domain.Platform
	driver      Driver
	credentials credential.Repository
	sessions    session.Repository
	logger      logger.Logger
	userAgent   string
	onLoginFail func(platform domain.Platform, err error)

	requests  chan request
	quit      chan struct{}
	closeOnce sync.Once
	done      chan struct{}
	closeErr  error

	// owned by the loop goroutine
	ready     bool
	sessionID string
}

func NewSession(opts SessionOpts) *Session {
	platform := opts.Driver.Platform()
	s := &Session{
		platform:    platform,
		driver:      opts.Driver,
		credentials: opts.Credentials,
		sessions:    opts.Sessions,
		logger:      opts.Logger.WithComponent("BrowserSession." + string(platform)),
		userAgent:   opts.UserAgent,
		onLoginFail: opts.OnLoginFailure,
		requests:    make(chan request),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *Session) Platform() domain.Platform {
	return s.platform
}

func (s *Session) Publish(ctx context.Context, msg Message) (string, error) {
	return s.do(ctx, func(ctx context.Context, d Driver) (string, error) {
		return d.Publish(ctx, msg)
	})
}

func (s *Session) Engage(ctx context.Context, action domain.EngagementType, target, content string) error {
	_, err := s.do(ctx, func(ctx context.Context, d Driver) (string, error) {
		return "", d.Engage(ctx, action, target, content)
	})
	return err
}

// Close stops the worker and closes the driver. Safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() { close(s.quit) })
	<-s.done
	return s.closeErr
}

func (s *Session) do(ctx context.Context, fn func(ctx context.Context, d Driver) (string, error)) (string, error) {
	req := request{ctx: ctx, fn: fn, result: make(chan result, 1)}

	select {
	case s.requests <- req:
	case <-s.quit:
		return "", ErrClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case res := <-req.result:
		return res.ref, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *Session) loop() {
	defer close(s.done)

	for {
		select {
		case <-s.quit:
			s.closeErr = s.driver.Close()
			return
		case req := <-s.requests:
			if err := req.ctx.Err(); err != nil {
				req.result <- result{err: err}
				continue
			}
			ref, err := s.handle(req)
			req.result <- result{ref: ref, err: err}
		}
	}
}

func (s *Session) handle(req request) (string, error) {
	if err := s.ensureReady(req.ctx); err != nil {
		return "", err
	}

	ref, err := req.fn(req.ctx, s.driver)
	if errors.Is(err, ErrLoginRequired) {
		s.logger.Warn("Driver reported lost session, will log in again on next request")
		s.ready = false
	}
	if err == nil && s.sessionID != "" {
		if terr := s.sessions.Touch(req.ctx, s.sessionID, time.Now().UTC()); terr != nil {
			s.logger.Warn("Failed to touch browser session", "error", terr)
		}
	}
	return ref, err
}

func (s *Session) ensureReady(ctx context.Context) error {
	if s.ready {
		return nil
	}

	stored, err := s.sessions.GetActive(ctx, s.platform)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		s.logger.Warn("Failed to load stored session", "error", err)
	}

	var state []byte
	if stored != nil {
		state = stored.SessionData
	}

	ok, err := s.driver.RestoreSession(ctx, state)
	if err != nil {
		s.logger.Warn("Failed to restore session", "error", err)
	}
	if ok {
		s.ready = true
		if stored != nil {
			s.sessionID = stored.ID
		}
		s.logger.Info("Session restored")
		return nil
	}

	if err := s.login(ctx); err != nil {
		if s.onLoginFail != nil {
			s.onLoginFail(s.platform, err)
		}
		return err
	}
	return nil
}

func (s *Session) login(ctx context.Context) error {
	cred, err := s.credentials.GetActive(ctx, s.platform)
	if errors.Is(err, credential.ErrNotFound) {
		return fmt.Errorf("%w: no active %s credential", ErrLoginRequired, s.platform)
	}
	if err != nil {
		return fmt.Errorf("failed to load %s credential: %w", s.platform, err)
	}

	creds, err := ParseCredentials(cred.Credentials)
	if err != nil {
		return fmt.Errorf("malformed %s credential %s: %w", s.platform, cred.ID, err)
	}

	s.logger.Info("Logging in", "account", cred.AccountName)
	if err := s.driver.Login(ctx, creds); err != nil {
		return fmt.Errorf("%s login failed: %w", s.platform, err)
	}
	s.ready = true

	now := time.Now().UTC()
	if err := s.credentials.MarkLogin(ctx, cred.ID, now); err != nil {
		s.logger.Warn("Failed to record last login", "error", err)
	}

	state, err := s.driver.ExportSession(ctx)
	if err != nil {
		s.logger.Warn("Failed to export session after login", "error", err)
		return nil
	}

	saved, err := s.sessions.Save(ctx, domain.BrowserSession{
		Platform:    s.platform,
		SessionData: state,
		UserAgent:   s.userAgent,
		IsActive:    true,
		LastUsed:    now,
	})
	if err != nil {
		s.logger.Warn("Failed to persist session", "error", err)
		return nil
	}
	s.sessionID = saved.ID
	return nil
}
