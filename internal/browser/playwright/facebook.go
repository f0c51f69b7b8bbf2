package playwright

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/orgball2608/technews-autopilot/internal/browser"
	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/pkg/errors"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
)

const (
	facebookHome  = "https://www.facebook.com/"
	facebookLogin = "https://www.facebook.com/login"

	selFbEmail     = `#email`
	selFbPass      = `#pass`
	selFbLogin     = `button[name="login"]`
	selFbLoggedIn  = `[aria-label="Your profile"], [aria-label="Account"]`
	selFbComposer  = `//span[contains(text(),"What's on your mind") or contains(text(),"Create post")]`
	selFbTextbox   = `div[role="dialog"] div[role="textbox"]`
	selFbPost      = `div[role="dialog"] div[aria-label="Post"]`
	selFbPermalink = `div[role="article"] a[href*="/posts/"]`
)

// Facebook publishes to a Page timeline. It has no engagement actions.
type Facebook struct {
	page
	pageURL string
}

var _ browser.Driver = (*Facebook)(nil)

func NewFacebook(launcher *Launcher, log logger.Logger) *Facebook {
	return &Facebook{
		page: page{
			launcher: launcher,
			logger:   log.WithComponent("FacebookDriver"),
			timeout:  launcher.cfg.Browser.Timeout,
		},
		pageURL: launcher.cfg.Browser.FacebookPageURL,
	}
}

func (f *Facebook) Platform() domain.Platform {
	return domain.PlatformFacebook
}

func (f *Facebook) RestoreSession(ctx context.Context, state json.RawMessage) (bool, error) {
	if len(state) == 0 {
		return false, nil
	}
	if err := f.loadCookies(state); err != nil {
		return false, err
	}
	if err := f.navigate(ctx, facebookHome); err != nil {
		return false, err
	}
	return f.visible(selFbLoggedIn, 5*time.Second), nil
}

func (f *Facebook) Login(ctx context.Context, creds browser.Credentials) error {
	if err := f.navigate(ctx, facebookLogin); err != nil {
		return err
	}

	login := creds.Email
	if login == "" {
		login = creds.Username
	}
	if err := f.typeHuman(f.tab.Locator(selFbEmail), login); err != nil {
		return fmt.Errorf("could not type email: %w", err)
	}
	if err := f.typeHuman(f.tab.Locator(selFbPass), creds.Password); err != nil {
		return fmt.Errorf("could not type password: %w", err)
	}
	if err := f.tab.Locator(selFbLogin).Click(); err != nil {
		return fmt.Errorf("could not submit login: %w", err)
	}

	if !f.visible(selFbLoggedIn, f.timeout) {
		return fmt.Errorf("%w: facebook login did not complete", browser.ErrLoginRequired)
	}
	f.logger.Info("Logged in", "account", login)
	return nil
}

func (f *Facebook) ExportSession(context.Context) (json.RawMessage, error) {
	return f.exportCookies()
}

// Publish posts msg.Text on the configured Page. Replies are not supported.
func (f *Facebook) Publish(ctx context.Context, msg browser.Message) (string, error) {
	if f.pageURL == "" {
		return "", fmt.Errorf("FACEBOOK_PAGE_URL is not configured")
	}
	if msg.ReplyTo != "" {
		return "", errors.Wrap(errors.ErrUnsupported, "facebook replies")
	}

	if err := f.navigate(ctx, f.pageURL); err != nil {
		return "", err
	}
	if !f.visible(selFbLoggedIn, 5*time.Second) {
		return "", browser.ErrLoginRequired
	}

	if err := f.tab.Locator(selFbComposer).First().Click(); err != nil {
		return "", fmt.Errorf("could not open composer: %w", err)
	}
	box := f.tab.Locator(selFbTextbox).First()
	if err := box.WaitFor(); err != nil {
		return "", fmt.Errorf("composer did not open: %w", err)
	}
	if err := box.Fill(msg.Text); err != nil {
		return "", fmt.Errorf("could not type post: %w", err)
	}
	if err := f.tab.Locator(selFbPost).Click(); err != nil {
		return "", fmt.Errorf("could not submit post: %w", err)
	}

	f.tab.WaitForTimeout(3000)
	if !f.visible(selFbPermalink, 10*time.Second) {
		return f.pageURL, nil
	}
	link, err := f.tab.Locator(selFbPermalink).First().GetAttribute("href")
	if err != nil || link == "" {
		return f.pageURL, nil
	}
	return link, nil
}

func (f *Facebook) Engage(context.Context, domain.EngagementType, string, string) error {
	return errors.Wrap(errors.ErrUnsupported, "facebook engagement")
}

func (f *Facebook) Close() error {
	return f.close()
}
