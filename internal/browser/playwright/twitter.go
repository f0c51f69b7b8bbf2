package playwright

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/orgball2608/technews-autopilot/internal/browser"
	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/pkg/errors"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
)

const (
	twitterHome    = "https://twitter.com/home"
	twitterLogin   = "https://twitter.com/i/flow/login"
	twitterProfile = "https://twitter.com/%s"

	selAccountSwitcher = `[data-testid="SideNav_AccountSwitcher_Button"]`
	selLoginInput      = `input[autocomplete="username"]`
	selLoginNext       = `//span[text()="Next"]`
	selChallengeInput  = `input[data-testid="ocfEnterTextTextInput"]`
	selChallengeNext   = `[data-testid="ocfEnterTextNextButton"]`
	selPasswordInput   = `input[name="password"]`
	selLoginButton     = `[data-testid="LoginForm_Login_Button"]`
	selNewTweet        = `[data-testid="SideNav_NewTweet_Button"]`
	selTextarea        = `[data-testid="tweetTextarea_0"]`
	selTweetButton     = `[data-testid="tweetButton"]`
	selTweetInline     = `[data-testid="tweetButtonInline"]`
	selTweet           = `article[data-testid="tweet"]`
	selLike            = `[data-testid="like"]`
	selRetweet         = `[data-testid="retweet"]`
	selRetweetConfirm  = `[data-testid="retweetConfirm"]`
	selReply           = `[data-testid="reply"]`
	selStatusLink      = `a[href*="/status/"]`
	selToastLink       = `[data-testid="toast"] a[href*="/status/"]`
	selProfileLink     = `[data-testid="AppTabBar_Profile_Link"]`
)

// Twitter publishes tweets and reply chains through the web client.
type Twitter struct {
	page
}

var _ browser.Driver = (*Twitter)(nil)

func NewTwitter(launcher *Launcher, log logger.Logger) *Twitter {
	return &Twitter{page: page{
		launcher: launcher,
		logger:   log.WithComponent("TwitterDriver"),
		timeout:  launcher.cfg.Browser.Timeout,
	}}
}

func (t *Twitter) Platform() domain.Platform {
	return domain.PlatformTwitter
}

func (t *Twitter) RestoreSession(ctx context.Context, state json.RawMessage) (bool, error) {
	if len(state) == 0 {
		return false, nil
	}
	if err := t.loadCookies(state); err != nil {
		return false, err
	}
	if err := t.navigate(ctx, twitterHome); err != nil {
		return false, err
	}
	return t.visible(selAccountSwitcher, 5*time.Second), nil
}

func (t *Twitter) Login(ctx context.Context, creds browser.Credentials) error {
	if err := t.navigate(ctx, twitterLogin); err != nil {
		return err
	}

	username := t.tab.Locator(selLoginInput)
	if err := username.WaitFor(); err != nil {
		return fmt.Errorf("login form did not load: %w", err)
	}
	if err := t.typeHuman(username, creds.Username); err != nil {
		return fmt.Errorf("could not type username: %w", err)
	}
	if err := t.tab.Locator(selLoginNext).Click(); err != nil {
		return fmt.Errorf("could not submit username: %w", err)
	}

	// unusual activity challenge asks for the email or phone first
	if t.visible(selChallengeInput, 3*time.Second) && creds.Email != "" {
		if err := t.typeHuman(t.tab.Locator(selChallengeInput), creds.Email); err != nil {
			return fmt.Errorf("could not type challenge answer: %w", err)
		}
		if err := t.tab.Locator(selChallengeNext).Click(); err != nil {
			return fmt.Errorf("could not submit challenge: %w", err)
		}
	}

	password := t.tab.Locator(selPasswordInput)
	if err := password.WaitFor(); err != nil {
		return fmt.Errorf("password field did not appear: %w", err)
	}
	if err := t.typeHuman(password, creds.Password); err != nil {
		return fmt.Errorf("could not type password: %w", err)
	}
	if err := t.tab.Locator(selLoginButton).Click(); err != nil {
		return fmt.Errorf("could not submit login: %w", err)
	}

	if !t.visible(selAccountSwitcher, t.timeout) {
		return fmt.Errorf("%w: twitter login did not reach the home timeline", browser.ErrLoginRequired)
	}
	t.logger.Info("Logged in", "username", creds.Username)
	return nil
}

func (t *Twitter) ExportSession(context.Context) (json.RawMessage, error) {
	return t.exportCookies()
}

// Publish posts a tweet, or a reply to msg.ReplyTo, and returns the new tweet URL.
func (t *Twitter) Publish(ctx context.Context, msg browser.Message) (string, error) {
	if msg.ReplyTo != "" {
		if err := t.navigate(ctx, msg.ReplyTo); err != nil {
			return "", err
		}
		return t.reply(ctx, msg.Text)
	}

	if err := t.navigate(ctx, twitterHome); err != nil {
		return "", err
	}
	if !t.visible(selAccountSwitcher, 5*time.Second) {
		return "", browser.ErrLoginRequired
	}

	if err := t.tab.Locator(selNewTweet).Click(); err != nil {
		return "", fmt.Errorf("could not open composer: %w", err)
	}
	if err := t.compose(msg.Text, selTweetButton); err != nil {
		return "", err
	}
	return t.latestTweetURL(ctx)
}

func (t *Twitter) Engage(ctx context.Context, action domain.EngagementType, target, content string) error {
	if err := t.navigate(ctx, fmt.Sprintf(twitterProfile, strings.TrimPrefix(target, "@"))); err != nil {
		return err
	}
	if !t.visible(selTweet, t.timeout) {
		return fmt.Errorf("no tweets found for @%s", target)
	}
	tweet := t.tab.Locator(selTweet).First()

	switch action {
	case domain.EngagementLike:
		return tweet.Locator(selLike).Click()
	case domain.EngagementRetweet:
		if err := tweet.Locator(selRetweet).Click(); err != nil {
			return err
		}
		return t.tab.Locator(selRetweetConfirm).Click()
	case domain.EngagementComment, domain.EngagementReply:
		if err := tweet.Locator(selReply).Click(); err != nil {
			return err
		}
		return t.compose(content, selTweetButton)
	default:
		return errors.Wrap(errors.ErrUnsupported, fmt.Sprintf("twitter action %q", action))
	}
}

func (t *Twitter) Close() error {
	return t.close()
}

func (t *Twitter) reply(ctx context.Context, text string) (string, error) {
	if !t.visible(selTweet, t.timeout) {
		return "", fmt.Errorf("reply target did not load")
	}
	if err := t.tab.Locator(selTweet).First().Locator(selReply).Click(); err != nil {
		return "", fmt.Errorf("could not open reply box: %w", err)
	}
	if err := t.compose(text, selTweetButton); err != nil {
		return "", err
	}
	return t.latestTweetURL(ctx)
}

func (t *Twitter) compose(text, submit string) error {
	area := t.tab.Locator(selTextarea).First()
	if err := area.WaitFor(); err != nil {
		return fmt.Errorf("composer did not open: %w", err)
	}
	if err := area.Click(); err != nil {
		return err
	}
	if err := t.typeHuman(area, text); err != nil {
		return fmt.Errorf("could not type tweet: %w", err)
	}

	button := t.tab.Locator(submit)
	if visible, _ := button.IsVisible(); !visible {
		button = t.tab.Locator(selTweetInline)
	}
	if err := button.Click(); err != nil {
		return fmt.Errorf("could not send tweet: %w", err)
	}

	t.tab.WaitForTimeout(2000)
	return nil
}

// latestTweetURL reads the permalink of the tweet just sent, from the
// confirmation toast or else from the newest tweet on the own profile.
func (t *Twitter) latestTweetURL(ctx context.Context) (string, error) {
	if t.visible(selToastLink, 5*time.Second) {
		if link, err := t.tab.Locator(selToastLink).First().GetAttribute("href"); err == nil && link != "" {
			return absoluteTwitterURL(link), nil
		}
	}

	profile, err := t.tab.Locator(selProfileLink).GetAttribute("href")
	if err != nil || profile == "" {
		return "", fmt.Errorf("could not find own profile link: %w", err)
	}
	if err := t.navigate(ctx, absoluteTwitterURL(profile)); err != nil {
		return "", err
	}
	if !t.visible(selTweet, t.timeout) {
		return "", fmt.Errorf("posted tweet not found on profile")
	}

	link, err := t.tab.Locator(selTweet).First().Locator(selStatusLink).First().GetAttribute("href")
	if err != nil || link == "" {
		return "", fmt.Errorf("could not read tweet permalink: %w", err)
	}
	return absoluteTwitterURL(link), nil
}

func absoluteTwitterURL(link string) string {
	if strings.HasPrefix(link, "/") {
		return "https://twitter.com" + link
	}
	return link
}
