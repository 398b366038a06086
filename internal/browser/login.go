package browser

import (
	"context"

	"github.com/playwright-community/playwright-go"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Login form selectors. The site is an Angular Material SPA, so some
// of these are positional and break when the form layout changes.
const (
	selLoginButton = "nn-header-auth-state button"
	selLoginUser   = "form input[type='email'], form input[name='email'], #mat-input-5"
	selLoginPass   = "form input[type='password'], #mat-input-6"
	selLoginSubmit = "form .login__inputs button"
	selLoginMarker = "nn-user-info"
)

// Login signs into the site and saves the session state so later runs
// can skip this step.
func (s *Session) Login(ctx context.Context, user, password string) error {
	if user == "" || password == "" {
		return eris.New("browser: login requires credentials")
	}
	if err := s.nav(ctx, s.baseURL+"/"); err != nil {
		return err
	}

	log := zap.L().With(zap.String("user", user))
	log.Info("browser: logging in")

	btn := s.page.Locator(selLoginButton).First()
	if err := btn.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(s.timeoutMS)}); err != nil {
		return eris.Wrap(err, "browser: open login form")
	}

	if err := s.page.Locator(selLoginUser).First().Fill(user); err != nil {
		return eris.Wrap(err, "browser: fill login")
	}
	if err := s.page.Locator(selLoginPass).First().Fill(password); err != nil {
		return eris.Wrap(err, "browser: fill password")
	}
	if err := s.page.Locator(selLoginSubmit).First().Click(); err != nil {
		return eris.Wrap(err, "browser: submit login")
	}

	marker := s.page.Locator(selLoginMarker).First()
	if err := marker.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(s.timeoutMS),
	}); err != nil {
		return eris.Wrap(err, "browser: login not confirmed")
	}

	if err := s.SaveState(); err != nil {
		log.Warn("browser: session state not saved", zap.Error(err))
	}
	log.Info("browser: login ok")
	return nil
}

// LoggedIn reports whether the current session already carries an
// authenticated state.
func (s *Session) LoggedIn(ctx context.Context) (bool, error) {
	if err := s.nav(ctx, s.baseURL+"/"); err != nil {
		return false, err
	}
	visible, err := s.page.Locator(selLoginMarker).First().IsVisible()
	if err != nil {
		return false, nil
	}
	return visible, nil
}
