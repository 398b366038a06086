package browser

import (
	"context"
	"net/url"
	"regexp"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/scoutline/scout-cli/internal/identity"
	"github.com/scoutline/scout-cli/internal/model"
	"github.com/scoutline/scout-cli/internal/pipeline"
	"github.com/scoutline/scout-cli/internal/recency"
)

const (
	selCard        = "nn-nanny-resume-card:visible"
	selCardLink    = "a[href^='/nyanya/']"
	selCardMore    = "button.button-chevron, .card-resume__more .button-chevron"
	selNextPage    = "button.pagination__nav_next"
	selProfileMark = "h1.profile-header__title"
)

var profileIDRe = regexp.MustCompile(`/nyanya/[^/]+/(\d+)/?$`)

// Reader implements pipeline.ProfileReader over a Session.
type Reader struct {
	s *Session

	// commute origin; empty disables travel-time probing.
	commuteOrigin string

	listingURL string
}

var _ pipeline.ProfileReader = (*Reader)(nil)

// NewReader wraps a session for SERP walking.
func NewReader(s *Session, commuteOrigin string) *Reader {
	return &Reader{s: s, commuteOrigin: commuteOrigin}
}

// OpenSearch navigates to the first listing page for a query.
func (r *Reader) OpenSearch(ctx context.Context, query string) error {
	u := r.s.baseURL + "/nyanya/" + url.PathEscape(query)
	if query == "" {
		u = r.s.baseURL + "/nyanya/moscow"
	}
	if err := r.s.nav(ctx, u); err != nil {
		return err
	}
	r.listingURL = r.s.page.URL()

	first := r.s.page.Locator(selCard).First()
	err := first.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(r.s.timeoutMS),
	})
	return eris.Wrap(err, "browser: no cards on listing")
}

// Cards reads the listing entries on the current results page. Cards
// without a usable profile link are dropped.
func (r *Reader) Cards(ctx context.Context) ([]pipeline.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "browser: cards")
	}

	locators, err := r.s.page.Locator(selCard).All()
	if err != nil {
		return nil, eris.Wrap(err, "browser: list cards")
	}

	cards := make([]pipeline.Card, 0, len(locators))
	for _, card := range locators {
		u := r.cardURL(card)
		if u == "" {
			continue
		}
		m := profileIDRe.FindStringSubmatch(u)
		if m == nil {
			continue
		}
		cards = append(cards, pipeline.Card{
			ID:            m[1],
			URL:           u,
			LastActiveRaw: r.cardLastActive(card),
		})
	}
	zap.L().Debug("browser: cards read", zap.Int("count", len(cards)))
	return cards, nil
}

func (r *Reader) cardURL(card playwright.Locator) string {
	link := card.Locator(selCardLink).First()
	if n, err := link.Count(); err != nil || n == 0 {
		return ""
	}
	href, err := link.GetAttribute("href")
	if err != nil {
		return ""
	}
	return identity.NormalizeURL(r.s.absoluteURL(href))
}

// cardLastActive slices the activity badge out of the card text.
func (r *Reader) cardLastActive(card playwright.Locator) string {
	blob, err := card.InnerText(playwright.LocatorInnerTextOptions{
		Timeout: playwright.Float(1500),
	})
	if err != nil {
		return ""
	}
	return recency.SliceLastActive(blob)
}

// OpenCandidate clicks through a card into the profile page.
func (r *Reader) OpenCandidate(ctx context.Context, card pipeline.Card) error {
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "browser: open candidate")
	}
	if err := r.s.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "browser: rate limit wait")
	}

	loc, err := r.locateCard(card.ID)
	if err != nil {
		// Card scrolled out of the DOM; navigate directly.
		return r.s.nav(ctx, card.URL)
	}

	link := loc.Locator(selCardLink).First()
	if n, cntErr := link.Count(); cntErr == nil && n > 0 {
		err = link.Click()
	} else {
		err = loc.Locator(selCardMore).First().Click()
	}
	if err != nil {
		return eris.Wrapf(err, "browser: click card %s", card.ID)
	}

	marker := r.s.page.Locator(selProfileMark).First()
	if err := marker.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(r.s.timeoutMS),
	}); err != nil {
		return eris.Wrapf(err, "browser: profile %s did not load", card.ID)
	}
	return nil
}

// locateCard finds the card whose link points at the given profile ID.
func (r *Reader) locateCard(id string) (playwright.Locator, error) {
	loc := r.s.page.Locator(selCard).
		Filter(playwright.LocatorFilterOptions{
			Has: r.s.page.Locator("a[href*='/" + id + "']"),
		}).First()
	if n, err := loc.Count(); err != nil || n == 0 {
		return nil, eris.Errorf("browser: card %s not on page", id)
	}
	return loc, nil
}

// ReturnToListing goes back to the results page after a profile visit.
func (r *Reader) ReturnToListing(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "browser: return to listing")
	}
	if _, err := r.s.page.GoBack(playwright.PageGoBackOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		// SPA back can fail after deep navigation; reload the listing.
		if r.listingURL == "" {
			return eris.Wrap(err, "browser: go back")
		}
		if navErr := r.s.nav(ctx, r.listingURL); navErr != nil {
			return navErr
		}
	}
	err := r.s.page.Locator(selCard).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(r.s.timeoutMS),
	})
	return eris.Wrap(err, "browser: listing did not restore")
}

// AdvancePage clicks the next-page control and waits until the first
// card's URL actually changes. The SPA paginates in place, so URL
// watching is the only reliable signal.
func (r *Reader) AdvancePage(ctx context.Context) (bool, error) {
	before := ""
	if locators, err := r.s.page.Locator(selCard).All(); err == nil && len(locators) > 0 {
		before = r.cardURL(locators[0])
	}

	next := r.s.page.Locator(selNextPage).First()
	n, err := next.Count()
	if err != nil || n == 0 {
		return false, nil
	}
	if disabled, _ := next.GetAttribute("disabled"); disabled != "" {
		return false, nil
	}
	if aria, _ := next.GetAttribute("aria-disabled"); aria == "true" || aria == "1" {
		return false, nil
	}

	if err := r.s.limiter.Wait(ctx); err != nil {
		return false, eris.Wrap(err, "browser: rate limit wait")
	}
	if err := next.Click(); err != nil {
		return false, eris.Wrap(err, "browser: click next page")
	}

	deadline := time.Now().Add(time.Duration(r.s.timeoutMS) * time.Millisecond)
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return false, eris.Wrap(err, "browser: advance page")
		}
		if locators, err := r.s.page.Locator(selCard).All(); err == nil && len(locators) > 0 {
			after := r.cardURL(locators[0])
			if after != "" && after != before {
				r.listingURL = r.s.page.URL()
				return true, nil
			}
		}
		time.Sleep(200 * time.Millisecond)
	}
	return false, nil
}

// ReadProfile probes every field of the currently open profile page.
func (r *Reader) ReadProfile(ctx context.Context) (*model.RawProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "browser: read profile")
	}

	html, err := r.s.page.Content()
	if err != nil {
		return nil, eris.Wrap(err, "browser: page content")
	}

	p := &model.RawProfile{
		Name:            r.probeName(html),
		Age:             r.probeAge(html),
		ExperienceYears: r.probeExperience(html),
		About:           r.probeAbout(),
		Education:       r.probeEducation(),
		Recommendations: r.probeRecommendations(),
		HasAudio:        r.probeHasAudio(),
		HasTaleAudio:    r.probeHasTaleAudio(),
		Location:        r.probeLocation(),
		Phone:           r.probePhone(),
	}

	if r.commuteOrigin != "" {
		p.CommuteMinutes = r.probeCommute(ctx)
	} else {
		p.CommuteMinutes = model.NotFound[int]()
	}
	return p, nil
}
