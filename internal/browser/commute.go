package browser

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/scoutline/scout-cli/internal/model"
	"github.com/scoutline/scout-cli/internal/recency"
)

const (
	selRouteLink   = `nn-map-route-link a.link, a.link[href*="yandex.ru/maps"]`
	selDuration    = `[class*="masstransit-route-snippet-view__route-duration"], [class*="route-snippet-view__route-duration"]`
	commuteTimeout = 9000
)

var (
	googleCoordsRe = regexp.MustCompile(`maps/\?q=([-\d.]+),([-\d.]+)`)
	rtextCoordsRe  = regexp.MustCompile(`rtext=[^~]+~([-\d.]+),([-\d.]+)`)

	cityPrefixRe  = regexp.MustCompile(`(?i)^\s*г\.?\s*`)
	housePrefixRe = regexp.MustCompile(`(?i)\bд\.?\s*`)
	moscowRe      = regexp.MustCompile(`(?i)\bМосква\b`)
	spacesRe      = regexp.MustCompile(`\s+`)
)

// probeCommute opens the profile's Yandex Maps route link in a second
// tab, forces public transport, routes candidate address to the
// configured origin and reads the first route's duration.
func (r *Reader) probeCommute(ctx context.Context) model.Field[int] {
	log := zap.L()

	link := r.s.page.Locator(selRouteLink).First()
	if n, err := link.Count(); err != nil || n == 0 {
		return model.NotFound[int]()
	}
	href, err := link.GetAttribute("href")
	if err != nil || href == "" {
		return model.NotFound[int]()
	}

	lat, lon, ok := r.candidateCoords(href)
	if !ok {
		return model.NotFound[int]()
	}

	routeURL, err := masstransitURL(href, lat, lon, normalizeOrigin(r.commuteOrigin))
	if err != nil {
		log.Debug("browser: commute url rewrite failed", zap.Error(err))
		return model.Failed[int]()
	}

	if err := r.s.limiter.Wait(ctx); err != nil {
		return model.Failed[int]()
	}
	tab, err := r.s.bctx.NewPage()
	if err != nil {
		return model.Failed[int]()
	}
	defer func() {
		if err := tab.Close(); err != nil {
			log.Debug("browser: commute tab close", zap.Error(err))
		}
	}()

	if _, err := tab.Goto(routeURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(commuteTimeout),
	}); err != nil {
		log.Debug("browser: commute page failed", zap.Error(err))
		return model.Failed[int]()
	}

	snippet := tab.Locator(selDuration).First()
	if err := snippet.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(6000),
	}); err == nil {
		if txt, err := snippet.InnerText(playwright.LocatorInnerTextOptions{
			Timeout: playwright.Float(2000),
		}); err == nil {
			if mins, ok := recency.ParseDurationMin(txt); ok {
				return model.Found(mins)
			}
		}
	}

	// Snippet was slow or renamed; scan the whole body once.
	if body, err := tab.Locator("body").InnerText(playwright.LocatorInnerTextOptions{
		Timeout: playwright.Float(2000),
	}); err == nil {
		if mins, ok := recency.ParseDurationMin(body); ok {
			return model.Found(mins)
		}
	}
	return model.Failed[int]()
}

// candidateCoords extracts the candidate's location, preferring the
// Google maps link on the profile over the route URL itself.
func (r *Reader) candidateCoords(routeHref string) (lat, lon string, ok bool) {
	if g := r.s.page.Locator(selProfileAddr).First(); g != nil {
		if ghref, err := g.GetAttribute("href"); err == nil {
			if m := googleCoordsRe.FindStringSubmatch(ghref); m != nil {
				return m[1], m[2], true
			}
		}
	}
	if m := rtextCoordsRe.FindStringSubmatch(routeHref); m != nil {
		return m[1], m[2], true
	}
	return "", "", false
}

// masstransitURL rewrites a Yandex Maps route link to use public
// transport from the candidate's coordinates to the origin address.
func masstransitURL(href, lat, lon, origin string) (string, error) {
	u, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("mode", "routes")
	q.Set("rtt", "mt")
	q.Del("ruri")
	q.Del("rll")
	q.Del("rtm")
	if origin != "" {
		q.Set("rtext", lat+","+lon+"~"+origin)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// normalizeOrigin cleans a home address the way Yandex geocoding likes
// it and pins it to Moscow when no city is given.
func normalizeOrigin(addr string) string {
	s := strings.TrimSpace(addr)
	if s == "" {
		return ""
	}
	s = cityPrefixRe.ReplaceAllString(s, "")
	s = housePrefixRe.ReplaceAllString(s, "")
	s = spacesRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	if !moscowRe.MatchString(s) {
		s = "Москва, " + s
	}
	return s
}
