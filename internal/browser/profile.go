package browser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/scoutline/scout-cli/internal/model"
)

// Profile page selectors, matching the site's Angular components.
const (
	selProfileName    = "h1.profile-header__title"
	selProfileAvatar  = "img.card__img"
	selProfileAbout   = "div.about__content div.about__texts"
	selProfileEdu     = "nn-worker-educations .block__footer"
	selProfileRecs    = "nn-resume-recommendation-list"
	selProfileRecItem = ".recomm__content"
	selProfileRecAlt  = ".recomm__item, li, nn-resume-recommendation-item"
	selProfileAddr    = ".about__address .show-address__content a.show-address__link"
	selProfileAudio   = "div.block.block_audio, nn-audio-message, nn-audio-player, audio[src$='.mp3']"
	selProfileTales   = "nn-voice-acting-tales"
)

const maxRecommendations = 12

var (
	birthDateRe   = regexp.MustCompile(`"birthDate"\s*:\s*"([^"]+)"`)
	ageTextRe     = regexp.MustCompile(`(\d{1,3})\s*лет`)
	expJSONRe     = regexp.MustCompile(`"experienceAge"\s*:\s*(\d+)`)
	jsonNameRe    = regexp.MustCompile(`"name"\s*:\s*"([^"]+)"`)
	recommLabelRe = regexp.MustCompile(`(?i)^\s*РЕКОМЕНДАЦИЯ\s*`)
)

// clean collapses whitespace and NBSPs and renormalizes to NFC; the
// site mixes composed and decomposed Cyrillic.
func clean(s string) string {
	s = norm.NFC.String(strings.ReplaceAll(s, " ", " "))
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, ln := range lines {
		if t := strings.TrimSpace(ln); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, "\n")
}

func (r *Reader) innerText(sel string, timeoutMS float64) (string, bool) {
	loc := r.s.page.Locator(sel).First()
	if n, err := loc.Count(); err != nil || n == 0 {
		return "", false
	}
	txt, err := loc.InnerText(playwright.LocatorInnerTextOptions{
		Timeout: playwright.Float(timeoutMS),
	})
	if err != nil {
		return "", false
	}
	return clean(txt), true
}

func (r *Reader) probeName(html string) model.Field[string] {
	if name, ok := r.innerText(selProfileName, 4000); ok && name != "" {
		return model.Found(name)
	}

	// Avatar alt text: "Няня в городе Москва - Анжела Юрьевна А."
	if alt, err := r.s.page.Locator(selProfileAvatar).First().GetAttribute("alt"); err == nil && alt != "" {
		parts := strings.Split(alt, " - ")
		return model.Found(clean(parts[len(parts)-1]))
	}

	if m := jsonNameRe.FindStringSubmatch(html); m != nil {
		return model.Found(clean(m[1]))
	}
	return model.NotFound[string]()
}

func (r *Reader) probeAge(html string) model.Field[int] {
	if m := birthDateRe.FindStringSubmatch(html); m != nil {
		iso := strings.Replace(m[1], "Z", "+00:00", 1)
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05-07:00", "2006-01-02"} {
			if birth, err := time.Parse(layout, iso); err == nil {
				return model.Found(yearsSince(birth, time.Now()))
			}
		}
	}

	if body, ok := r.innerText("body", 3000); ok {
		if m := ageTextRe.FindStringSubmatch(body); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil {
				return model.Found(v)
			}
		}
	}
	return model.NotFound[int]()
}

func yearsSince(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() ||
		(now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	return years
}

func (r *Reader) probeExperience(html string) model.Field[int] {
	if m := expJSONRe.FindStringSubmatch(html); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			return model.Found(v)
		}
	}
	return model.NotFound[int]()
}

func (r *Reader) probeAbout() model.Field[string] {
	if txt, ok := r.innerText(selProfileAbout, 2500); ok && txt != "" {
		return model.Found(txt)
	}
	return model.NotFound[string]()
}

func (r *Reader) probeEducation() model.Field[string] {
	if txt, ok := r.innerText(selProfileEdu, 2500); ok && txt != "" {
		return model.Found(strings.Join(strings.Fields(txt), " "))
	}
	return model.NotFound[string]()
}

func (r *Reader) probeRecommendations() model.Field[[]string] {
	cont := r.s.page.Locator(selProfileRecs).First()
	if n, err := cont.Count(); err != nil || n == 0 {
		return model.NotFound[[]string]()
	}

	items, err := cont.Locator(selProfileRecItem).All()
	if err != nil || len(items) == 0 {
		items, err = cont.Locator(selProfileRecAlt).All()
		if err != nil {
			return model.Failed[[]string]()
		}
	}

	var out []string
	for i, item := range items {
		if i >= maxRecommendations {
			break
		}
		txt, err := item.InnerText(playwright.LocatorInnerTextOptions{
			Timeout: playwright.Float(800),
		})
		if err != nil {
			continue
		}
		t := clean(recommLabelRe.ReplaceAllString(txt, ""))
		if t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return model.NotFound[[]string]()
	}
	return model.Found(out)
}

func (r *Reader) probeHasAudio() model.Field[bool] {
	return r.probeVisible(selProfileAudio)
}

func (r *Reader) probeHasTaleAudio() model.Field[bool] {
	blk := r.s.page.Locator(selProfileTales).First()
	if n, err := blk.Count(); err != nil || n == 0 {
		return model.Found(false)
	}
	visible, err := blk.Locator("audio, nn-audio-player").First().IsVisible()
	if err != nil {
		return model.Failed[bool]()
	}
	return model.Found(visible)
}

func (r *Reader) probeVisible(sel string) model.Field[bool] {
	loc := r.s.page.Locator(sel).First()
	n, err := loc.Count()
	if err != nil {
		return model.Failed[bool]()
	}
	if n == 0 {
		return model.Found(false)
	}
	visible, err := loc.IsVisible()
	if err != nil {
		return model.Failed[bool]()
	}
	return model.Found(visible)
}

func (r *Reader) probeLocation() model.Field[string] {
	if txt, ok := r.innerText(selProfileAddr, 4000); ok && txt != "" {
		return model.Found(strings.Join(strings.Fields(txt), " "))
	}
	return model.NotFound[string]()
}

// Phone reveal selectors. The number hides behind a button that opens
// a Material bottom sheet.
const (
	selPhoneButton = "nn-show-resume-phone-button button, .card__phone button, button:has-text('Телефон')"
	selPhoneSheet  = "mat-bottom-sheet-container"
	selPhoneLink   = "a.phone"
	selSheetClose  = "[data-test-id='dialog-close-button']"
)

// probePhone clicks the reveal button, reads the tel: link from the
// bottom sheet and normalizes to E.164. Profiles without a reveal
// button simply have no phone.
func (r *Reader) probePhone() model.Field[string] {
	btn := r.s.page.Locator(selPhoneButton).First()
	if n, err := btn.Count(); err != nil || n == 0 {
		return model.NotFound[string]()
	}
	if err := btn.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(2000)}); err != nil {
		// Overlays sometimes intercept; force once before giving up.
		if err := btn.Click(playwright.LocatorClickOptions{
			Force:   playwright.Bool(true),
			Timeout: playwright.Float(1500),
		}); err != nil {
			return model.Failed[string]()
		}
	}

	defer r.closePhoneSheet()

	link := r.s.page.Locator(selPhoneSheet).First().Locator(selPhoneLink).First()
	if err := link.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(3000),
	}); err != nil {
		return model.Failed[string]()
	}

	raw, _ := link.GetAttribute("href")
	if raw == "" {
		raw, _ = link.InnerText()
	}
	phone := NormalizePhone(raw)
	if phone == "" {
		return model.Failed[string]()
	}
	return model.Found(phone)
}

func (r *Reader) closePhoneSheet() {
	if err := r.s.page.Locator(selSheetClose).First().Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(1500),
	}); err != nil {
		if err := r.s.page.Keyboard().Press("Escape"); err != nil {
			zap.L().Debug("browser: phone sheet did not close", zap.Error(err))
		}
	}
}
