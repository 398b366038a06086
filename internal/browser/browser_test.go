package browser

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"tel:+79991234567", "+79991234567"},
		{"8 999 123-45-67", "+79991234567"},
		{"9991234567", "+79991234567"},
		{"+7 (999) 123 45 67", "+79991234567"},
		{"нет телефона", ""},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizePhone(tc.in), "input %q", tc.in)
	}
}

func TestProfileIDFromURL(t *testing.T) {
	m := profileIDRe.FindStringSubmatch("https://nashanyanya.ru/nyanya/moscow/608431")
	require.NotNil(t, m)
	assert.Equal(t, "608431", m[1])

	m = profileIDRe.FindStringSubmatch("https://nashanyanya.ru/nyanya/spb/77/")
	require.NotNil(t, m)
	assert.Equal(t, "77", m[1])

	assert.Nil(t, profileIDRe.FindStringSubmatch("https://nashanyanya.ru/nyanya/moscow"))
}

func TestNormalizeOrigin(t *testing.T) {
	assert.Equal(t, "Москва, Тверская 1", normalizeOrigin("г. Тверская д. 1"))
	assert.Equal(t, "Москва, Ленина 5", normalizeOrigin("Москва, Ленина д.5"))
	assert.Equal(t, "", normalizeOrigin("   "))
}

func TestMasstransitURL(t *testing.T) {
	href := "https://yandex.ru/maps/?rtext=55.75,37.61~55.76,37.62&rtt=auto&ruri=~&rll=37.6,55.7"
	got, err := masstransitURL(href, "55.76", "37.62", "Москва, Тверская 1")
	require.NoError(t, err)

	u, err := url.Parse(got)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "routes", q.Get("mode"))
	assert.Equal(t, "mt", q.Get("rtt"))
	assert.Equal(t, "55.76,37.62~Москва, Тверская 1", q.Get("rtext"))
	assert.Empty(t, q.Get("ruri"))
	assert.Empty(t, q.Get("rll"))
}

func TestYearsSince(t *testing.T) {
	now := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 30, yearsSince(time.Date(1995, time.January, 1, 0, 0, 0, 0, time.UTC), now))
	// Birthday later this year has not happened yet.
	assert.Equal(t, 29, yearsSince(time.Date(1995, time.December, 1, 0, 0, 0, 0, time.UTC), now))
	assert.Equal(t, 30, yearsSince(time.Date(1995, time.June, 10, 0, 0, 0, 0, time.UTC), now))
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Опытная няня\nс рекомендациями",
		clean("  Опытная няня  \n\n  с рекомендациями \n"))
	assert.Equal(t, "", clean("  \n   "))
}
