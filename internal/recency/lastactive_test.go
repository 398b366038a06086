package recency

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.June, 10, 12, 0, 0, 0, time.Local)

func TestParseLastActive_Now(t *testing.T) {
	ts, ok := ParseLastActive("Был на сайте: Сейчас", testNow)
	require.True(t, ok)
	assert.Equal(t, testNow, ts)
}

func TestParseLastActive_HoursAgo(t *testing.T) {
	ts, ok := ParseLastActive("Была на сайте: 2 часа назад", testNow)
	require.True(t, ok)
	assert.Equal(t, testNow.Add(-2*time.Hour), ts)
}

func TestParseLastActive_MinutesAgo(t *testing.T) {
	ts, ok := ParseLastActive("Был на сайте: 15 минут назад", testNow)
	require.True(t, ok)
	assert.Equal(t, testNow.Add(-15*time.Minute), ts)
}

func TestParseLastActive_OmittedNumeralDefaultsToOne(t *testing.T) {
	ts, ok := ParseLastActive("час назад", testNow)
	require.True(t, ok)
	assert.Equal(t, testNow.Add(-time.Hour), ts)
}

func TestParseLastActive_DaysAgo(t *testing.T) {
	ts, ok := ParseLastActive("Был на сайте: 3 дня назад", testNow)
	require.True(t, ok)
	assert.Equal(t, testNow.AddDate(0, 0, -3), ts)
}

func TestParseLastActive_SutkiAgo(t *testing.T) {
	ts, ok := ParseLastActive("сутки назад", testNow)
	require.True(t, ok)
	assert.Equal(t, testNow.AddDate(0, 0, -1), ts)
}

func TestParseLastActive_YesterdayNoTime(t *testing.T) {
	ts, ok := ParseLastActive("Был на сайте: Вчера", testNow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, time.June, 9, 12, 0, 0, 0, time.Local), ts)
}

func TestParseLastActive_YesterdayWithTime(t *testing.T) {
	ts, ok := ParseLastActive("Была на сайте: Вчера в 11:20", testNow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, time.June, 9, 11, 20, 0, 0, time.Local), ts)
}

func TestParseLastActive_TodayNoTimeIsNow(t *testing.T) {
	ts, ok := ParseLastActive("Был на сайте: Сегодня", testNow)
	require.True(t, ok)
	assert.Equal(t, testNow, ts)
}

func TestParseLastActive_TodayWithTime(t *testing.T) {
	ts, ok := ParseLastActive("Сегодня в 09:05", testNow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, time.June, 10, 9, 5, 0, 0, time.Local), ts)
}

func TestParseLastActive_AbsoluteFull(t *testing.T) {
	ts, ok := ParseLastActive("Была на сайте: 14 февраля 2025 в 09:30", testNow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, time.February, 14, 9, 30, 0, 0, time.Local), ts)
}

func TestParseLastActive_AbsoluteDefaultsYearAndNoon(t *testing.T) {
	ts, ok := ParseLastActive("7 июня", testNow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, time.June, 7, 12, 0, 0, 0, time.Local), ts)
}

func TestParseLastActive_AbsoluteUnknownMonth(t *testing.T) {
	_, ok := ParseLastActive("7 бурундука", testNow)
	assert.False(t, ok)
}

func TestParseLastActive_ImpossibleDate(t *testing.T) {
	_, ok := ParseLastActive("31 февраля 2025", testNow)
	assert.False(t, ok)
}

func TestParseLastActive_Garbage(t *testing.T) {
	_, ok := ParseLastActive("премиум-анкета", testNow)
	assert.False(t, ok)

	_, ok = ParseLastActive("", testNow)
	assert.False(t, ok)
}

func TestParseLastActive_YoFolding(t *testing.T) {
	// "ё" in source text must not break matching.
	ts, ok := ParseLastActive("Сегодня в 10:00 ", testNow)
	require.True(t, ok)
	assert.Equal(t, 10, ts.Hour())
}

func TestIsRecent(t *testing.T) {
	assert.True(t, IsRecent(testNow, testNow, 48))
	assert.True(t, IsRecent(testNow.Add(-47*time.Hour), testNow, 48))
	assert.True(t, IsRecent(testNow.Add(-48*time.Hour), testNow, 48))
	assert.False(t, IsRecent(testNow.Add(-49*time.Hour), testNow, 48))
}

func TestSliceLastActive(t *testing.T) {
	blob := "Премиум • Был на сайте: 2 часа назад • Москва"
	assert.Equal(t, "Был(а) на сайте: 2 часа назад", SliceLastActive(blob))
}

func TestSliceLastActive_FemaleForm(t *testing.T) {
	blob := "Была на сайте:  Вчера в 11:20\nОпыт 12 лет"
	assert.Equal(t, "Был(а) на сайте: Вчера в 11:20", SliceLastActive(blob))
}

func TestSliceLastActive_LooseLabel(t *testing.T) {
	blob := "Был на сайте сегодня"
	assert.Equal(t, "Был(а) на сайте: сегодня", SliceLastActive(blob))
}

func TestSliceLastActive_Absent(t *testing.T) {
	assert.Equal(t, "", SliceLastActive("Опыт работы 5 лет"))
	assert.Equal(t, "", SliceLastActive(""))
}

func TestParseDurationMin(t *testing.T) {
	min, ok := ParseDurationMin("1 ч 5 мин")
	require.True(t, ok)
	assert.Equal(t, 65, min)

	min, ok = ParseDurationMin("40 мин")
	require.True(t, ok)
	assert.Equal(t, 40, min)

	min, ok = ParseDurationMin("2 ч")
	require.True(t, ok)
	assert.Equal(t, 120, min)

	_, ok = ParseDurationMin("пешком")
	assert.False(t, ok)
}
