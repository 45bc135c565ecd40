package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/boinkor-net/gearbox-maintenance/torrent"
)

func f64(v float64) *float64             { return &v }
func dur(v time.Duration) *time.Duration { return &v }
func num(v int) *int                     { return &v }

// testCondition is the reference condition used throughout: delete at ratio
// 1.0, but never before an hour of seeding, and always after two days.
func testCondition(t *testing.T) Condition {
	c, err := NewCondition(Condition{
		MaxRatio:       f64(1.0),
		MinSeedingTime: dur(60 * time.Minute),
		MaxSeedingTime: dur(48 * time.Hour),
	})
	require.NoError(t, err)
	return c
}

func seedingTorrent(seededFor time.Duration, ratio float64, now time.Time) torrent.Torrent {
	return torrent.Torrent{
		ID:          1,
		Hash:        "abcd",
		Name:        "testcase",
		DoneDate:    now.Add(-seededFor),
		UploadRatio: ratio,
		Status:      torrent.Seeding,
		FileCount:   1,
		TotalSize:   30000,
		Trackers:    []string{"https://tracker:8080/announce"},
	}
}

func TestNewConditionRejectsEmpty(t *testing.T) {
	_, err := NewCondition(Condition{})
	require.ErrorIs(t, err, ErrEmptyCondition)

	_, err = NewDeletePolicy("empty", NewPrecondition([]string{"tracker"}), Condition{}, false)
	require.ErrorIs(t, err, ErrEmptyCondition)

	// Any single threshold makes the condition valid.
	for _, c := range []Condition{
		{MaxRatio: f64(1.0)},
		{MinSeedingTime: dur(time.Hour)},
		{MaxSeedingTime: dur(time.Hour)},
	} {
		_, err := NewCondition(c)
		require.NoError(t, err)
	}
}

func TestConditionSeedTime(t *testing.T) {
	var table = []struct {
		name      string
		seededFor time.Duration
		ratio     float64
		expected  MatchKind
	}{
		// Never delete younglings:
		{"young torrent at unmet ratio", time.Minute, 0.0, NoMatch},
		{"young torrent at exceeded ratio", time.Minute, 7.0, NoMatch},
		// If they're older, we can delete if ratio is met:
		{"medium and ratio exceeded", 6 * time.Hour, 1.1, MatchedRatio},
		{"medium and ratio not met", 6 * time.Hour, 0.9, NoMatch},
		{"medium and ratio exactly at threshold", 6 * time.Hour, 1.0, MatchedRatio},
		// Any that are really old are fair game:
		{"seeding long enough at unmet ratio", 12 * 24 * time.Hour, 0.9, MatchedSeedTime},
		{"seeding long enough at exceeded ratio", 12 * 24 * time.Hour, 1.5, MatchedRatio},
	}

	now := time.Now()
	condition := testCondition(t)
	for _, tt := range table {
		tor := seedingTorrent(tt.seededFor, tt.ratio, now)
		got := condition.Match(tor, now)
		require.Equal(t, tt.expected, got.Kind, tt.name)
	}
}

func TestConditionMinSeedingTimeBoundary(t *testing.T) {
	now := time.Now()
	condition := testCondition(t)

	// Exactly at the minimum already satisfies it.
	tor := seedingTorrent(60*time.Minute, 1.5, now)
	require.Equal(t, MatchedRatio, condition.Match(tor, now).Kind)

	tor = seedingTorrent(60*time.Minute-time.Nanosecond, 1.5, now)
	require.Equal(t, NoMatch, condition.Match(tor, now).Kind)

	// Exactly at the maximum matches by seed time.
	tor = seedingTorrent(48*time.Hour, 0.5, now)
	require.Equal(t, MatchedSeedTime, condition.Match(tor, now).Kind)
}

func TestConditionMatchCarriesValues(t *testing.T) {
	now := time.Now()
	condition := testCondition(t)

	byRatio := condition.Match(seedingTorrent(6*time.Hour, 1.5, now), now)
	require.Equal(t, 1.5, byRatio.Ratio)

	bySeedTime := condition.Match(seedingTorrent(12*24*time.Hour, 0.5, now), now)
	require.Equal(t, 12*24*time.Hour, bySeedTime.SeedTime)
}

func TestConditionComputedRatioMatches(t *testing.T) {
	now := time.Now()
	condition := testCondition(t)

	// A bogus negative reported ratio falls back to uploaded/size.
	tor := seedingTorrent(6*time.Hour, -1, now)
	tor.UploadedEver = 60000 // twice the 30000 byte total size
	got := condition.Match(tor, now)
	require.Equal(t, MatchedRatio, got.Kind)
	require.Equal(t, 2.0, got.Ratio)
}

func TestConditionDoneDateSentinels(t *testing.T) {
	now := time.Now()
	condition := testCondition(t)

	// No completion timestamp: conservatively left alone.
	tor := seedingTorrent(6*time.Hour, 5.0, now)
	tor.DoneDate = time.Time{}
	require.Equal(t, NoMatch, condition.Match(tor, now).Kind)

	// The "never completed" epoch sentinel cannot age past a grace
	// period.
	tor.DoneDate = time.Unix(0, 0)
	require.Equal(t, NoMatch, condition.Match(tor, now).Kind)

	// Without a grace period the sentinel ages normally.
	ungated, err := NewCondition(Condition{MaxSeedingTime: dur(48 * time.Hour)})
	require.NoError(t, err)
	require.Equal(t, MatchedSeedTime, ungated.Match(tor, now).Kind)
}

func TestPreconditionFileCount(t *testing.T) {
	var table = []struct {
		fileCount int
		governed  bool
	}{
		{1, false},
		{2, true},
		{3, true},
		{4, true},
		{5, false},
	}

	now := time.Now()
	when := NewPrecondition([]string{"tracker"})
	when.MinFileCount = num(2)
	when.MaxFileCount = num(4)

	for _, tt := range table {
		tor := seedingTorrent(12*24*time.Hour, 2.0, now)
		tor.FileCount = tt.fileCount
		require.Equal(t, tt.governed, when.Governs(tor), "file count %d", tt.fileCount)
	}
}

func TestPreconditionTrackers(t *testing.T) {
	var table = []struct {
		announce string
		governed bool
	}{
		{"http://example.com:8080/announce", true},
		{"http://example-nomatch.com:8080/announce", false},
	}

	now := time.Now()
	when := NewPrecondition([]string{"example.com"})

	for _, tt := range table {
		tor := seedingTorrent(12*24*time.Hour, 2.0, now)
		tor.Trackers = []string{tt.announce}
		require.Equal(t, tt.governed, when.Governs(tor), tt.announce)
	}
}

func TestPreconditionRequiresSeeding(t *testing.T) {
	now := time.Now()
	when := NewPrecondition([]string{"tracker"})

	for _, status := range []torrent.Status{
		torrent.Stopped, torrent.Downloading, torrent.QueuedToSeed,
	} {
		tor := seedingTorrent(12*24*time.Hour, 2.0, now)
		tor.Status = status
		require.False(t, when.Governs(tor), status.String())
	}
}

func TestEvaluateIsPure(t *testing.T) {
	now := time.Now()
	p, err := NewDeletePolicy("p", NewPrecondition([]string{"tracker"}), testCondition(t), true)
	require.NoError(t, err)

	tor := seedingTorrent(6*time.Hour, 1.2, now)
	first := p.Evaluate(tor, now)
	second := p.Evaluate(tor, now)
	require.Equal(t, first, second)
	require.Equal(t, MatchedRatio, first.Kind)
}

func TestNameOrIndex(t *testing.T) {
	named := DeletePolicy{Name: "tidy"}
	require.Equal(t, "tidy", named.NameOrIndex(3))

	unnamed := DeletePolicy{}
	require.Equal(t, "3", unnamed.NameOrIndex(3))
}
