package tier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_Thresholds(t *testing.T) {
	cases := []struct {
		points int64
		want   Tier
	}{
		{-500, Poor},
		{0, Poor},
		{399, Poor},
		{400, Average},
		{550, Average},
		{599, Average},
		{600, Good},
		{650, Good},
		{799, Good},
		{800, Excellent},
		{12000, Excellent},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.points), "points=%d", tc.points)
	}
}

func TestClassify_Monotonic(t *testing.T) {
	prev := Classify(-1000)
	for points := int64(-999); points <= 1200; points++ {
		got := Classify(points)
		assert.GreaterOrEqual(t, Rank(got), Rank(prev), "points=%d", points)
		prev = got
	}
}

func TestRank_TotalOrder(t *testing.T) {
	assert.Less(t, Rank(Poor), Rank(Average))
	assert.Less(t, Rank(Average), Rank(Good))
	assert.Less(t, Rank(Good), Rank(Excellent))
}

func TestValid(t *testing.T) {
	for _, v := range []Tier{Poor, Average, Good, Excellent} {
		assert.True(t, Valid(v))
	}
	assert.False(t, Valid(Tier("platinum")))
	assert.False(t, Valid(Tier("")))
}
