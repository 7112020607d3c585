package service

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateReviewNoteGrid(t *testing.T) {
	cases := []struct {
		note float64
		ok   bool
	}{
		{0, true},
		{0.5, true},
		{2.5, true},
		{5, true},
		{-0.5, false},
		{5.5, false},
		{0.25, false},
		{4.75, false},
		{3.0000001, false},
		{math.NaN(), false},
		{math.Inf(1), false},
	}
	for _, c := range cases {
		err := validateReview(c.note, nil)
		if c.ok {
			assert.NoError(t, err, "note %v", c.note)
		} else {
			assert.ErrorIs(t, err, ErrInvalidRating, "note %v", c.note)
			assert.ErrorIs(t, err, ErrInvalidInput)
		}
	}
}

func TestValidateReviewCommentLength(t *testing.T) {
	assert.NoError(t, validateReview(3, strp(strings.Repeat("é", 1000))))
	assert.ErrorIs(t, validateReview(3, strp(strings.Repeat("a", 1001))), ErrCommentTooLong)
	assert.NoError(t, validateReview(3, strp("")))
}

func TestValidateComment(t *testing.T) {
	assert.NoError(t, validateComment(strings.Repeat("ü", 500)))
	assert.ErrorIs(t, validateComment(strings.Repeat("x", 501)), ErrCommentTooLong)
	assert.ErrorIs(t, validateComment("   "), ErrEmptyComment)
	assert.ErrorIs(t, validateComment(""), ErrEmptyComment)
}
