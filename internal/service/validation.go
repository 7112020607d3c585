package service

import (
	"errors"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("halfstep", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
		d := f * 2
		return d == math.Trunc(d)
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

type reviewInput struct {
	Note    float64 `validate:"halfstep,gte=0,lte=5"`
	Comment *string `validate:"omitempty,max=1000"`
}

type commentInput struct {
	Content string `validate:"notblank,max=500"`
}

// validateReview 校验原始输入，note 不做任何取整
func validateReview(note float64, comment *string) error {
	return mapValidation(validate.Struct(reviewInput{Note: note, Comment: comment}))
}

func validateComment(content string) error {
	return mapValidation(validate.Struct(commentInput{Content: content}))
}

func mapValidation(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.StructField() {
	case "Note":
		return ErrInvalidRating
	case "Comment":
		return ErrCommentTooLong
	case "Content":
		if fe.Tag() == "notblank" {
			return ErrEmptyComment
		}
		return ErrCommentTooLong
	}
	return ErrInvalidInput
}
