package datastore

import "github.com/onsetgo/correntropy/internal/errors"

func wrapErr(component, msg string, cause error) error {
	return errors.New(errors.NewStd(msg)).
		Component(component).
		Category(errors.CategoryDatastore).
		Context("cause", cause.Error()).
		Build()
}
