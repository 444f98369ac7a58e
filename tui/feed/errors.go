package feed

import (
	"errors"

	"github.com/Cardjinho/Instagram-v0/domain"
)

func asMutation(err error) (*domain.MutationError, bool) {
	var me *domain.MutationError
	if errors.As(err, &me) {
		return me, true
	}
	return nil, false
}
