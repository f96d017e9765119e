package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	cases := []struct {
		err  error
		kind error
	}{
		{ErrInvalidInput, ErrValidation},
		{ErrUnknownStatus, ErrValidation},
		{Validation("event name is required"), ErrValidation},
		{ErrTicketNotFound, ErrNotFound},
		{ErrNoSellerTickets, ErrNotFound},
		{ErrNotTicketOwner, ErrForbidden},
		{ErrTicketNotUpdatable, ErrConflict},
		{ErrTicketNotDeletable, ErrConflict},
		{ErrInvalidStatusTransition, ErrConflict},
		{ErrSellingPriceExceedsOriginal, ErrConflict},
		{ErrFavoriteContention, ErrConflict},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			assert.ErrorIs(t, tc.err, tc.kind)
			wrapped := fmt.Errorf("AVAILABLE -> SOLD: %w", tc.err)
			assert.ErrorIs(t, wrapped, tc.err)
			assert.ErrorIs(t, wrapped, tc.kind)
		})
	}
}

func TestErrorKinds_DoNotOverlap(t *testing.T) {
	assert.False(t, errors.Is(ErrTicketNotFound, ErrConflict))
	assert.False(t, errors.Is(ErrNotTicketOwner, ErrNotFound))
	assert.Equal(t, "selling price cannot exceed original price", ErrSellingPriceExceedsOriginal.Error())
}
