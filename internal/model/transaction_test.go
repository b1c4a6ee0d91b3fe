package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	all := []TransactionStatus{
		StatusWaitingForPayment,
		StatusWaitingForAdmin,
		StatusDone,
		StatusRejected,
		StatusExpired,
		StatusCanceled,
	}

	allowed := map[TransactionStatus]map[TransactionStatus]bool{
		StatusWaitingForPayment: {
			StatusWaitingForAdmin: true,
			StatusCanceled:        true,
			StatusExpired:         true,
		},
		StatusWaitingForAdmin: {
			StatusDone:     true,
			StatusRejected: true,
		},
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[from][to]
			assert.Equalf(t, want, from.CanTransitionTo(to),
				"transition %s -> %s", from, to)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusWaitingForPayment.Terminal())
	assert.False(t, StatusWaitingForAdmin.Terminal())
	assert.True(t, StatusDone.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.True(t, StatusExpired.Terminal())
	assert.True(t, StatusCanceled.Terminal())
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusDone.Valid())
	assert.False(t, TransactionStatus("PAID").Valid())
	assert.False(t, TransactionStatus("").Valid())
}

func TestTerminalStatusesAcceptNothing(t *testing.T) {
	terminals := []TransactionStatus{StatusDone, StatusRejected, StatusExpired, StatusCanceled}
	targets := []TransactionStatus{
		StatusWaitingForPayment, StatusWaitingForAdmin,
		StatusDone, StatusRejected, StatusExpired, StatusCanceled,
	}
	for _, from := range terminals {
		for _, to := range targets {
			assert.Falsef(t, from.CanTransitionTo(to), "terminal %s must not move to %s", from, to)
		}
	}
}
