package apperr

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusByKind(t *testing.T) {
	cases := map[Kind]int{
		KindNotFound:               http.StatusNotFound,
		KindValidation:             http.StatusBadRequest,
		KindInvalidStateTransition: http.StatusConflict,
		KindImmutableState:         http.StatusConflict,
		KindConcurrentModification: http.StatusConflict,
		KindInternal:               http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, New(kind, "x").HTTPStatus(), kind.String())
	}
}

func TestGetKindFollowsWrappedChain(t *testing.T) {
	err := fmt.Errorf("save quote: %w", ConcurrentModification("stale version"))

	assert.True(t, Is(err, KindConcurrentModification))
	assert.Equal(t, KindUnknown, GetKind(fmt.Errorf("plain")))
}

func TestInvalidStateTransitionNamesBothStates(t *testing.T) {
	err := InvalidStateTransition("draft", "approved")

	assert.Equal(t, "cannot transition from draft to approved", err.Error())
	assert.Equal(t, map[string]string{"from": "draft", "to": "approved"}, err.Details)
	assert.False(t, err.Retryable())
	assert.True(t, ConcurrentModification("x").Retryable())
}
