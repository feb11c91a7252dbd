package kernel_test

import (
	"testing"

	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityFromString(t *testing.T) {
	testCases := []struct {
		input    string
		expected kernel.Priority
	}{
		{"", kernel.Normal},
		{"Normal", kernel.Normal},
		{"Urgent", kernel.Urgent},
		{"Critical", kernel.Critical},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			p, err := kernel.PriorityFromString(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, p)
			assert.NoError(t, p.Validate())
		})
	}

	t.Run("unknown name", func(t *testing.T) {
		_, err := kernel.PriorityFromString("Stat")
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestPriority_Validate(t *testing.T) {
	require.ErrorIs(t, kernel.UnknownPriority.Validate(), errs.ErrValueIsOutOfRange)
	require.ErrorIs(t, kernel.Priority(9).Validate(), errs.ErrValueIsOutOfRange)
	assert.Equal(t, "Unknown", kernel.Priority(9).String())
}

func TestPriority_Outranks(t *testing.T) {
	assert.True(t, kernel.Critical.Outranks(kernel.Urgent))
	assert.True(t, kernel.Urgent.Outranks(kernel.Normal))
	assert.False(t, kernel.Normal.Outranks(kernel.Normal))
	assert.False(t, kernel.Normal.Outranks(kernel.Critical))
}
