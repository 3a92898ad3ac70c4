package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubmissionStatus(t *testing.T) {
	tests := []struct {
		status   SubmissionStatus
		valid    bool
		reviewed bool
	}{
		{StatusPending, true, false},
		{StatusApproved, true, true},
		{StatusRejected, true, true},
		{SubmissionStatus(StatusAll), false, false},
		{SubmissionStatus("approved"), false, false},
		{"", false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.status.Valid())
			assert.Equal(t, tt.reviewed, tt.status.Reviewed())
		})
	}
}
