package aws

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRoleARN(t *testing.T) {
	t.Parallel()
	tests := []struct {
		arn     string
		wantErr bool
	}{
		{"arn:aws:iam::123456789012:role/SearchWriter", false},
		{"arn:aws:iam::123456789012:role/path/SearchWriter", false},
		{"arn:aws:iam::12345:role/Short", true},           // too few digits
		{"arn:aws:iam::123456789012:user/NotARole", true}, // user, not role
		{"", true},
		{"not-an-arn", true},
	}

	for _, tt := range tests {
		t.Run(tt.arn, func(t *testing.T) {
			t.Parallel()
			err := ValidateRoleARN(tt.arn)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewAWSConfig_RejectsBadRoleARN(t *testing.T) {
	t.Parallel()
	_, err := NewAWSConfig(t.Context(), "us-east-1", "", "arn:aws:iam::1:user/x")
	assert.ErrorContains(t, err, "invalid IAM role ARN")
}
