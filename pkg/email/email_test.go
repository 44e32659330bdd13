package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	cases := []struct {
		address string
		want    string
	}{
		{"jane.doe@example.com", "Jane Doe"},
		{"jane_doe@example.com", "Jane Doe"},
		{"jane-doe+courses@example.com", "Jane Doe Courses"},
		{"jane.doe.42@example.com", "Jane Doe"},
		{"alice@example.com", "Alice"},
		{"1234@example.com", "1234"},
		{"no-at-sign", "No At Sign"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DisplayName(tc.address), tc.address)
	}
}
