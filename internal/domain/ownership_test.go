package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewOwnershipTag(t *testing.T) {
	assert.Equal(t, OwnershipTag("whw"), NewOwnershipTag(""))
	assert.Equal(t, OwnershipTag("whw-blue"), NewOwnershipTag(" blue "))
}

func TestOwnershipTagOwns(t *testing.T) {
	plain := NewOwnershipTag("")
	blue := NewOwnershipTag("blue")

	tests := []struct {
		line  string
		plain bool
		blue  bool
	}{
		{"10.0.0.2\tweb\t\t#c1 by whw", true, false},
		{"10.0.0.2\tweb\t\t# by whw\r", true, false},
		{"10.0.0.2\tweb\t\t# by whw-blue", false, true},
		{"10.0.0.2\tweb\t\t# by whw-blueish", false, false},
		{"127.0.0.1\tlocalhost", false, false},
		{"# owned by somebody else", false, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.plain, plain.Owns(tt.line), "plain tag, line %q", tt.line)
		assert.Equal(t, tt.blue, blue.Owns(tt.line), "blue tag, line %q", tt.line)
	}
}

func TestOwnershipTagLine(t *testing.T) {
	tag := NewOwnershipTag("")
	assert.Equal(t, "10.0.0.3\tweb\t\t#c1 by whw", tag.Line("10.0.0.3", "web", "c1"))
	assert.True(t, tag.Owns(tag.Line("10.0.0.3", "web", "")))
}
