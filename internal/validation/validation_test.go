package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"container-yard-api-server/internal/apperr"
)

type sample struct {
	Number      string   `json:"containerNumber" binding:"required,containernumber"`
	Role        string   `json:"role" binding:"required,oneof=admin user"`
	Permissions []string `json:"permissions" binding:"dive,permission"`
}

func TestStructAccepts(t *testing.T) {
	err := Struct(sample{Number: "MSCU1234567", Role: "user", Permissions: []string{"read:containers"}})
	assert.NoError(t, err)
}

func TestStructReportsEveryField(t *testing.T) {
	err := Struct(sample{Number: "MSC1234567", Role: "root", Permissions: []string{"fly:planes"}})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.Contains(t, err.Error(), "containerNumber must be 3 letters")
	assert.Contains(t, err.Error(), "role must be one of [admin user]")
	assert.Contains(t, err.Error(), `unknown permission "fly:planes"`)
}

func TestPatterns(t *testing.T) {
	assert.True(t, ContainerNumberPattern.MatchString("MSCU1234567"))
	assert.False(t, ContainerNumberPattern.MatchString("MSCX1234567"))
	assert.False(t, ContainerNumberPattern.MatchString("MSCU123456"))

	assert.True(t, IsoCodePattern.MatchString("22G1"))
	assert.False(t, IsoCodePattern.MatchString("2G21"))

	assert.True(t, LineCodePattern.MatchString("MSK"))
	assert.False(t, LineCodePattern.MatchString("MAERSK"))
}

func TestTranslatePassesOtherErrors(t *testing.T) {
	boom := errors.New("boom")
	assert.Same(t, boom, Translate(boom))
	assert.NoError(t, Translate(nil))
}

type bounds struct {
	Username string   `json:"username" binding:"min=3"`
	Limit    int      `form:"limit" binding:"max=100"`
	Page     int      `form:"page" binding:"min=1"`
	Tags     []string `json:"tags" binding:"max=2"`
}

func TestBoundMessagesFollowFieldKind(t *testing.T) {
	err := Struct(bounds{Username: "ab", Limit: 500, Page: 0, Tags: []string{"a", "b", "c"}})
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "username must be at least 3 characters")
	assert.Contains(t, msg, "limit must be at most 100")
	assert.Contains(t, msg, "page must be at least 1")
	assert.Contains(t, msg, "tags must have at most 2 items")
	assert.NotContains(t, msg, "100 characters")
}
