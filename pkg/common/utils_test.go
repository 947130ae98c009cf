package common

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCutUUIDString(t *testing.T) {
	id := NewCutUUIDString()
	assert.Len(t, id, 32)
	assert.False(t, strings.Contains(id, "-"))
}

func TestSnowflakeIDs(t *testing.T) {
	_, err := NewIDNode(1024)
	assert.Error(t, err)

	node, err := NewIDNode(7)
	require.NoError(t, err)
	before := time.Now().Add(-time.Second)
	created := DecodeTimeInSnowflake(node.Generate().String())
	require.NotNil(t, created)
	assert.True(t, created.After(before))
	assert.Nil(t, DecodeTimeInSnowflake("not-an-id"))
}
