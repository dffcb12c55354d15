package types

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTarget = "ntfy://:tk_live_abcdef@ntfy.sh/sunrise-alerts"

func TestSecretString_FormatVerbsRedact(t *testing.T) {
	s := SecretString(testTarget)

	for _, verb := range []string{"%s", "%v", "%+v", "%#v"} {
		out := fmt.Sprintf(verb, s)
		assert.NotContains(t, out, "tk_live_abcdef", "verb %s leaked the secret", verb)
		assert.Contains(t, out, redactedPlaceholder)
	}
}

func TestSecretString_JSONInStruct(t *testing.T) {
	sub := PushSubscription{ID: "sub-1", Target: SecretString(testTarget), Secret: "whsec"}

	data, err := json.Marshal(sub)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "tk_live_abcdef")
	assert.NotContains(t, string(data), "whsec")
	assert.Contains(t, string(data), `"target":"`+redactedPlaceholder+`"`)
}

func TestSecretString_Unmask(t *testing.T) {
	s := SecretString(testTarget)
	assert.Equal(t, testTarget, s.Unmask())
	assert.False(t, s.IsZero())
	assert.True(t, SecretString("").IsZero())
}
