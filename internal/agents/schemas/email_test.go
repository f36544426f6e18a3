package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmailContext(t *testing.T) {
	payload := `{"fromEmailAddress": "pat@example.com", "subject": "Meter reading", "body": "My meter reads 4512."}`

	ec, err := ParseEmailContext(payload)
	require.NoError(t, err)
	assert.Equal(t, "pat@example.com", ec.FromEmailAddress)
	assert.Equal(t, "Meter reading", ec.Subject)
	assert.Equal(t, "My meter reads 4512.", ec.Body)
}

func TestParseEmailContextPlainText(t *testing.T) {
	_, err := ParseEmailContext("My laptop will not boot, please help.")
	assert.Error(t, err, "plain text is not a JSON payload")
}

func TestParseEmailContextRejectsEmptyBody(t *testing.T) {
	_, err := ParseEmailContext(`{"fromEmailAddress": "x@y.z", "subject": "hi", "body": "  "}`)
	assert.Error(t, err)

	_, err = ParseEmailContext(`{"fromEmailAddress": "x@y.z"`)
	assert.Error(t, err, "truncated JSON must not validate")
}
