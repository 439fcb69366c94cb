package mailer

import (
	"bytes"
	"context"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The log fallback must never leak a verification code into the process
// log, no matter which environment it ends up running in.
func TestLogMailerWithholdsBody(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	msg := OTPMessage("ops@asl.example", "USER_REG", "123456", 10)
	require.NoError(t, LogMailer{}.Send(context.Background(), msg))

	out := buf.String()
	assert.Contains(t, out, "ops@asl.example")
	assert.Contains(t, out, "Verify your account")
	assert.NotContains(t, out, "123456")
}

func TestBuildBodyMultipartWhenBothPartsSet(t *testing.T) {
	msg := Message{TextBody: "plain part", HTMLBody: "<p>html part</p>"}
	body, contentType := buildBody(msg)
	assert.Contains(t, contentType, "multipart/alternative")
	assert.Contains(t, body, "plain part")
	assert.Contains(t, body, "<p>html part</p>")
}
