package filter

import (
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTextFromMessage_PlainText(t *testing.T) {
	raw := "From: a@b.example\r\nSubject: hi\r\n\r\nplain body text"
	msg, err := mail.ReadMessage(strings.NewReader(raw))
	require.NoError(t, err)

	text, err := extractTextFromMessage(msg)
	require.NoError(t, err)
	assert.Equal(t, "plain body text", text)
}

func TestExtractTextFromMessage_MultipartPicksTextPlain(t *testing.T) {
	raw := "From: a@b.example\r\n" +
		"Content-Type: multipart/alternative; boundary=XYZ\r\n" +
		"\r\n" +
		"--XYZ\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"the plain part\r\n" +
		"--XYZ\r\n" +
		"Content-Type: text/html\r\n" +
		"\r\n" +
		"<p>the html part</p>\r\n" +
		"--XYZ--\r\n"
	msg, err := mail.ReadMessage(strings.NewReader(raw))
	require.NoError(t, err)

	text, err := extractTextFromMessage(msg)
	require.NoError(t, err)
	assert.Contains(t, text, "the plain part")
	assert.NotContains(t, text, "html part")
}

func TestExtractLinks(t *testing.T) {
	body := "Verify at https://evil.example/login. Backup: http://bit.ly/x " +
		"and again https://evil.example/login for good measure."

	links := extractLinks(body)

	assert.Equal(t, []string{"https://evil.example/login", "http://bit.ly/x"}, links)
}

func TestExtractLinks_NoLinks(t *testing.T) {
	assert.Nil(t, extractLinks("no urls in here"))
}

func TestDecodeEncodedHeader(t *testing.T) {
	decoded, err := decodeEncodedHeader("=?UTF-8?Q?caf=C3=A9_invoice?=")
	require.NoError(t, err)
	assert.Equal(t, "café invoice", decoded)

	plain, err := decodeEncodedHeader("ordinary subject")
	require.NoError(t, err)
	assert.Equal(t, "ordinary subject", plain)
}
