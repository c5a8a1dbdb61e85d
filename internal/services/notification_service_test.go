package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/quilltips/payments-service/internal/models"
	"github.com/stretchr/testify/require"
)

func TestTipReceivedEmailBodies_EscapesReaderInput(t *testing.T) {
	author := newAuthorProfile()
	qrCode := &models.QRCode{
		ID:        uuid.New(),
		AuthorID:  author.ID,
		BookTitle: "The Winter Garden",
	}
	tip := &models.Tip{
		ID:          uuid.New(),
		QRCodeID:    qrCode.ID,
		AuthorID:    author.ID,
		AmountCents: 750,
		ReaderName:  `<img src=x onerror="alert(1)">`,
		Message:     `<script>steal()</script> loved "it"`,
	}

	subject, plainText, htmlContent := tipReceivedEmailBodies(author, qrCode, tip)

	require.Contains(t, subject, "$7.50")
	require.NotContains(t, htmlContent, "<script>")
	require.NotContains(t, htmlContent, "<img")
	require.Contains(t, htmlContent, "&lt;script&gt;steal()&lt;/script&gt;")
	require.Contains(t, htmlContent, "&lt;img src=x onerror=&#34;alert(1)&#34;&gt;")

	// The plain-text part carries the message verbatim.
	require.Contains(t, plainText, `<script>steal()</script> loved "it"`)
}

func TestTipReceivedEmailBodies_AnonymousReader(t *testing.T) {
	author := newAuthorProfile()
	qrCode := &models.QRCode{ID: uuid.New(), AuthorID: author.ID, BookTitle: "The Winter Garden"}
	tip := &models.Tip{ID: uuid.New(), QRCodeID: qrCode.ID, AuthorID: author.ID, AmountCents: 500}

	_, plainText, htmlContent := tipReceivedEmailBodies(author, qrCode, tip)
	require.Contains(t, plainText, "A reader just tipped you")
	require.Contains(t, htmlContent, "A reader")
	require.NotContains(t, htmlContent, "tip-message", "no message block when the tip has no message")
}
