package core

import (
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailMessage_Render(t *testing.T) {
	t.Run("template", func(t *testing.T) {
		msg := &EmailMessage{
			To:           []mail.Address{{Name: "Jane", Address: "jane@example.com"}},
			Subject:      "resolved",
			TemplateName: "complaint_resolved",
			TemplateData: map[string]string{
				"Name":        "Jane",
				"Category":    "electrical",
				"Description": "the socket <sparks>",
				"Remark":      "",
				"FiledOn":     "2024-03-01",
			},
		}
		require.NoError(t, msg.Render("Hostel"))
		assert.True(t, msg.HasRecipients())
		assert.True(t, msg.HasContent())
		assert.Contains(t, msg.TextContent, "Jane")
		assert.Contains(t, msg.TextContent, "the socket <sparks>")
		assert.Contains(t, msg.HTMLContent, "the socket &lt;sparks&gt;")
		assert.NotContains(t, msg.HTMLContent, "remark")
	})

	t.Run("plain body", func(t *testing.T) {
		msg := &EmailMessage{BodyStr: "hello"}
		require.NoError(t, msg.Render("Hostel"))
		assert.Equal(t, "hello", msg.TextContent)
		assert.Empty(t, msg.HTMLContent)
		assert.False(t, msg.HasRecipients())
	})

	t.Run("missing template data", func(t *testing.T) {
		msg := &EmailMessage{TemplateName: "complaint_resolved", TemplateData: map[string]string{"Name": "Jane"}}
		assert.Error(t, msg.Render("Hostel"))
	})

	t.Run("unknown template renders nothing", func(t *testing.T) {
		msg := &EmailMessage{TemplateName: "nope"}
		require.NoError(t, msg.Render("Hostel"))
		assert.False(t, msg.HasContent())
	})
}
