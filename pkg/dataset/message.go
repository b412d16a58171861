package dataset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/jaytaylor/html2text"
)

// Extensions read as RFC 5322 messages rather than plain text
var messageExts = map[string]bool{
	".eml":   true,
	".msg":   true,
	".email": true,
}

// ReadDocument returns the text of a file. Mail messages contribute their
// subject followed by every inline text part; attachments are ignored.
func ReadDocument(path string) (string, error) {
	if !messageExts[strings.ToLower(filepath.Ext(path))] {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		return string(data), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	text, err := ReadMessage(file)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return text, nil
}

// ReadMessage extracts the subject and text body of a mail message
func ReadMessage(r io.Reader) (string, error) {
	mr, err := mail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return "", err
	}
	defer mr.Close()

	var parts []string
	if subject, err := mr.Header.Subject(); err == nil && subject != "" {
		parts = append(parts, subject)
	}

	var plain, html []string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if message.IsUnknownCharset(err) {
			continue
		}
		if err != nil {
			return "", err
		}

		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := h.ContentType()

		body, err := io.ReadAll(p.Body)
		if err != nil {
			return "", err
		}

		switch {
		case contentType == "text/html":
			text, err := html2text.FromString(string(body), html2text.Options{TextOnly: true})
			if err != nil {
				return "", fmt.Errorf("failed to convert html part: %w", err)
			}
			html = append(html, text)
		case contentType == "" || strings.HasPrefix(contentType, "text/"):
			plain = append(plain, string(body))
		}
	}

	// HTML only counts when there is no plain alternative
	if len(plain) == 0 {
		plain = html
	}
	parts = append(parts, plain...)

	return strings.Join(parts, "\n"), nil
}
