// Package mailbox parses exported notification mailboxes (mbox format) into
// partial retrieval records. It is deliberately tolerant: GitHub notification
// emails are noisy, multipart, and inconsistently encoded.
package mailbox

import (
	"bytes"
	"encoding/base64"
	"html"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"regexp"
	"strings"
)

// Message is one decoded notification email.
type Message struct {
	Subject   string
	From      string
	Date      string
	MessageID string
	Body      string
}

// ParseMessage decodes a single RFC822 message. The body prefers text/plain
// parts; HTML parts are stripped to text as a fallback.
func ParseMessage(raw []byte) (*Message, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return &Message{
		Subject:   decodeHeader(msg.Header.Get("Subject")),
		From:      decodeHeader(msg.Header.Get("From")),
		Date:      msg.Header.Get("Date"),
		MessageID: msg.Header.Get("Message-ID"),
		Body:      extractBody(msg),
	}, nil
}

func decodeHeader(header string) string {
	if header == "" {
		return ""
	}
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(header)
	if err != nil {
		return header
	}
	return strings.TrimSpace(decoded)
}

// decodeTransfer wraps r according to the Content-Transfer-Encoding header.
// 7bit, 8bit, binary, and unknown encodings pass through unchanged.
func decodeTransfer(r io.Reader, encoding string) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	default:
		return r
	}
}

func extractBody(msg *mail.Message) string {
	reader := decodeTransfer(msg.Body, msg.Header.Get("Content-Transfer-Encoding"))
	contentType := msg.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain"
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		body, _ := io.ReadAll(reader)
		return string(body)
	}
	if strings.HasPrefix(mediaType, "multipart/") {
		return extractMultipartBody(reader, params["boundary"])
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return ""
	}
	if mediaType == "text/html" {
		return stripHTML(string(body))
	}
	return string(body)
}

func extractMultipartBody(r io.Reader, boundary string) string {
	if boundary == "" {
		return ""
	}
	mr := multipart.NewReader(r, boundary)
	var plain, htmlParts []string
	for {
		part, err := mr.NextPart()
		if err != nil {
			break
		}
		partType, partParams, err := mime.ParseMediaType(part.Header.Get("Content-Type"))
		if err != nil {
			continue
		}
		body := decodeTransfer(part, part.Header.Get("Content-Transfer-Encoding"))
		switch {
		case strings.HasPrefix(partType, "multipart/"):
			if nested := extractMultipartBody(body, partParams["boundary"]); nested != "" {
				plain = append(plain, nested)
			}
		case partType == "text/plain":
			data, err := io.ReadAll(body)
			if err == nil {
				plain = append(plain, string(data))
			}
		case partType == "text/html":
			data, err := io.ReadAll(body)
			if err == nil {
				htmlParts = append(htmlParts, stripHTML(string(data)))
			}
		}
	}
	if len(plain) > 0 {
		return strings.Join(plain, "\n")
	}
	return strings.Join(htmlParts, "\n")
}

var (
	scriptTag     = regexp.MustCompile(`(?is)<(script|style|head)[^>]*>.*?</(script|style|head)>`)
	htmlComments  = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockClosers  = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|blockquote|pre|table)>|<br\s*/?>`)
	allTags       = regexp.MustCompile(`<[^>]+>`)
	multiSpaces   = regexp.MustCompile(`[ \t]+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

func stripHTML(content string) string {
	content = scriptTag.ReplaceAllString(content, "")
	content = htmlComments.ReplaceAllString(content, "")
	content = blockClosers.ReplaceAllString(content, "\n")
	content = allTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = multiSpaces.ReplaceAllString(content, " ")
	content = multiNewlines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
