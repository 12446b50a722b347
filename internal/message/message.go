// Package message parses raw RFC 822 mail into a decoded, text-only view.
package message

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"github.com/daisuke6106/dgmail/internal/address"
	"github.com/daisuke6106/dgmail/internal/mimeutil"
)

// Message is a parsed mail message.
type Message struct {
	// UID is the server-assigned IMAP UID, zero when unknown.
	UID     uint32
	From    []address.Address
	To      []address.Address
	Subject string
	// Body is the first plain-text part, transcoded to UTF-8. Empty when
	// the message carries no text part.
	Body string
}

// Parse parses a raw RFC 822 message. MIME-encoded headers are decoded,
// and the body is reduced to the first non-attachment text/plain part
// (the whole payload for single-part messages).
func Parse(uid uint32, raw []byte) (*Message, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("message: read headers: %w", err)
	}

	from, err := address.ParseList(msg.Header.Get("From"))
	if err != nil {
		return nil, fmt.Errorf("message: From header: %w", err)
	}
	to, err := address.ParseList(msg.Header.Get("To"))
	if err != nil {
		return nil, fmt.Errorf("message: To header: %w", err)
	}

	body, err := extractText(
		msg.Header.Get("Content-Type"),
		msg.Header.Get("Content-Transfer-Encoding"),
		msg.Body,
	)
	if err != nil {
		return nil, fmt.Errorf("message: body: %w", err)
	}

	return &Message{
		UID:     uid,
		From:    from,
		To:      to,
		Subject: mimeutil.DecodeHeader(msg.Header.Get("Subject")),
		Body:    body,
	}, nil
}

// extractText walks a (possibly nested) MIME structure and returns the
// first non-attachment text/plain payload, or "" when there is none.
func extractText(contentType, cte string, r io.Reader) (string, error) {
	mediaType := "text/plain"
	var params map[string]string
	if contentType != "" {
		mt, p, err := mime.ParseMediaType(contentType)
		if err != nil {
			return "", fmt.Errorf("content type %q: %w", contentType, err)
		}
		mediaType, params = mt, p
	}

	if !strings.HasPrefix(mediaType, "multipart/") {
		return decodeBody(r, cte, params["charset"])
	}

	boundary := params["boundary"]
	if boundary == "" {
		return "", errors.New("multipart message without boundary")
	}
	mr := multipart.NewReader(r, boundary)
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return "", nil
		}
		if err != nil {
			return "", fmt.Errorf("next part: %w", err)
		}
		if isAttachment(part.Header.Get("Content-Disposition")) {
			continue
		}

		partType := "text/plain"
		var partParams map[string]string
		if ct := part.Header.Get("Content-Type"); ct != "" {
			pt, pp, err := mime.ParseMediaType(ct)
			if err != nil {
				continue
			}
			partType, partParams = pt, pp
		}

		switch {
		case strings.HasPrefix(partType, "multipart/"):
			text, err := extractText(part.Header.Get("Content-Type"), "", part)
			if err == nil && text != "" {
				return text, nil
			}
		case partType == "text/plain":
			// multipart.Part has already undone quoted-printable, so only
			// base64 remains to handle here.
			return decodeBody(part, part.Header.Get("Content-Transfer-Encoding"), partParams["charset"])
		}
	}
}

func isAttachment(disposition string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(disposition)), "attachment")
}

// decodeBody undoes the transfer encoding, then transcodes the payload to
// UTF-8. Unknown transfer encodings and charsets fall back to the raw
// bytes rather than failing the message.
func decodeBody(r io.Reader, cte, charset string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(cte)) {
	case "", "7bit", "8bit", "binary":
	case "quoted-printable":
		r = quotedprintable.NewReader(r)
	case "base64":
		r = base64.NewDecoder(base64.StdEncoding, r)
	}
	if decoded, err := mimeutil.CharsetReader(charset, r); err == nil {
		r = decoded
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}
	return string(b), nil
}
