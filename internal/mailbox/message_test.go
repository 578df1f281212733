package mailbox

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestParseMessageDecodesQuotedPrintable(t *testing.T) {
	raw := strings.Join([]string{
		"From: notifications@github.com",
		"Subject: [acme/billing] Fix rounding in invoices (PR #8040)",
		"Content-Type: text/plain; charset=utf-8",
		"Content-Transfer-Encoding: quoted-printable",
		"",
		"abc1234def fix rounding =3D broken compare",
		"M src/invoice.go=",
		"_extra",
		"",
	}, "\r\n")
	msg, err := ParseMessage([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(msg.Body, "fix rounding = broken compare") {
		t.Fatalf("=3D not decoded:\n%s", msg.Body)
	}
	if !strings.Contains(msg.Body, "M src/invoice.go_extra") {
		t.Fatalf("soft line break not unfolded:\n%s", msg.Body)
	}
}

func TestParseMessageDecodesBase64Part(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("def5678ab add retry loop\nM pkg/client/retry.go\n"))
	raw := strings.Join([]string{
		"From: notifications@github.com",
		"Subject: [acme/api] Add retry loop (PR #91)",
		"Content-Type: multipart/alternative; boundary=BOUND",
		"",
		"--BOUND",
		"Content-Type: text/plain; charset=utf-8",
		"Content-Transfer-Encoding: base64",
		"",
		encoded,
		"--BOUND--",
		"",
	}, "\r\n")
	msg, err := ParseMessage([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(msg.Body, "def5678ab add retry loop") {
		t.Fatalf("base64 part not decoded:\n%s", msg.Body)
	}
	if !strings.Contains(msg.Body, "M pkg/client/retry.go") {
		t.Fatalf("file line missing from decoded body:\n%s", msg.Body)
	}
}

func TestParseMessagePlainPassthrough(t *testing.T) {
	raw := strings.Join([]string{
		"From: notifications@github.com",
		"Subject: [acme/api] Plain body",
		"Content-Type: text/plain; charset=utf-8",
		"Content-Transfer-Encoding: 7bit",
		"",
		"nothing to decode here, =3D stays literal",
		"",
	}, "\r\n")
	msg, err := ParseMessage([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(msg.Body, "=3D stays literal") {
		t.Fatalf("7bit body altered:\n%s", msg.Body)
	}
}
