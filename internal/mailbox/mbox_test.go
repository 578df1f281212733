package mailbox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-logr/logr"

	"github.com/debaditya-mohankudo/prmailhub/internal/logging"
)

const sampleMbox = `From alice@example.com Mon Jan  6 10:00:00 2025
From: notifications@github.com
Subject: [acme/billing] Fix rounding in invoices (PR #8040)
Message-ID: <acme/billing/pull/8040/issue_event/1@github.com>
Date: Mon, 6 Jan 2025 10:00:00 +0000

The invoice totals were off by a cent.

>From the customer's perspective this looked like overbilling.

abc1234de fix rounding mode
M src/invoice.go

From bob@example.com Mon Jan  6 11:00:00 2025
From: notifications@github.com
Subject: [acme/billing] Fix rounding in invoices (PR #8040)
Message-ID: <acme/billing/pull/8040/issue_event/2@github.com>
Date: Mon, 6 Jan 2025 11:00:00 +0000

Looks good, merging. cc @carol
`

func writeMbox(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.mbox")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write mbox: %v", err)
	}
	return path
}

func TestReadMboxSplitsMessages(t *testing.T) {
	path := writeMbox(t, sampleMbox)
	messages, err := ReadMbox(path, logging.New(logr.Discard()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Subject != "[acme/billing] Fix rounding in invoices (PR #8040)" {
		t.Fatalf("unexpected subject: %q", messages[0].Subject)
	}
}

func TestReadMboxUnquotesFromLines(t *testing.T) {
	path := writeMbox(t, sampleMbox)
	messages, err := ReadMbox(path, logging.New(logr.Discard()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := messages[0].Body
	if !strings.Contains(body, "From the customer's perspective") {
		t.Fatalf("quoted From line not restored:\n%s", body)
	}
	if strings.Contains(body, ">From the customer's") {
		t.Fatal("mbox quoting left in body")
	}
}

func TestReadMboxMissingFile(t *testing.T) {
	_, err := ReadMbox(filepath.Join(t.TempDir(), "absent.mbox"), logging.New(logr.Discard()))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
