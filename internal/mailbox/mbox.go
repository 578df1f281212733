package mailbox

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/debaditya-mohankudo/prmailhub/internal/logging"
)

// ReadMbox parses an mbox file into decoded messages. Messages that fail to
// parse are logged and skipped; one corrupt email should never abort a whole
// mailbox export.
func ReadMbox(path string, log logging.Logger) ([]*Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mbox: %w", err)
	}
	defer f.Close()

	var messages []*Message
	var current bytes.Buffer

	flush := func() {
		if current.Len() == 0 {
			return
		}
		msg, err := ParseMessage(current.Bytes())
		if err != nil {
			log.Debug("skip unparseable message", "path", path, "error", err.Error())
		} else {
			messages = append(messages, msg)
		}
		current.Reset()
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "From ") && current.Len() > 0 {
			flush()
			continue
		}
		if strings.HasPrefix(line, "From ") {
			continue
		}
		// mbox quotes body lines that start with "From " as ">From ".
		if strings.HasPrefix(line, ">From ") {
			line = line[1:]
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read mbox: %w", err)
	}
	flush()

	log.Info("parsed mailbox", "path", path, "messages", len(messages))
	return messages, nil
}
