// Package export renders requests and history in formats other tools read.
package export

import (
	"sort"
	"strings"

	"github.com/sadopc/restclient/internal/protocol"
)

// AsCurl converts a request to a curl command string. Like the executor, it
// leaves the body out for methods that do not send one.
func AsCurl(req protocol.Request) string {
	parts := []string{"curl"}

	if req.Method != "" && req.Method != protocol.MethodGet {
		parts = append(parts, "-X", string(req.Method))
	}

	keys := make([]string, 0, len(req.Headers))
	for k := range req.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, "-H", shellQuote(k+": "+req.Headers[k]))
	}

	if req.Body != "" && req.Method.SendsBody() {
		parts = append(parts, "-d", shellQuote(req.Body))
	}

	parts = append(parts, shellQuote(req.URL))
	return strings.Join(parts, " ")
}

// shellQuote wraps s in single quotes for POSIX shells.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
