// Package curl turns curl command lines into requests.
package curl

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/sadopc/restclient/internal/protocol"
)

var (
	ErrEmpty = errors.New("empty input")
	ErrNoURL = errors.New("no URL found in curl command")
)

// ParseCurl parses a curl command string into a protocol.Request.
func ParseCurl(input string) (protocol.Request, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return protocol.Request{}, ErrEmpty
	}

	// Handle line continuations
	input = strings.ReplaceAll(input, "\\\r\n", " ")
	input = strings.ReplaceAll(input, "\\\n", " ")

	args := tokenize(input)
	if len(args) == 0 {
		return protocol.Request{}, ErrEmpty
	}

	// Strip leading "curl" if present
	if strings.EqualFold(args[0], "curl") {
		args = args[1:]
	}

	req := protocol.Request{
		Method:  protocol.MethodGet,
		Headers: make(map[string]string),
	}
	var (
		explicitMethod bool
		data           []string
	)

	next := func(i int) (string, bool) {
		if i+1 < len(args) {
			return args[i+1], true
		}
		return "", false
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-X" || arg == "--request":
			v, ok := next(i)
			if !ok {
				return protocol.Request{}, fmt.Errorf("%s needs a value", arg)
			}
			i++
			m, err := protocol.ParseMethod(v)
			if err != nil {
				return protocol.Request{}, err
			}
			req.Method, explicitMethod = m, true
		case strings.HasPrefix(arg, "-X") && len(arg) > 2:
			m, err := protocol.ParseMethod(arg[2:])
			if err != nil {
				return protocol.Request{}, err
			}
			req.Method, explicitMethod = m, true
		case arg == "-H" || arg == "--header":
			if v, ok := next(i); ok {
				i++
				if key, val := parseHeader(v); key != "" {
					req.Headers[key] = val
				}
			}
		case arg == "-d" || arg == "--data" || arg == "--data-raw" || arg == "--data-binary" || arg == "--data-ascii":
			if v, ok := next(i); ok {
				i++
				data = append(data, v)
			}
		case arg == "--json":
			if v, ok := next(i); ok {
				i++
				data = append(data, v)
				setDefault(req.Headers, "Content-Type", "application/json")
				setDefault(req.Headers, "Accept", "application/json")
			}
		case arg == "-u" || arg == "--user":
			if v, ok := next(i); ok {
				i++
				req.Headers["Authorization"] = "Basic " + base64.StdEncoding.EncodeToString([]byte(v))
			}
		case arg == "-A" || arg == "--user-agent":
			if v, ok := next(i); ok {
				i++
				req.Headers["User-Agent"] = v
			}
		case arg == "-e" || arg == "--referer":
			if v, ok := next(i); ok {
				i++
				req.Headers["Referer"] = v
			}
		case arg == "--url":
			if v, ok := next(i); ok {
				i++
				req.URL = v
			}
		case arg == "-o" || arg == "--output" || arg == "-m" || arg == "--max-time" ||
			arg == "--connect-timeout" || arg == "-x" || arg == "--proxy":
			// Flags with a value that does not affect the request.
			i++
		case !strings.HasPrefix(arg, "-"):
			// Positional argument = URL
			if req.URL == "" {
				req.URL = arg
			}
		}
	}

	if req.URL == "" {
		return protocol.Request{}, ErrNoURL
	}
	if len(data) > 0 {
		req.Body = strings.Join(data, "&")
		if !explicitMethod {
			req.Method = protocol.MethodPost
		}
	}
	return req, nil
}

func setDefault(h map[string]string, key, value string) {
	for k := range h {
		if strings.EqualFold(k, key) {
			return
		}
	}
	h[key] = value
}

// tokenize splits a shell command into tokens, handling single and double quotes.
func tokenize(input string) []string {
	var tokens []string
	var current strings.Builder
	inSingle := false
	inDouble := false
	escaped := false
	quoted := false

	for _, r := range input {
		if escaped {
			current.WriteRune(r)
			escaped = false
			continue
		}

		if r == '\\' && !inSingle {
			escaped = true
			continue
		}

		if r == '\'' && !inDouble {
			inSingle = !inSingle
			quoted = true
			continue
		}

		if r == '"' && !inSingle {
			inDouble = !inDouble
			quoted = true
			continue
		}

		if (r == ' ' || r == '\t' || r == '\n' || r == '\r') && !inSingle && !inDouble {
			if current.Len() > 0 || quoted {
				tokens = append(tokens, current.String())
				current.Reset()
				quoted = false
			}
			continue
		}

		current.WriteRune(r)
	}

	if current.Len() > 0 || quoted {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// parseHeader parses "Key: Value" into key and value.
func parseHeader(s string) (string, string) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return strings.TrimSpace(s), ""
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
}
