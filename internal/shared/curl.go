// Utilities for importing a session from a cURL command copied out of the browser's dev tools.
package shared

import (
	"fmt"
	"os"
	"strings"
)

// CurlRequest is the part of a cURL command wedx cares about.
type CurlRequest struct {
	URL     string
	Headers map[string]string // canonical-cased keys, cookies excluded
	Cookie  string
}

// ParseCurlFile reads a .sh file containing a cURL command and parses it.
func ParseCurlFile(path string) (*CurlRequest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}
	return ParseCurlCommand(string(content))
}

// ParseCurlCommand extracts the URL, headers and cookies from a cURL command.
//
// Line continuations and both quote styles are understood.
func ParseCurlCommand(cmd string) (*CurlRequest, error) {
	args, err := splitShellWords(strings.ReplaceAll(cmd, "\\\n", " "))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	req := &CurlRequest{Headers: make(map[string]string)}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-H", "--header":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%w: %s without value", ErrInvalidInput, arg)
			}
			i++
			key, value, ok := strings.Cut(args[i], ":")
			if !ok {
				continue
			}
			key, value = strings.TrimSpace(key), strings.TrimSpace(value)
			if strings.EqualFold(key, "cookie") {
				if req.Cookie == "" {
					req.Cookie = value
				}
				continue
			}
			req.Headers[canonicalHeader(key)] = value
		case "-b", "--cookie":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%w: %s without value", ErrInvalidInput, arg)
			}
			i++
			req.Cookie = args[i]
		default:
			if req.URL == "" && (strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://")) {
				req.URL = arg
			}
		}
	}

	if len(req.Headers) == 0 && req.Cookie == "" {
		return nil, fmt.Errorf("%w: no headers found in curl command", ErrInvalidInput)
	}
	return req, nil
}

// BearerToken returns the token of an "Authorization: Bearer ..." header, if any.
func (c *CurlRequest) BearerToken() (string, bool) {
	auth, ok := c.Headers["Authorization"]
	if !ok {
		return "", false
	}
	scheme, token, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func canonicalHeader(key string) string {
	parts := strings.Split(strings.ToLower(key), "-")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "-")
}

// splitShellWords splits s on unquoted whitespace, honouring single and double quotes.
func splitShellWords(s string) ([]string, error) {
	var (
		words   []string
		current strings.Builder
		quote   rune
		inWord  bool
	)

	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			current.WriteRune(r)
		case r == '\'' || r == '"':
			quote = r
			inWord = true
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if inWord {
				words = append(words, current.String())
				current.Reset()
				inWord = false
			}
		case r == '\\':
			// stray escapes outside quotes are dropped
		default:
			current.WriteRune(r)
			inWord = true
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if inWord {
		words = append(words, current.String())
	}
	return words, nil
}
