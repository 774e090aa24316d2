package cookies

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"

	"stravagpx/internal/logging"
)

const (
	fieldCount     = 7
	nameField      = 5
	valueField     = 6
	httpOnlyPrefix = "#HttpOnly_"
)

// Jar is a set of cookie name/value pairs.
type Jar map[string]string

// Len returns the number of cookies.
func (j Jar) Len() int { return len(j) }

// Cookies returns the jar as HTTP cookies sorted by name.
func (j Jar) Cookies() []*http.Cookie {
	names := make([]string, 0, len(j))
	for name := range j {
		names = append(names, name)
	}
	sort.Strings(names)

	cookies := make([]*http.Cookie, 0, len(names))
	for _, name := range names {
		cookies = append(cookies, &http.Cookie{Name: name, Value: j[name]})
	}
	return cookies
}

// Parse reads a Netscape cookie jar. Comment lines and blank lines are
// skipped; every other line must carry exactly seven tab-separated fields.
func Parse(r io.Reader) (Jar, error) {
	jar := Jar{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, httpOnlyPrefix) {
			line = strings.TrimPrefix(line, httpOnlyPrefix)
		} else if strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != fieldCount {
			return nil, fmt.Errorf("cookie jar line %d: expected %d tab-separated fields, got %d", lineNo, fieldCount, len(fields))
		}
		name := strings.TrimSpace(fields[nameField])
		if name == "" {
			return nil, fmt.Errorf("cookie jar line %d: empty cookie name", lineNo)
		}
		jar[name] = fields[valueField]
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read cookie jar: %w", err)
	}
	return jar, nil
}

// ParseFile reads the cookie jar at path.
func ParseFile(path string) (Jar, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cookie jar: %w", err)
	}
	defer file.Close()

	jar, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return jar, nil
}

// LoadOptional reads the cookie jar at path. A missing file is not an error:
// it is logged and an empty jar is returned, so the failure surfaces later as
// export errors rather than at startup.
func LoadOptional(path string, logger *slog.Logger) (Jar, error) {
	logger = logging.NewComponentLogger(logger, "cookies")

	jar, err := ParseFile(path)
	if err == nil {
		logger.Debug("loaded cookie jar",
			logging.String("path", path),
			logging.Int("cookie_count", jar.Len()))
		return jar, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		logging.WarnWithContext(logger, "cookie jar not found; gpx downloads will fail", "cookie_jar_missing",
			logging.String("path", path),
			logging.String(logging.FieldErrorHint, "export the strava.com cookies from a logged-in browser to this path"),
			logging.String(logging.FieldImpact, "activities are reported as failed instead of exported"))
		return Jar{}, nil
	}
	return nil, err
}
