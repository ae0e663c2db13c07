package sourcemeta

import (
	"bufio"
	"os"
	"regexp"

	"github.com/outlaybuild/forge/vfs"
)

// includePattern matches the first #include/#import directive, capturing
// its target regardless of quote or angle-bracket form.
var includePattern = regexp.MustCompile(`^\s*#\s*(?:include|import)\s*["<]([^">]+)[">]`)

// reflectionPattern matches the reflection-system markup macros at the
// start of a line.
var reflectionPattern = regexp.MustCompile(`^\s*U(CLASS|STRUCT|ENUM|INTERFACE|DELEGATE)\b`)

func parseFirstInclude(item vfs.FileItem) (string, bool, error) {
	f, err := os.Open(item.Path.String())
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if m := includePattern.FindStringSubmatch(scanner.Text()); m != nil {
			return m[1], true, nil
		}
	}
	return "", false, scanner.Err()
}

func parseReflectionMarker(item vfs.FileItem) (bool, error) {
	f, err := os.Open(item.Path.String())
	if err != nil {
		return false, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if reflectionPattern.MatchString(scanner.Text()) {
			return true, nil
		}
	}
	return false, scanner.Err()
}
