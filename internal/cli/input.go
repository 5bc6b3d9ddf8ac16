package cli

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
)

func isStdinTerminal() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func isURL(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}

// fetchPage reads an HTML page from a URL or a local file. The content type
// is only known for URLs.
func fetchPage(target string) ([]byte, string, error) {
	if isURL(target) {
		resp, err := http.Get(target)
		if err != nil {
			return nil, "", fmt.Errorf("fetch URL: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusOK {
			return nil, "", fmt.Errorf("fetch URL: HTTP %d", resp.StatusCode)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, "", fmt.Errorf("read response: %w", err)
		}
		return body, resp.Header.Get("Content-Type"), nil
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return nil, "", fmt.Errorf("read file: %w", err)
	}
	return data, "", nil
}

// readFromStdin returns the page piped on stdin, following it when stdin
// holds a single URL.
func readFromStdin() ([]byte, string, string, error) {
	slog.Debug("Reading from stdin")
	body, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, "", "", fmt.Errorf("read stdin: %w", err)
	}
	content := bytes.TrimSpace(body)
	if len(content) == 0 {
		return nil, "", "", fmt.Errorf("stdin is empty")
	}

	if target := string(content); isURL(target) && !strings.ContainsAny(target, " \n") {
		slog.Debug("Stdin contains URL", "url", target)
		page, contentType, err := fetchPage(target)
		if err != nil {
			return nil, "", "", err
		}
		return page, contentType, target, nil
	}
	return content, "", "", nil
}

// openInputs returns a reader over the named files, or stdin when there
// are none.
func openInputs(paths []string) (io.Reader, func(), error) {
	if len(paths) == 0 {
		return os.Stdin, func() {}, nil
	}
	var readers []io.Reader
	var files []*os.File
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		files = append(files, f)
		readers = append(readers, f, strings.NewReader("\n"))
	}
	return io.MultiReader(readers...), closeAll, nil
}
