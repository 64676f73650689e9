package util

import (
	"os"
	"strings"
)

// WriteToFile replaces the file with the given lines. Without content the
// file is truncated.
func WriteToFile(savePath string, content ...string) error {
	data := ""
	if len(content) > 0 {
		data = strings.Join(content, "\n") + "\n"
	}
	return os.WriteFile(savePath, []byte(data), 0644)
}

// AppendToFile writes every string on its own line at the end of the file
func AppendToFile(savePath string, content ...string) error {
	f, err := os.OpenFile(savePath, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}

	defer f.Close()

	for _, s := range content {
		if _, err = f.WriteString(s + "\n"); err != nil {
			return err
		}
	}
	return nil
}
