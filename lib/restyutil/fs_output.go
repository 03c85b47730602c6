package restyutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// FilesystemOutput writes every dumped message into its own file in a directory.
type FilesystemOutput struct {
	directory string
	prefix    string
}

// NewFilesystemOutput creates dir if needed. Files written by this output are
// prefixed with the time it was created so several runs can share a directory.
func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		return FilesystemOutput{}, err
	}
	return FilesystemOutput{
		directory: dir,
		prefix:    time.Now().Format("20060102-150405"),
	}, nil
}

func (o FilesystemOutput) Write(id string, contents string) {
	name := fmt.Sprintf("%s-%s.txt", o.prefix, id)
	err := os.WriteFile(filepath.Join(o.directory, name), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write message info file", "id", id, "err", err)
	}
}
