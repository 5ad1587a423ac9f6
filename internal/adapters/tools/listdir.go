package tools

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/bnema/cascade-chat/internal/domain"
)

const maxListedEntries = 20

var ListFilesSpec = domain.ToolSpec{
	Name:        "list_files",
	Description: "Lists up to 20 entries of a directory on the host.",
	Parameters: []domain.ToolParameter{
		{Name: "path", Type: "string", Description: "Directory to list. Defaults to the working directory."},
	},
}

// ListFiles returns at most 20 entry names, one per line, in directory order.
func ListFiles(_ context.Context, args map[string]any) (string, error) {
	path := stringArg(args, "path", ".")

	dir, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "Invalid path.", nil
		}
		return err.Error(), nil
	}
	defer func() { _ = dir.Close() }()

	names, err := dir.Readdirnames(maxListedEntries)
	if err != nil && len(names) == 0 {
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		return err.Error(), nil
	}

	return strings.Join(names, "\n"), nil
}
