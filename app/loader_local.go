package app

import (
	"context"
	"net/url"
	"os"
)

// LocalLoader is a FileLoader that loads file from the local filesystem.
type LocalLoader struct{}

// Load implements Loader.Load.
func (l LocalLoader) Load(_ context.Context, url *url.URL) ([]byte, error) {
	return os.ReadFile(url.Path)
}

func init() {
	ctr := func() (FileLoader, error) {
		return &LocalLoader{}, nil
	}

	RegisterFileLoader("", ctr)
	RegisterFileLoader("file", ctr)
}
