package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/beashaj2001/complaintsManagement/internal/appstate"
	"github.com/beashaj2001/complaintsManagement/internal/client"
)

func main() {
	storage, err := appstate.NewFileStorage(stateFile())
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	cli := newApp(appOptions{
		Storage: storage,
		BaseURL: client.BaseURLFromEnv(),
		Out:     os.Stdout,
	})
	if err := cli.rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// stateFile returns CMS_STATE_FILE or ~/.cmsctl.json.
func stateFile() string {
	if path := os.Getenv("CMS_STATE_FILE"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cmsctl.json"
	}
	return filepath.Join(home, ".cmsctl.json")
}
