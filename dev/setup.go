package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	devenv "dbxbridge/dev/env"
	"dbxbridge/lib/cachestore"
	"dbxbridge/lib/configutil"
)

const cachePath = "<dev_state>/cache.db"

// CreateCacheDB creates the sqlite cache that the local config points at.
func CreateCacheDB() error {
	resolved, err := devenv.ResolvePath(cachePath)
	if err != nil {
		return err
	}
	_, err = os.Stat(resolved)
	if err == nil {
		fmt.Println("cache database already created at", resolved)
		return nil
	}

	fmt.Println("creating cache database at", resolved)
	store, err := cachestore.OpenSqlite(context.Background(), cachePath, cachestore.DefaultTTL)
	if err != nil {
		return err
	}
	return store.Close()
}

const localConfigTemplate = `{
	// credentials can also be given through DBXBRIDGE_EMAIL and DBXBRIDGE_PASSWORD
	email: "",
	password: "",
	cache: {
		backend: "sqlite",
		path: "%s",
	},
	http: {
		dump_dir: "<dev_state>/resty",
	},
}
`

// CreateLocalConfig writes a config.local.json5 for development, existing
// files are left alone.
func CreateLocalConfig() error {
	path := configutil.LocalPath("config.json5")
	_, err := os.Stat(path)
	if err == nil {
		fmt.Println("local config already exists at", path)
		return nil
	}
	fmt.Println("writing local config to", path)
	return os.WriteFile(path, []byte(fmt.Sprintf(localConfigTemplate, cachePath)), 0600)
}

func PrintConfigLocations() {
	slog.Info("fill in your credentials in config.local.json5, add a telemetry.json5 to export traces.")
}
