package panel

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
)

//go:embed web/*
var content embed.FS

// Handler returns the board's file server.
//
// A non-empty dir that exists on disk is served instead of the embedded
// copy, which lets the board be edited without rebuilding the binary.
func Handler(dir string) http.Handler {
	files := assets(dir)
	fileServer := http.FileServer(files)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")

		name := path.Clean("/" + r.URL.Path)
		if name != "/" {
			f, err := files.Open(name[1:])
			if err != nil {
				r.URL.Path = "/"
			} else {
				f.Close()
			}
		}
		fileServer.ServeHTTP(w, r)
	})
}

func assets(dir string) http.FileSystem {
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return http.Dir(dir)
		}
	}
	sub, err := fs.Sub(content, "web")
	if err != nil {
		panic(fmt.Sprintf("panel: embedded assets missing: %v", err))
	}
	return http.FS(sub)
}
