package staticfiles

import (
	"embed"
	"io/fs"
)

//go:embed css/*
var embedded embed.FS

// EmbeddedFS holds the stylesheet served under /static/.
func EmbeddedFS() fs.FS {
	return embedded
}
