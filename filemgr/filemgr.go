package filemgr

import (
	"fmt"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"vasati/utils"

	"github.com/disintegration/imaging"
)

const thumbWidth = 200

// SaveImage stores an uploaded image under folder and writes a resized
// thumbnail next to it under folder/thumbs. Returns the stored filename.
// A thumbnail failure is logged, not fatal.
func SaveImage(file multipart.File, header *multipart.FileHeader, folder string) (string, error) {
	filename, err := utils.SaveFile(file, header, folder)
	if err != nil {
		return "", err
	}

	src := filepath.Join(folder, filename)
	img, err := imaging.Open(src)
	if err != nil {
		log.Printf("filemgr: thumbnail skipped for %s: %v", src, err)
		return filename, nil
	}

	thumbDir := filepath.Join(folder, "thumbs")
	if err := utils.EnsureDir(thumbDir); err != nil {
		log.Printf("filemgr: thumbnail dir: %v", err)
		return filename, nil
	}

	thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
	if err := imaging.Save(thumb, filepath.Join(thumbDir, filename)); err != nil {
		log.Printf("filemgr: thumbnail save: %v", err)
	}
	return filename, nil
}

// RemoveImage deletes a stored image and its thumbnail. Missing files are
// logged, not treated as fatal. Callers pass filepath.Base of the stored
// URL; for an empty URL that is ".", which would resolve to the upload
// directory itself, so degenerate names are refused here.
func RemoveImage(folder, filename string) {
	if filename == "" || filename == "." || filename == ".." ||
		strings.ContainsRune(filename, '/') || strings.ContainsRune(filename, filepath.Separator) {
		return
	}
	for _, p := range []string{
		filepath.Join(folder, filename),
		filepath.Join(folder, "thumbs", filename),
	} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.Printf("filemgr: failed to remove %s: %v", p, err)
		}
	}
}

// PublicPath maps a stored file to the URL path it is served under.
func PublicPath(prefix, filename string) string {
	if filename == "" {
		return ""
	}
	return fmt.Sprintf("/static/%s/%s", prefix, filename)
}
