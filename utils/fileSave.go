package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// SaveFile stores an uploaded file under folder with a generated name and
// returns the stored filename.
func SaveFile(file multipart.File, header *multipart.FileHeader, folder string) (string, error) {
	if err := EnsureDir(folder); err != nil {
		return "", err
	}
	filename := fmt.Sprintf("%s%s", GenerateRandomString(12), filepath.Ext(header.Filename))
	out, err := os.Create(filepath.Join(folder, filename))
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err = io.Copy(out, file); err != nil {
		return "", err
	}
	return filename, nil
}

// RemoveFileIfExists deletes a stored file, treating a missing file as success.
func RemoveFileIfExists(path string) error {
	err := os.Remove(path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
