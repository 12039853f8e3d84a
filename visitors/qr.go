package visitors

import (
	"log"
	"path/filepath"

	"vasati/utils"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

const qrDir = "static/visitorqr"

// provisionQR writes a PNG encoding the visitor code and returns its public
// URL. Runs after the entry is persisted (two-phase attach).
func provisionQR(visitorID string) (string, error) {
	if err := utils.EnsureDir(qrDir); err != nil {
		return "", err
	}
	filename := uuid.NewString() + ".png"
	if err := qrcode.WriteFile(visitorID, qrcode.Medium, 256, filepath.Join(qrDir, filename)); err != nil {
		return "", err
	}
	return "/static/visitorqr/" + filename, nil
}

// revokeQR deletes the QR asset behind a public URL. Best-effort: a missing
// file is logged and ignored.
func revokeQR(qrURL string) {
	if qrURL == "" {
		return
	}
	path := filepath.Join(qrDir, filepath.Base(qrURL))
	if err := utils.RemoveFileIfExists(path); err != nil {
		log.Printf("visitors: failed to delete QR image %s: %v", path, err)
	}
}
