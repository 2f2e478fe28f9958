package lib

import (
	"clubdesk/src/config"
	"fmt"
	"log"
	"os"
	"path"

	"github.com/yeqown/go-qrcode"
)

// RenderQRCode writes a QR image of content to the temp dir and returns its path.
func RenderQRCode(name string, content string) (string, error) {
	dir := config.TempDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	qrc, err := qrcode.New(content)
	if err != nil {
		return "", err
	}
	filepath := path.Join(dir, fmt.Sprintf("%s.jpeg", name))
	if err := qrc.Save(filepath); err != nil {
		log.Printf("Could not save qrcode to file [%s]: %s\n", filepath, err.Error())
		return "", err
	}
	return filepath, nil
}
