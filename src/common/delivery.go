package common

import (
	"clubdesk/src/config"
	"clubdesk/src/db"
	"clubdesk/src/lib"
	awslib "clubdesk/src/lib/aws"
	"clubdesk/src/lib/mailer"
	"clubdesk/src/models"
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
)

func qrObjectKey(code string) string {
	return fmt.Sprintf("qr/%s.jpeg", code)
}

func qrCacheKey(code string) string {
	return fmt.Sprintf("qr:%s:url", code)
}

// GuestQR renders the code image and, when object storage is configured,
// uploads it. The returned URL is nil when only the local file exists.
func GuestQR(ctx context.Context, entry *models.GuestEntry) (path string, url *string, err error) {
	if entry.Code == nil {
		return "", nil, errors.New("guest has no code issued")
	}
	code := *entry.Code
	path, err = lib.RenderQRCode(code, code)
	if err != nil {
		return "", nil, err
	}
	if !awslib.StorageEnabled() {
		return path, nil, nil
	}
	if rd := lib.GetRedisClient(); rd != nil {
		cached, err := rd.Get(ctx, qrCacheKey(code)).Result()
		if err == nil && cached != "" {
			return path, &cached, nil
		}
		if err != nil && !errors.Is(err, redis.Nil) {
			log.Printf("Error reading from cache: %s\n", err.Error())
		}
	}
	f, err := os.Open(path)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()
	key := qrObjectKey(code)
	url, err = awslib.S3UploadAsset(ctx, key, f, "image/jpeg", config.QRURLTTL())
	if err != nil {
		log.Printf("Error uploading asset to S3 bucket: %s\n", err.Error())
		return path, nil, nil
	}
	if rd := lib.GetRedisClient(); rd != nil {
		rd.SetEx(ctx, qrCacheKey(code), *url, config.QRURLTTL())
	}
	if err := db.GetDb().Model(&models.GuestEntry{}).Where("id = ?", entry.ID).Update("qr_key", key).Error; err != nil {
		log.Printf("Error saving QR key for guest [%d]: %s\n", entry.ID, err.Error())
	}
	return path, url, nil
}

// DeliverGuestCodes renders and e-mails the codes of freshly approved guests.
// Failures are logged per guest; approval is never undone.
func DeliverGuestCodes(entries []models.GuestEntry, event models.Event) {
	ctx := context.Background()
	for i := range entries {
		entry := &entries[i]
		path, url, err := GuestQR(ctx, entry)
		if err != nil {
			log.Printf("Error rendering QR for guest [%d]: %s\n", entry.ID, err.Error())
			continue
		}
		if entry.Email == nil || *entry.Email == "" {
			continue
		}
		err = mailer.SendGuestCode(&mailer.GuestCodeMail{
			GuestName: entry.Name,
			Email:     *entry.Email,
			EventName: event.Name,
			EventDate: event.DateTime,
			Code:      *entry.Code,
			QRPath:    path,
			QRURL:     url,
		})
		if err != nil {
			if errors.Is(err, lib.ErrMailDisabled) {
				log.Printf("Skipping e-mail for guest [%d]: %s\n", entry.ID, err.Error())
				continue
			}
			log.Printf("Error delivering code to guest [%d]: %s\n", entry.ID, err.Error())
		}
	}
}
