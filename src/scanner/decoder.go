package scanner

import (
	"errors"
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// ErrNoCode means the frame did not contain a readable code.
var ErrNoCode = errors.New("no code in frame")

type Decoder interface {
	Decode(img image.Image) (string, error)
}

// QRDecoder is not safe for concurrent use.
type QRDecoder struct {
	reader gozxing.Reader
	hints  map[gozxing.DecodeHintType]interface{}
}

func NewQRDecoder() *QRDecoder {
	return &QRDecoder{
		reader: qrcode.NewQRCodeReader(),
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

func (d *QRDecoder) Decode(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", err
	}
	result, err := d.reader.Decode(bmp, d.hints)
	if err != nil {
		if _, ok := err.(gozxing.ReaderException); ok {
			return "", ErrNoCode
		}
		return "", err
	}
	return result.GetText(), nil
}
