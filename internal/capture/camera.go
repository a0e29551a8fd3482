package capture

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/jpeg"
)

// jpegQuality matches the capture quality used for both photographs.
const jpegQuality = 90

// Camera is a scoped acquisition of a capture device. Grab returns the
// current frame; Close releases the device. A Camera must be closed when
// the workflow leaves the capture steps, whether or not a frame was taken.
type Camera interface {
	// Grab returns the current frame. It honors ctx for cancellation.
	Grab(ctx context.Context) (image.Image, error)
	// Close releases the underlying device. Close is idempotent.
	Close() error
}

// CameraOpener acquires a camera for the capture steps. Implementations
// wrap whatever device access the station has (V4L2, a test double, ...).
type CameraOpener func(ctx context.Context) (Camera, error)

// EncodeJPEGDataURI encodes img as a JPEG data URI
// ("data:image/jpeg;base64,..."). The two photographs of a registration
// are encoded strictly one after the other; frames are small enough that
// parallel encoding buys nothing.
func EncodeJPEGDataURI(img image.Image) (string, error) {
	var buf bytes.Buffer
	buf.WriteString("data:image/jpeg;base64,")
	enc := base64.NewEncoder(base64.StdEncoding, &buf)
	if err := jpeg.Encode(enc, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
