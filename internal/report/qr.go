// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/pdiddy/spire-tally/pkg/types"
)

// QRCode returns a square PNG of px pixels encoding id.
func QRCode(id types.DeckID, px int) ([]byte, error) {
	if px <= 0 {
		return nil, fmt.Errorf("qr size must be positive, got %d", px)
	}
	q, err := qrcode.New(id.String(), qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encoding qr code: %w", err)
	}

	// One pixel per module, then scaled without smoothing to keep edges sharp.
	img := imaging.Resize(q.Image(-1), px, px, imaging.NearestNeighbor)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encoding qr png: %w", err)
	}
	return buf.Bytes(), nil
}
