package media

import (
	"bytes"
	log "log/slog"

	"github.com/disintegration/imaging"
)

const (
	minQuality   = 40
	minDimension = 200
	qualityStep  = 15
	startQuality = 85
)

// FitUnderLimit 将图片压到 maxBytes 以内：先逐级降低 JPEG 质量，
// 再逐级缩小尺寸。处理失败时退回原始字节，由调用方尽力上传。
func FitUnderLimit(data []byte, maxBytes int) []byte {
	if len(data) <= maxBytes {
		return data
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		log.Warn("attachment is not a decodable image, uploading original", "size", len(data), "err", err)
		return data
	}

	// 质量阶段
	for q := startQuality; q >= minQuality; q -= qualityStep {
		var buf bytes.Buffer
		if err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(q)); err != nil {
			log.Warn("image re-encode failed, uploading original", "err", err)
			return data
		}
		if buf.Len() <= maxBytes {
			return buf.Bytes()
		}
	}

	// 缩放阶段
	current := img
	best := data
	for {
		w := current.Bounds().Dx()
		if w <= minDimension {
			break
		}
		nw := w * 3 / 4
		if nw < minDimension {
			nw = minDimension
		}
		current = imaging.Resize(current, nw, 0, imaging.Lanczos)

		var buf bytes.Buffer
		if err = imaging.Encode(&buf, current, imaging.JPEG, imaging.JPEGQuality(minQuality)); err != nil {
			break
		}
		best = buf.Bytes()
		if buf.Len() <= maxBytes {
			return buf.Bytes()
		}
	}

	if len(best) < len(data) {
		return best
	}
	return data
}
