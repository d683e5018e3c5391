package media

import (
	"bytes"
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/disintegration/imaging"
)

// noisyJPEG 生成一张难以压缩的噪点图
func noisyJPEG(t *testing.T, width, height int) []byte {
	t.Helper()

	rng := rand.New(rand.NewSource(1))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(95)); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func TestFitUnderLimitAlreadySmall(t *testing.T) {
	t.Parallel()

	data := []byte("tiny payload")
	got := FitUnderLimit(data, 1024)
	if !bytes.Equal(got, data) {
		t.Error("data under the limit must be returned untouched")
	}
}

func TestFitUnderLimitNonImageFallsBack(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte("not an image "), 1024)
	got := FitUnderLimit(data, 100)
	if !bytes.Equal(got, data) {
		t.Error("undecodable data must fall back to the original bytes")
	}
}

func TestFitUnderLimitShrinksLargeImage(t *testing.T) {
	t.Parallel()

	original := noisyJPEG(t, 800, 800)
	limit := len(original) / 4

	got := FitUnderLimit(original, limit)

	if len(got) >= len(original) {
		t.Errorf("result %d bytes not smaller than original %d", len(got), len(original))
	}
	if _, err := imaging.Decode(bytes.NewReader(got)); err != nil {
		t.Errorf("result is not a decodable image: %v", err)
	}
}

func TestFitUnderLimitRespectsMinimumDimension(t *testing.T) {
	t.Parallel()

	original := noisyJPEG(t, 300, 300)

	// 极端限制下也必须返回可用字节，而不是空结果
	got := FitUnderLimit(original, 1)
	if len(got) == 0 {
		t.Fatal("result must never be empty")
	}
}
