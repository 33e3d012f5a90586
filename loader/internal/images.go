package internal

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"pdfrag/types"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	tabmodel "github.com/tsawler/tabula/model"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// extractImages pulls embedded images out of the PDF and saves them as PNG
// files named {base}_page{N}_img{M}.png. The returned map is keyed by 0-based
// page index. When whole-document extraction is unavailable the second return
// is true and every image is recorded metadata-only from the parsed document.
func extractImages(path, imagesDir string, doc *tabmodel.Document) (map[int][]types.ImageDescriptor, bool) {
	base := documentBase(path)

	f, err := os.Open(path)
	if err != nil {
		log.Printf("[IMAGES] cannot open %s for image extraction: %v", path, err)
		return detectImagesMetadataOnly(base, doc), true
	}
	defer f.Close()

	if err := os.MkdirAll(imagesDir, 0755); err != nil {
		log.Printf("[IMAGES] cannot create images dir %s: %v", imagesDir, err)
		return detectImagesMetadataOnly(base, doc), true
	}

	byPage := make(map[int][]types.ImageDescriptor)
	perPage := make(map[int]int)

	digest := func(img pdfmodel.Image, singleImgPerPage bool, maxPageDigits int) error {
		pageIdx := img.PageNr - 1
		perPage[img.PageNr]++
		seq := perPage[img.PageNr]

		desc := saveImage(img, base, imagesDir, pageIdx, seq)
		byPage[pageIdx] = append(byPage[pageIdx], desc)
		// a single image failure never aborts page processing
		return nil
	}

	if err := api.ExtractImages(f, nil, digest, api.LoadConfiguration()); err != nil {
		log.Printf("[IMAGES] image extraction unavailable for %s, falling back to detection only: %v", path, err)
		return detectImagesMetadataOnly(base, doc), true
	}

	return byPage, false
}

// saveImage decodes one embedded image and writes it as PNG. Images with 4 or
// more channels (CMYK) are converted to an RGB representation first. On any
// failure a metadata-only descriptor is returned instead.
func saveImage(img pdfmodel.Image, base, imagesDir string, pageIdx, seq int) types.ImageDescriptor {
	data, err := io.ReadAll(img)
	if err != nil {
		log.Printf("[IMAGES] failed to read image %d on page %d: %v", seq, pageIdx+1, err)
		return metadataOnly(base, pageIdx, seq, 0, 0)
	}

	width, height := 0, 0
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		width, height = cfg.Width, cfg.Height
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		log.Printf("[IMAGES] failed to decode image %d on page %d: %v", seq, pageIdx+1, err)
		return metadataOnly(base, pageIdx, seq, width, height)
	}

	if cmyk, ok := decoded.(*image.CMYK); ok {
		rgba := image.NewRGBA(cmyk.Bounds())
		draw.Draw(rgba, rgba.Bounds(), cmyk, cmyk.Bounds().Min, draw.Src)
		decoded = rgba
	}

	filename := fmt.Sprintf("%s_page%d_img%d.png", base, pageIdx+1, seq)
	outPath := filepath.Join(imagesDir, filename)

	out, err := os.Create(outPath)
	if err != nil {
		log.Printf("[IMAGES] failed to create %s: %v", outPath, err)
		return metadataOnly(base, pageIdx, seq, width, height)
	}
	defer out.Close()

	if err := png.Encode(out, decoded); err != nil {
		log.Printf("[IMAGES] failed to encode %s: %v", outPath, err)
		os.Remove(outPath)
		return metadataOnly(base, pageIdx, seq, width, height)
	}

	return types.ImageDescriptor{
		Filename: filename,
		Page:     pageIdx,
		Width:    width,
		Height:   height,
		Path:     outPath,
	}
}

func metadataOnly(base string, pageIdx, seq, width, height int) types.ImageDescriptor {
	return types.ImageDescriptor{
		Filename: fmt.Sprintf("%s_page%d_img%d_metadata_only", base, pageIdx+1, seq),
		Page:     pageIdx,
		Width:    width,
		Height:   height,
	}
}

// detectImagesMetadataOnly is the degraded mode: no pixel files, just the
// image elements the structured parse reported, with their placed dimensions.
func detectImagesMetadataOnly(base string, doc *tabmodel.Document) map[int][]types.ImageDescriptor {
	byPage := make(map[int][]types.ImageDescriptor)
	if doc == nil {
		return byPage
	}

	for i, page := range doc.Pages {
		seq := 0
		for _, el := range page.Elements {
			img, ok := el.(*tabmodel.Image)
			if !ok {
				continue
			}
			seq++
			byPage[i] = append(byPage[i], metadataOnly(base, i, seq, int(img.BBox.Width), int(img.BBox.Height)))
		}
	}
	return byPage
}

func documentBase(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
