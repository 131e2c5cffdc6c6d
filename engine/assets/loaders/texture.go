package loaders

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	// decoders registered with image.Decode
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/spaghettifunk/anima-ui/engine/renderer/metadata"
)

// TextureExtensions lists the file extensions TextureLoader can decode.
var TextureExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp"}

type TextureLoader struct{}

func (tl *TextureLoader) Load(path string, params interface{}) (*metadata.Resource, error) {
	// Open and decode the texture image file
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &metadata.Resource{
		Type:     metadata.ResourceTypeImage,
		Name:     TextureName(path),
		FullPath: path,
		DataSize: uint64(info.Size()),
		Data: &TextureResourceData{
			Image:  img,
			Format: format,
		},
	}, nil
}

func (tl *TextureLoader) Unload(resource *metadata.Resource) error {
	resource.Data = nil
	resource.DataSize = 0
	return nil
}

// TextureResourceData is the Data of a resource produced by TextureLoader.
type TextureResourceData struct {
	Image image.Image
	// Format is the name the decoder registered, e.g. "png".
	Format string
}

// TextureName derives the lookup name of a texture from its file name:
// "assets/textures/Grass.png" becomes "grass".
func TextureName(path string) string {
	base := filepath.Base(path)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}

// IsTexture reports whether the extension of path is one TextureLoader decodes.
func IsTexture(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range TextureExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
