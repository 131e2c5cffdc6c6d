package metadata

import (
	"fmt"
	"image"
	"image/color"

	"github.com/spaghettifunk/anima-ui/engine/ui/texture"
)

const (
	/** @brief The default texture name. */
	DEFAULT_TEXTURE_NAME string = "default"
	/** @brief The default white texture name, used for solid fills and tinting. */
	DEFAULT_WHITE_TEXTURE_NAME string = "default_white"
)

/** @brief Generation of a texture that has no pixel data uploaded yet. */
const InvalidGeneration uint32 = 4294967295

type TextureReference struct {
	ReferenceCount uint64
	Handle         texture.ID
	AutoRelease    bool
}

type TextureFlag int

const (
	/** @brief Indicates if the texture has transparency. */
	TextureFlagHasTransparency TextureFlag = 0x1
	/** @brief Indicates if the texture can be written (rendered) to. */
	TextureFlagIsWriteable TextureFlag = 0x2
	/** @brief Indicates if the texture was generated in code rather than loaded from disk. */
	TextureFlagIsGenerated TextureFlag = 0x4
)

/** @brief Holds bit flags for textures.. */
type TextureFlagBits uint8

func (b TextureFlagBits) Has(f TextureFlag) bool {
	return b&TextureFlagBits(f) != 0
}

/**
 * @brief Represents a texture known to the texture system.
 */
type Texture struct {
	/** @brief The handle of the pixel data in the renderer. */
	ID texture.ID
	/** @brief The texture Width. */
	Width uint32
	/** @brief The texture Height. */
	Height uint32
	/** @brief Holds various Flags for this texture. */
	Flags TextureFlagBits
	/** @brief The texture Generation. Incremented every time the data is reloaded. */
	Generation uint32
	/** @brief The texture Name. */
	Name string
	/** @brief The file the texture was loaded from, empty for generated textures. */
	FullPath string
}

// TextureRepeat decides how texture coordinates outside [0, 1] are sampled.
type TextureRepeat string

const (
	TextureRepeatRepeat      TextureRepeat = "repeat"
	TextureRepeatClampToEdge TextureRepeat = "clamp"
)

func ParseTextureRepeat(s string) (TextureRepeat, error) {
	switch r := TextureRepeat(s); r {
	case TextureRepeatRepeat, TextureRepeatClampToEdge:
		return r, nil
	default:
		return "", fmt.Errorf("unknown texture repeat mode %q", s)
	}
}

// CreateCheckerboard builds the default texture, a blue/white checkerboard
// pattern. This is done in code to eliminate asset dependencies.
func CreateCheckerboard(dimension, cell int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, dimension, dimension))
	blue := color.NRGBA{R: 0, G: 0, B: 255, A: 255}
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	for row := 0; row < dimension; row++ {
		for col := 0; col < dimension; col++ {
			if (row/cell+col/cell)%2 == 0 {
				img.SetNRGBA(col, row, blue)
			} else {
				img.SetNRGBA(col, row, white)
			}
		}
	}
	return img
}

// CreateSolid builds a texture filled with a single colour.
func CreateSolid(width, height int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}
