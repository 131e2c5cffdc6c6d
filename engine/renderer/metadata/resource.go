package metadata

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	/** @brief Not a resource the engine knows how to load. */
	ResourceTypeNone ResourceType = iota
	/** @brief Image resource type. */
	ResourceTypeImage
	/** @brief Bitmap font resource type. */
	ResourceTypeBitmapFont
	/** @brief Custom resource type. Used by loaders outside the core engine. */
	ResourceTypeCustom
)

func (rt ResourceType) String() string {
	switch rt {
	case ResourceTypeImage:
		return "image"
	case ResourceTypeBitmapFont:
		return "bitmap font"
	case ResourceTypeCustom:
		return "custom"
	default:
		return "none"
	}
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The type of the loader which handled this resource. */
	Type ResourceType
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. */
	Data interface{}
}
