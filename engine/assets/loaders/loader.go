package loaders

import "github.com/spaghettifunk/anima-ui/engine/renderer/metadata"

/** @brief An "interface" for a resource loader. All registered loaders use this. */
type ResourceLoader interface {
	Load(path string, params interface{}) (*metadata.Resource, error)
	Unload(resource *metadata.Resource) error
}
