package compose_box

// Asset An asset is a file to download from the backend storage
type Asset struct {
	// storage backend key for this asset
	key string
	// Assets downloaded path
	path string
	// What the asset is used for in the composition
	media AssetMedia
}
type AssetMedia int8

const (
	Video AssetMedia = iota
	Audio
	Logo
	Font
)

// AssetCollection an enhanced array of pointer to assets
type AssetCollection []*Asset

// NewAssetCollectionFrom Build an asset collection from a composition
// request. Keys referenced by several overlays are only downloaded once
func NewAssetCollectionFrom(req *CompositionRequest) *AssetCollection {
	var allAssets AssetCollection
	seen := map[string]bool{}
	add := func(key string, media AssetMedia) {
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		allAssets = append(allAssets, &Asset{key: key, media: media})
	}

	add(req.VideoKey, Video)
	add(req.AudioKey, Audio)
	for _, overlay := range req.Overlays {
		add(overlay.LogoKey, Logo)
		add(overlay.FontKey, Font)
	}
	return &allAssets
}

// VideoPath Local path of the video track
func (ac *AssetCollection) VideoPath() string {
	return ac.findPath(func(asset *Asset) bool {
		return asset.media == Video
	})
}

// AudioPath Local path of the audio track
func (ac *AssetCollection) AudioPath() string {
	return ac.findPath(func(asset *Asset) bool {
		return asset.media == Audio
	})
}

// PathOf Local path of the asset downloaded for the given storage key
func (ac *AssetCollection) PathOf(key string) string {
	return ac.findPath(func(asset *Asset) bool {
		return asset.key == key
	})
}

// Return the path of the first asset satisfying the given predicate
func (ac *AssetCollection) findPath(predicate func(*Asset) bool) string {
	for _, a := range *ac {
		if predicate(a) {
			return a.path
		}
	}
	return ""
}
