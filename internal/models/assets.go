package models

// AssetIndexRef points at the asset index a manifest needs
type AssetIndexRef struct {
	ID        string `json:"id"`
	SHA1      string `json:"sha1"`
	Size      int64  `json:"size"`
	TotalSize int64  `json:"totalSize,omitempty"`
	URL       string `json:"url"`
}

// AssetObject is the content descriptor of a single asset
type AssetObject struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// Path returns the object's location relative to the objects directory
func (o AssetObject) Path() string {
	if len(o.Hash) < 2 {
		return o.Hash
	}
	return o.Hash[:2] + "/" + o.Hash
}

// AssetIndex maps logical asset names to their content descriptors
type AssetIndex struct {
	MapToResources bool                   `json:"map_to_resources,omitempty"`
	Virtual        bool                   `json:"virtual,omitempty"`
	Objects        map[string]AssetObject `json:"objects"`
}

// TotalSize sums the sizes of all objects
func (i *AssetIndex) TotalSize() int64 {
	var total int64
	for _, o := range i.Objects {
		total += o.Size
	}
	return total
}
