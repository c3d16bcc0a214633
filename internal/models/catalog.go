package models

// ReleaseType classifies a version in the catalog
type ReleaseType string

const (
	ReleaseTypeOldAlpha ReleaseType = "old_alpha"
	ReleaseTypeOldBeta  ReleaseType = "old_beta"
	ReleaseTypeRelease  ReleaseType = "release"
	ReleaseTypeSnapshot ReleaseType = "snapshot"
)

// Latest names the newest release and snapshot ids
type Latest struct {
	Release  string `json:"release"`
	Snapshot string `json:"snapshot"`
}

// Version describes one entry of the version catalog
type Version struct {
	ID          string      `json:"id"`
	Type        ReleaseType `json:"type"`
	URL         string      `json:"url"`
	Time        string      `json:"time"`
	ReleaseTime string      `json:"releaseTime"`
}

// Catalog is the version catalog published by the metadata server
type Catalog struct {
	Latest   Latest    `json:"latest"`
	Versions []Version `json:"versions"`
}

// Find returns the version with the given id
func (c *Catalog) Find(id string) (Version, bool) {
	for _, v := range c.Versions {
		if v.ID == id {
			return v, true
		}
	}
	return Version{}, false
}

// LatestRelease returns the version the catalog marks as latest release.
// The second value is false when the catalog does not list that id.
func (c *Catalog) LatestRelease() (Version, bool) {
	return c.Find(c.Latest.Release)
}
