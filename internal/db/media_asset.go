package db

import "gorm.io/gorm"

// MediaAsset records one image uploaded to the hosted media service. It is a
// ledger of uploads, not a cache of posts.
type MediaAsset struct {
	gorm.Model
	URL          string `gorm:"not null"`
	PublicID     string `gorm:"index"`
	Format       string
	Width        int
	Height       int
	Bytes        int
	OriginalName string
	OwnerEmail   string `gorm:"index"`
}
