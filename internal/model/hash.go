package model

import (
	"crypto/md5"
	"encoding/base64"
)

// ContentHash returns the resource hash the server assigns to data:
// URL-safe base64 of its MD5 digest
func ContentHash(data []byte) string {
	sum := md5.Sum(data)
	return base64.URLEncoding.EncodeToString(sum[:])
}
