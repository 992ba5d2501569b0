package model

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrNotJSON       = errors.New("model document is not JSON")
	ErrInvalid       = errors.New("model document is invalid")
	ErrHashMismatch  = errors.New("model document hash mismatch")
	ErrEmptyDocument = errors.New("model document is empty")
)

// ParseOptions controls document checks
type ParseOptions struct {
	// VerifyHash requires the body's content hash to equal the requested hash
	VerifyHash bool
}

// Parse validates and indexes a raw model document fetched by hash
func Parse(hash string, data []byte, opts ParseOptions) (*Version, error) {
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}

	if opts.VerifyHash {
		if got := ContentHash(data); got != hash {
			return nil, fmt.Errorf("%w: want %s, got %s", ErrHashMismatch, hash, got)
		}
	}

	if mt := mimetype.Detect(data); !isJSON(mt) {
		return nil, fmt.Errorf("%w: detected %s", ErrNotJSON, mt.String())
	}

	schema, err := documentSchema()
	if err != nil {
		return nil, err
	}

	var raw interface{}
	if err := sonic.ConfigStd.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJSON, err)
	}
	if err := schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	var doc Document
	if err := sonic.ConfigStd.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	v, err := NewVersion(hash, &doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return v, nil
}

// isJSON accepts JSON and its specializations (geo+json and the like)
func isJSON(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("application/json") {
			return true
		}
	}
	return false
}
