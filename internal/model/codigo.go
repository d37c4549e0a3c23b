// Package model defines the data structures used throughout the application.
// JSON tags keep the wire names the API has always exposed (titulo, lenguaje,
// visibilidad, ...), while Go field names stay idiomatic.
package model

import (
	"strings"
	"time"
)

// Codigo is a stored code snippet owned by exactly one user.
//
// Titulo, Codigo and Lenguaje are never empty once stored. Tags is the
// comma-joined tag list ("math,basic"); nil means the snippet has no tags.
type Codigo struct {
	ID          int64   `json:"id"`
	UserID      int64   `json:"usuario_id"`
	Title       string  `json:"titulo"`
	Description *string `json:"descripcion"`
	Code        string  `json:"codigo"`
	Language    string  `json:"lenguaje"`
	Tags        *string `json:"tags"`
	Type        *string `json:"tipo"`
}

// TagList splits the stored tag string back into its elements.
func (c *Codigo) TagList() []string {
	if c.Tags == nil || *c.Tags == "" {
		return []string{}
	}
	return strings.Split(*c.Tags, ",")
}

// HasTag reports whether tag is one of the snippet's comma-delimited tags.
// Substrings of a tag do not match.
func (c *Codigo) HasTag(tag string) bool {
	for _, t := range c.TagList() {
		if t == tag {
			return true
		}
	}
	return false
}

// JoinTags encodes a tag list for storage. An empty list encodes to nil.
func JoinTags(tags []string) *string {
	if len(tags) == 0 {
		return nil
	}
	joined := strings.Join(tags, ",")
	return &joined
}

// CollectionItem is a snippet as seen through a collection, with the time it
// was added.
type CollectionItem struct {
	Codigo
	AddedAt time.Time `json:"fecha_agregado"`
}
