package repository

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPhotoFilename(t *testing.T) {
	at := time.UnixMilli(1767225600123)
	name := PhotoFilename("Front Porch.JPG", at)
	assert.Regexp(t, regexp.MustCompile(`^1767225600123-[a-z0-9]{6}\.jpg$`), name)

	assert.Regexp(t, `^1767225600123-[a-z0-9]{6}$`, PhotoFilename("no-extension", at))
	assert.NotEqual(t, PhotoFilename("a.png", at), PhotoFilename("a.png", at))
}

func TestPublicURL(t *testing.T) {
	r := &PhotoRepository{BaseURL: "https://austinluxury.example"}
	assert.Equal(t, "https://austinluxury.example/images/1-abc.png", r.PublicURL("1-abc.png"))
}
