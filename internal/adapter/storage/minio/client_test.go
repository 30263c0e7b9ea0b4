package minio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEndpointURL(t *testing.T) {
	assert.Equal(t, "http://localhost:9000", endpointURL("localhost:9000", false))
	assert.Equal(t, "https://s3.local", endpointURL("s3.local", true))
	assert.Equal(t, "https://s3.local", endpointURL("https://s3.local/", false))
}

func TestObjectURL(t *testing.T) {
	c := &Client{publicURL: publicBaseURL("", "http://localhost:9000", "artworks")}
	assert.Equal(t, "http://localhost:9000/artworks/artworks/a.jpg", c.ObjectURL("artworks/a.jpg"))

	c = &Client{publicURL: publicBaseURL("https://cdn.example.com/", "http://localhost:9000", "artworks")}
	assert.Equal(t, "https://cdn.example.com/artworks/a.jpg", c.ObjectURL("/artworks/a.jpg"))
}
