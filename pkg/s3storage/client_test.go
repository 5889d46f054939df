package s3storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vijayasainandipati/Agri-Ai-2/pkg/config"
)

func TestPublicURL(t *testing.T) {
	got := publicURL("https://cdn.example.com", "agriai", "applications/u1/pm-kisan/1700000000000-land record.pdf")
	assert.Equal(t, "https://cdn.example.com/agriai/applications/u1/pm-kisan/1700000000000-land%20record.pdf", got)
}

func TestObjectURLPublic(t *testing.T) {
	c, err := New(config.S3Config{
		Endpoint:      "localhost:9000",
		Bucket:        "agriai",
		PublicBaseURL: "https://cdn.example.com/",
	})
	require.NoError(t, err)

	u, err := c.ObjectURL(context.Background(), "applications/u1/doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/agriai/applications/u1/doc.pdf", u)
}

func TestObjectURLPresigned(t *testing.T) {
	c, err := New(config.S3Config{
		Endpoint:  "localhost:9000",
		Region:    "us-east-1",
		Bucket:    "agriai",
		AccessKey: "minio",
		SecretKey: "minio123",
		URLExpiry: time.Hour,
	})
	require.NoError(t, err)

	// Presign считается локально, без сетевого запроса, если задан регион.
	u, err := c.ObjectURL(context.Background(), "applications/u1/doc.pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "http://localhost:9000/agriai/applications/u1/doc.pdf?"))
	assert.Contains(t, u, "X-Amz-Signature=")
}
