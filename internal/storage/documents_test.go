package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectBaseURL(t *testing.T) {
	assert.Equal(t, "https://contracts.s3.us-east-1.amazonaws.com",
		objectBaseURL(Config{Bucket: "contracts", Region: "us-east-1"}))
	assert.Equal(t, "http://localhost:9000/contracts",
		objectBaseURL(Config{Bucket: "contracts", Endpoint: "http://localhost:9000/"}))
}

func TestNewS3_RequiresBucket(t *testing.T) {
	_, err := NewS3(context.Background(), Config{Region: "us-east-1"})
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore()
	url, err := m.Put(context.Background(), "contracts/a.txt", "text/plain", []byte("body"))
	require.NoError(t, err)
	assert.Equal(t, "memory://contracts/a.txt", url)
	assert.Equal(t, []byte("body"), m.Objects["contracts/a.txt"])
}
