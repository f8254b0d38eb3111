package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"character-image-generator/backend/pkg/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func imageServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("\x89PNG fake"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNew_DisabledWithoutCredentials(t *testing.T) {
	c, err := New(config.StorageConfig{})
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestClient_Mirror(t *testing.T) {
	srv := imageServer(t)
	putter := &fakePutter{}
	c := newClient(putter, srv.Client(), config.StorageConfig{
		Endpoint:  "https://s3.example",
		Bucket:    "images",
		PublicURL: "https://cdn.example/",
		KeyPrefix: "generated/",
	})

	url, err := c.Mirror(context.Background(), srv.URL+"/img.png")
	require.NoError(t, err)

	require.NotNil(t, putter.input)
	key := aws.ToString(putter.input.Key)
	assert.True(t, strings.HasPrefix(key, "generated/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.Equal(t, "images", aws.ToString(putter.input.Bucket))
	assert.Equal(t, s3types.ObjectCannedACLPublicRead, putter.input.ACL)
	assert.Equal(t, []byte("\x89PNG fake"), putter.body)
	assert.Equal(t, "https://cdn.example/"+key, url)
}

func TestClient_MirrorFailures(t *testing.T) {
	srv := imageServer(t)

	c := newClient(&fakePutter{}, srv.Client(), config.StorageConfig{Bucket: "images"})
	_, err := c.Mirror(context.Background(), srv.URL+"/missing.png")
	assert.Error(t, err)

	c = newClient(&fakePutter{err: errors.New("access denied")}, srv.Client(), config.StorageConfig{Bucket: "images"})
	_, err = c.Mirror(context.Background(), srv.URL+"/img.png")
	assert.ErrorContains(t, err, "access denied")
}

func TestClient_FileURLWithoutPublicURL(t *testing.T) {
	c := newClient(&fakePutter{}, http.DefaultClient, config.StorageConfig{Endpoint: "https://s3.example/", Bucket: "images"})
	assert.Equal(t, "https://s3.example/images/a.png", c.FileURL("a.png"))
}
